// Package convert exchanges trees with YAML and JSON documents and edits
// node values with JSON patches.
//
// Mapping keys become tags and sequence elements become untagged children.
// Scalars become values. A few keys are reserved:
//
//	__value__     the value of a node which also has children
//	__tag__       the tag of a sequence element
//	__children__  the children of a node with a value whose children do
//	              not fit into a mapping
//
// ToYAML writes a mapping when the children of a node carry distinct tags
// and a sequence otherwise, so repeated tags and untagged children survive
// a round trip. A node without value and children is written as {}.
package convert

import (
	"fmt"
	"math"

	"github.com/BR1py/itertree-sub001/itree"

	"github.com/goccy/go-yaml"
)

const (
	ValueKey    = "__value__"
	TagKey      = "__tag__"
	ChildrenKey = "__children__"
)

type fill struct {
	node *itree.Node
	v    any
}

// FromYAML builds an untagged root from a YAML document. JSON documents are
// accepted as well.
func FromYAML(data []byte) (*itree.Node, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	root := itree.NewUntagged()
	stack := []fill{{root, v}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var (
			cs  []*itree.Node
			sub []fill
			err error
		)
		switch x := f.v.(type) {
		case yaml.MapSlice:
			cs, sub, err = fromMapping(f.node, x)
		case []any:
			cs, sub, err = fromSequence(x)
		default:
			err = f.node.SetValue(scalar(x))
		}
		if err != nil {
			return nil, err
		}
		if err := f.node.Extend(cs...); err != nil {
			return nil, err
		}
		stack = append(stack, sub...)
	}
	return root, nil
}

// FromJSON builds an untagged root from a JSON document.
func FromJSON(data []byte) (*itree.Node, error) {
	return FromYAML(data)
}

func fromMapping(n *itree.Node, m yaml.MapSlice) ([]*itree.Node, []fill, error) {
	var (
		cs  []*itree.Node
		sub []fill
	)
	for _, item := range m {
		k := fmt.Sprint(item.Key)
		switch k {
		case ValueKey:
			if err := n.SetValue(scalar(item.Value)); err != nil {
				return nil, nil, err
			}
		case TagKey:
			// consumed by fromSequence
		case ChildrenKey:
			seq, ok := item.Value.([]any)
			if !ok {
				return nil, nil, fmt.Errorf("%s of %s is not a sequence", ChildrenKey, n)
			}
			scs, ssub, err := fromSequence(seq)
			if err != nil {
				return nil, nil, err
			}
			cs = append(cs, scs...)
			sub = append(sub, ssub...)
		default:
			c := itree.New(k)
			cs = append(cs, c)
			sub = append(sub, fill{c, item.Value})
		}
	}
	return cs, sub, nil
}

func fromSequence(seq []any) ([]*itree.Node, []fill, error) {
	cs := make([]*itree.Node, 0, len(seq))
	sub := make([]fill, 0, len(seq))
	for _, e := range seq {
		c := itree.NewUntagged()
		if m, ok := e.(yaml.MapSlice); ok {
			for _, item := range m {
				if fmt.Sprint(item.Key) == TagKey {
					c = itree.New(fmt.Sprint(item.Value))
					break
				}
			}
		}
		cs = append(cs, c)
		sub = append(sub, fill{c, e})
	}
	return cs, sub, nil
}

// scalar narrows decoded integers to int where they fit.
func scalar(v any) any {
	switch x := v.(type) {
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
	}
	return v
}

// ToYAML writes the subtree of n as a YAML document. The tag of n itself is
// not written.
func ToYAML(n *itree.Node) ([]byte, error) {
	return yaml.Marshal(content(n))
}

func content(n *itree.Node) any {
	v, hasValue := n.Value().Get()
	if n.Len() == 0 {
		if hasValue {
			return v
		}
		return yaml.MapSlice{}
	}
	if uniqueTags(n) {
		m := make(yaml.MapSlice, 0, n.Len()+1)
		if hasValue {
			m = append(m, yaml.MapItem{Key: ValueKey, Value: v})
		}
		for _, c := range n.Children() {
			m = append(m, yaml.MapItem{Key: c.Tag().Name(), Value: content(c)})
		}
		return m
	}
	seq := make([]any, 0, n.Len())
	for _, c := range n.Children() {
		seq = append(seq, element(c))
	}
	if !hasValue {
		return seq
	}
	return yaml.MapSlice{
		{Key: ValueKey, Value: v},
		{Key: ChildrenKey, Value: seq},
	}
}

// element is the content of c as a sequence element.
func element(c *itree.Node) any {
	x := content(c)
	if !c.Tag().IsSet() {
		return x
	}
	tag := yaml.MapItem{Key: TagKey, Value: c.Tag().Name()}
	switch y := x.(type) {
	case yaml.MapSlice:
		return append(yaml.MapSlice{tag}, y...)
	case []any:
		return yaml.MapSlice{tag, {Key: ChildrenKey, Value: y}}
	}
	return yaml.MapSlice{tag, {Key: ValueKey, Value: x}}
}

func uniqueTags(n *itree.Node) bool {
	for _, c := range n.Children() {
		t := c.Tag()
		if !t.IsSet() || c.TagIdx().Idx > 0 || reserved(t.Name()) {
			return false
		}
	}
	return true
}

func reserved(k string) bool {
	return k == ValueKey || k == TagKey || k == ChildrenKey
}
