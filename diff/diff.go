// Package diff compares trees.
//
// Children are aligned by their tag#idx keys with a sequence diff, so a
// child keeps its identity while its family position is unchanged. Aligned
// children are compared recursively; the tags of the compared roots are
// not.
package diff

import (
	"fmt"
	"strings"

	"github.com/BR1py/itertree-sub001/itree"
	"github.com/BR1py/itertree-sub001/itree/tpath"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Kind int

const (
	Insert Kind = iota
	Delete
	Modify
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Modify:
		return "modify"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Change is one difference. Path is relative to the compared roots, "/" for
// the roots themselves. Node is the inserted or deleted node, or the node of
// to for a modification.
type Change struct {
	Kind Kind
	Path string
	From itree.Value
	To   itree.Value
	Node *itree.Node
}

func (c *Change) String() string {
	switch c.Kind {
	case Insert:
		return "+ " + c.Path + valueSuffix(c.To) + subtreeSuffix(c.Node)
	case Delete:
		return "- " + c.Path + valueSuffix(c.From) + subtreeSuffix(c.Node)
	}
	return "~ " + c.Path + ": " + c.From.String() + " -> " + c.To.String()
}

func valueSuffix(v itree.Value) string {
	if !v.IsSet() {
		return ""
	}
	return " = " + v.String()
}

func subtreeSuffix(n *itree.Node) string {
	if n == nil || n.Len() == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d below)", n.DeepLen())
}

// work is either a change to emit or a pair of nodes to compare.
type work struct {
	change   *Change
	from, to *itree.Node
	path     string
}

// Diff lists the differences turning from into to, in pre-order.
func Diff(from, to *itree.Node) []Change {
	var res []Change
	stack := []work{{from: from, to: to, path: "/"}}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if w.change != nil {
			res = append(res, *w.change)
			continue
		}
		if !w.from.Value().Equal(w.to.Value()) {
			res = append(res, Change{Kind: Modify, Path: w.path, From: w.from.Value(), To: w.to.Value(), Node: w.to})
		}
		items := diffChildren(w.from, w.to, w.path)
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, items[i])
		}
	}
	return res
}

func diffChildren(from, to *itree.Node, path string) []work {
	keys := map[itree.TagIdx]rune{}
	fromRunes := mapKeysTo(keys, from)
	toRunes := mapKeysTo(keys, to)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)
	fcs, tcs := from.Children(), to.Children()
	var res []work
	fi, ti := 0, 0
	for i := range diffs {
		d := &diffs[i]
		n := len([]rune(d.Text))
		switch d.Type {
		case diffpatch.DiffDelete:
			for range n {
				c := fcs[fi]
				res = append(res, work{change: &Change{Kind: Delete, Path: join(path, c), From: c.Value(), Node: c}})
				fi++
			}
		case diffpatch.DiffEqual:
			for range n {
				res = append(res, work{from: fcs[fi], to: tcs[ti], path: join(path, tcs[ti])})
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for range n {
				c := tcs[ti]
				res = append(res, work{change: &Change{Kind: Insert, Path: join(path, c), To: c.Value(), Node: c}})
				ti++
			}
		}
	}
	return res
}

func mapKeysTo(m map[itree.TagIdx]rune, n *itree.Node) []rune {
	cs := n.Children()
	rs := make([]rune, len(cs))
	for i, c := range cs {
		k := c.TagIdx()
		if !k.Tag.IsSet() {
			k.Idx = c.Idx()
		}
		r, ok := m[k]
		if !ok {
			r = keyRune(len(m))
			m[k] = r
		}
		rs[i] = r
	}
	return rs
}

// keyRune maps i to a rune outside of the surrogate range, which does not
// survive conversion to string.
func keyRune(i int) rune {
	r := rune(i)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

func join(parent string, c *itree.Node) string {
	var seg tpath.Segment
	if t := c.Tag(); t.IsSet() {
		seg = tpath.Segment{Kind: tpath.TagIndex, Tag: t.Name(), Index: c.TagIdx().Idx}
	} else {
		seg = tpath.Segment{Kind: tpath.Index, Index: c.Idx()}
	}
	if parent == "/" {
		return "/" + seg.String()
	}
	return parent + "/" + seg.String()
}

// Unified renders changes one per line, prefixed with +, - or ~.
func Unified(changes []Change) string {
	var b strings.Builder
	for i := range changes {
		b.WriteString(changes[i].String())
		b.WriteByte('\n')
	}
	return b.String()
}
