package itree

import (
	"fmt"
	"path"
)

// A Selector picks nodes relative to a node for one level of Get.
type Selector interface {
	pick(n *Node, out []*Node) ([]*Node, error)
}

type selectFunc func(n *Node, out []*Node) ([]*Node, error)

func (f selectFunc) pick(n *Node, out []*Node) ([]*Node, error) { return f(n, out) }

// At selects the child at absolute position i; negative positions count from
// the end.
func At(i int) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		c, err := n.Child(i)
		if err != nil {
			return out, err
		}
		return append(out, c), nil
	})
}

// TagAt selects the member at position i of the family tag.
func TagAt(tag Tag, i int) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		c, err := n.ByTagIdx(tag, i)
		if err != nil {
			return out, err
		}
		return append(out, c), nil
	})
}

// TagAts selects several members of the family tag.
func TagAts(tag Tag, idxs ...int) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		var first error
		for _, i := range idxs {
			c, err := n.ByTagIdx(tag, i)
			if err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			out = append(out, c)
		}
		return out, first
	})
}

// Family selects every child tagged tag.
func Family(tag Tag) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		fam, ok := n.families[tag]
		if !ok {
			return out, fmt.Errorf("%w: no child tagged %s in %s", ErrNotFound, tag, n)
		}
		return append(out, fam...), nil
	})
}

// Tags selects the children carrying any of tags, in positional order.
func Tags(tags ...Tag) Selector {
	set := make(map[Tag]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return Where(func(c *Node) bool { return set[c.tag] })
}

// Slice selects the children at absolute positions [from, to). Bounds are
// clamped; negative bounds count from the end.
func Slice(from, to int) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		a, b := clampRange(from, to, len(n.children))
		return append(out, n.children[a:b]...), nil
	})
}

// TagSlice selects members [from, to) of the family tag.
func TagSlice(tag Tag, from, to int) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		fam := n.families[tag]
		a, b := clampRange(from, to, len(fam))
		return append(out, fam[a:b]...), nil
	})
}

// Where selects the children passing filter.
func Where(filter Filter) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		for _, c := range n.children {
			if filter.match(c) {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

// TagGlob selects the tagged children whose tag matches pattern, using the
// syntax of path.Match.
func TagGlob(pattern string) Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		if _, err := path.Match(pattern, ""); err != nil {
			return out, fmt.Errorf("%w: pattern %q: %w", ErrNotFound, pattern, err)
		}
		for _, c := range n.children {
			if !c.tag.set {
				continue
			}
			if ok, _ := path.Match(pattern, c.tag.name); ok {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

// All selects every child.
func All() Selector {
	return Where(nil)
}

// Deep selects the node itself and all of its descendants.
func Deep() Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		out = append(out, n)
		for x := range n.IterFlat() {
			out = append(out, x)
		}
		return out, nil
	})
}

// Up selects the parent.
func Up() Selector {
	return selectFunc(func(n *Node, out []*Node) ([]*Node, error) {
		if n.parent == nil {
			return out, ErrDetached
		}
		return append(out, n.parent), nil
	})
}

func clampRange(from, to, l int) (int, int) {
	if from < 0 {
		from += l
	}
	if to < 0 {
		to += l
	}
	from = max(0, min(from, l))
	to = max(from, min(to, l))
	return from, to
}

// Get resolves sels level by level, starting at n, and returns the matches
// of the last level in order. A selector that misses on one branch drops that
// branch; Get fails only when nothing matches.
func (n *Node) Get(sels ...Selector) ([]*Node, error) {
	cur := []*Node{n}
	for level, sel := range sels {
		var (
			next  []*Node
			first error
		)
		for _, x := range cur {
			var err error
			next, err = sel.pick(x, next)
			if err != nil && first == nil {
				first = err
			}
		}
		next = dedup(next)
		if len(next) == 0 {
			if first == nil {
				first = fmt.Errorf("%w: nothing selected at level %d below %s", ErrNotFound, level, n)
			}
			return nil, first
		}
		cur = next
	}
	return cur, nil
}

// GetOne is like Get but requires exactly one match.
func (n *Node) GetOne(sels ...Selector) (*Node, error) {
	res, err := n.Get(sels...)
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%w: %d nodes selected below %s", ErrAmbiguous, len(res), n)
	}
	return res[0], nil
}

func dedup(ns []*Node) []*Node {
	if len(ns) < 2 {
		return ns
	}
	seen := make(map[*Node]bool, len(ns))
	res := ns[:0]
	for _, x := range ns {
		if seen[x] {
			continue
		}
		seen[x] = true
		res = append(res, x)
	}
	return res
}
