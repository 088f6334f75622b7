package itree

import (
	"iter"
	"slices"

	"github.com/BR1py/itertree-sub001/debug"
)

// A Filter selects nodes during traversal. A nil Filter selects every node.
type Filter func(*Node) bool

func (f Filter) match(n *Node) bool {
	return f == nil || f(n)
}

type iterOpts struct {
	backward bool
	self     bool
	flat     bool
}

type IterOption func(*iterOpts)

// Backward visits children from the last to the first.
func Backward() IterOption {
	return func(o *iterOpts) { o.backward = true }
}

// WithSelf yields the iteration root first in up-to-low order. In low-to-up
// order the root is always yielded last.
func WithSelf() IterOption {
	return func(o *iterOpts) { o.self = true }
}

// FlatFilter applies the filter to every node without gating descendants.
func FlatFilter() IterOption {
	return func(o *iterOpts) { o.flat = true }
}

// frame is one level of the traversal stack.
type frame struct {
	node *Node
	// next is the running position of the next child to visit.
	next int
	// emit records whether node is yielded when the frame closes.
	emit bool
}

type walker struct {
	opts    iterOpts
	filter  Filter
	upToLow bool
	stack   []frame
}

func newWalker(filter Filter, upToLow bool, opts []IterOption) *walker {
	w := &walker{filter: filter, upToLow: upToLow}
	for _, o := range opts {
		o(&w.opts)
	}
	return w
}

func (w *walker) push(n *Node, emit bool) {
	f := frame{node: n, emit: emit}
	if w.opts.backward {
		f.next = len(n.children) - 1
	}
	w.stack = append(w.stack, f)
}

// advance returns the next child of the top frame.
func (w *walker) advance() (*Node, bool) {
	f := &w.stack[len(w.stack)-1]
	cs := f.node.children
	if w.opts.backward {
		if f.next >= len(cs) {
			f.next = len(cs) - 1
		}
		if f.next < 0 {
			return nil, false
		}
		c := cs[f.next]
		f.next--
		return c, true
	}
	if f.next >= len(cs) {
		return nil, false
	}
	c := cs[f.next]
	f.next++
	return c, true
}

// run drives the traversal below root, calling yield for each selected node.
// In low-to-up order a node is yielded when its frame is closed, which acts
// as the close sentinel of the node.
func (w *walker) run(root *Node, yield func(*Node) bool) {
	if debug.Iter() {
		debug.Logf("itree: walk %s upToLow=%v opts=%+v\n", root, w.upToLow, w.opts)
	}
	if w.upToLow && w.opts.self {
		if !yield(root) {
			return
		}
	}
	w.push(root, !w.upToLow)
	for len(w.stack) > 0 {
		c, ok := w.advance()
		if !ok {
			f := w.stack[len(w.stack)-1]
			w.stack = w.stack[:len(w.stack)-1]
			if f.emit && !yield(f.node) {
				return
			}
			continue
		}
		match := w.filter.match(c)
		if !match && !w.opts.flat {
			continue
		}
		if w.upToLow {
			if match && !yield(c) {
				return
			}
			if len(c.children) > 0 {
				w.push(c, false)
			}
			continue
		}
		w.push(c, match)
	}
}

// idxPath builds the position path of n relative to root from the frames
// under the root frame, which hold the ancestors of n while it is yielded.
func (w *walker) idxPath(n *Node, root *Node) []int {
	if n == root {
		return []int{}
	}
	res := make([]int, 0, len(w.stack))
	for _, f := range w.stack[1:] {
		res = append(res, f.node.idx)
	}
	return append(res, n.idx)
}

func (w *walker) tagIdxPath(n *Node, root *Node) []TagIdx {
	if n == root {
		return []TagIdx{}
	}
	res := make([]TagIdx, 0, len(w.stack))
	for _, f := range w.stack[1:] {
		res = append(res, f.node.TagIdx())
	}
	return append(res, n.TagIdx())
}

// IterFlat yields all descendants of n in pre-order, n excluded.
func (n *Node) IterFlat() iter.Seq[*Node] {
	return n.Iter(nil, true)
}

// Iter yields the descendants of n selected by filter. In up-to-low order
// parents come before their children; otherwise children come first and n
// itself is yielded last. Unless FlatFilter is given, descendants of a node
// failing the filter are not visited.
func (n *Node) Iter(filter Filter, upToLow bool, opts ...IterOption) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		newWalker(filter, upToLow, opts).run(n, yield)
	}
}

// IdxPaths is like Iter and also yields the absolute position path of every
// node relative to n.
func (n *Node) IdxPaths(filter Filter, upToLow bool, opts ...IterOption) iter.Seq2[[]int, *Node] {
	return func(yield func([]int, *Node) bool) {
		w := newWalker(filter, upToLow, opts)
		w.run(n, func(x *Node) bool {
			return yield(w.idxPath(x, n), x)
		})
	}
}

// TagIdxPaths is like Iter and also yields the tag position path of every
// node relative to n.
func (n *Node) TagIdxPaths(filter Filter, upToLow bool, opts ...IterOption) iter.Seq2[[]TagIdx, *Node] {
	return func(yield func([]TagIdx, *Node) bool) {
		w := newWalker(filter, upToLow, opts)
		w.run(n, func(x *Node) bool {
			return yield(w.tagIdxPath(x, n), x)
		})
	}
}

// IterFamilyItems yields the descendants of n family by family. Families are
// ordered by the position of their first member, or their last member when
// orderLast is set, and every member is followed by its own subtree.
func (n *Node) IterFamilyItems(orderLast bool) iter.Seq[*Node] {
	type famFrame struct {
		items []*Node
		next  int
	}
	return func(yield func(*Node) bool) {
		stack := []famFrame{{items: n.familyOrder(orderLast)}}
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next >= len(f.items) {
				stack = stack[:len(stack)-1]
				continue
			}
			c := f.items[f.next]
			f.next++
			if !yield(c) {
				return
			}
			if len(c.children) > 0 {
				stack = append(stack, famFrame{items: c.familyOrder(orderLast)})
			}
		}
	}
}

func (n *Node) familyOrder(orderLast bool) []*Node {
	tags := make([]Tag, 0, len(n.families))
	if orderLast {
		for i := len(n.children) - 1; i >= 0; i-- {
			c := n.children[i]
			if c.famIdx == len(n.families[c.tag])-1 {
				tags = append(tags, c.tag)
			}
		}
		slices.Reverse(tags)
	} else {
		tags = n.Tags()
	}
	res := make([]*Node, 0, len(n.children))
	for _, t := range tags {
		res = append(res, n.families[t]...)
	}
	return res
}

// Level yields the descendants of n at the given depth below n.
func (n *Node) Level(depth int) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if depth <= 0 {
			if depth == 0 {
				yield(n)
			}
			return
		}
		// the stack holds the ancestors of the child being visited
		w := newWalker(nil, true, nil)
		w.push(n, false)
		for len(w.stack) > 0 {
			c, ok := w.advance()
			if !ok {
				w.stack = w.stack[:len(w.stack)-1]
				continue
			}
			if len(w.stack) == depth {
				if !yield(c) {
					return
				}
				continue
			}
			if len(c.children) > 0 {
				w.push(c, false)
			}
		}
	}
}

// DeepLen counts all descendants of n.
func (n *Node) DeepLen() int {
	c := 0
	for range n.IterFlat() {
		c++
	}
	return c
}

// Count counts the descendants of n selected by filter without gating.
func (n *Node) Count(filter Filter) int {
	c := 0
	for range n.Iter(filter, true, FlatFilter()) {
		c++
	}
	return c
}
