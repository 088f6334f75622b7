package itree

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is an element of a tree. The zero Node is not usable; create nodes
// with New or NewUntagged.
type Node struct {
	tag   Tag
	value Value
	flags Flags

	parent *Node
	// idx and famIdx are the positions of the node among all its siblings
	// and within its family. They are maintained on every mutation.
	idx      int
	famIdx   int
	children []*Node
	families map[Tag][]*Node

	link *Link
	// slot is the source key of linked items, covers and placeholders
	// directly below a link root.
	slot *TagIdx
	// covered is the linked item a cover hides.
	covered *Node

	coupled any
}

type NodeOption func(*Node)

// WithValue sets the payload of the new node.
func WithValue(v any) NodeOption {
	return func(n *Node) { n.value = Some(v) }
}

// WithFlags sets protection flags on the new node. Only ReadOnlyTree and
// ReadOnlyValue can be set this way.
func WithFlags(f Flags) NodeOption {
	return func(n *Node) { n.flags |= f & userFlags }
}

// WithLink turns the new node into a link root.
func WithLink(l *Link) NodeOption {
	return func(n *Node) {
		n.link = l
		n.flags |= LinkRoot
	}
}

// WithCoupled associates an external object with the new node.
func WithCoupled(obj any) NodeOption {
	return func(n *Node) { n.coupled = obj }
}

func New(tag string, opts ...NodeOption) *Node {
	return NewWithTag(NewTag(tag), opts...)
}

func NewUntagged(opts ...NodeOption) *Node {
	return NewWithTag(NoTag, opts...)
}

func NewWithTag(tag Tag, opts ...NodeOption) *Node {
	n := &Node{tag: tag, idx: -1, famIdx: -1}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *Node) Tag() Tag { return n.tag }
func (n *Node) Value() Value { return n.value }
func (n *Node) Flags() Flags { return n.flags }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) IsRoot() bool { return n.parent == nil }
func (n *Node) Len() int { return len(n.children) }
func (n *Node) Link() *Link { return n.link }
func (n *Node) Coupled() any { return n.coupled }
func (n *Node) SetCoupled(o any) { n.coupled = o }

func (n *Node) IsLinked() bool { return n.flags&Linked != 0 }
func (n *Node) IsLinkRoot() bool { return n.flags&LinkRoot != 0 }
func (n *Node) IsCover() bool { return n.flags&LinkCover != 0 }
func (n *Node) IsPlaceholder() bool { return n.flags&Placeholder != 0 }

// Idx is the absolute position of n among its siblings, -1 for a root.
func (n *Node) Idx() int { return n.idx }

// TagIdx is the tag and family position of n, with Idx -1 for a root.
func (n *Node) TagIdx() TagIdx { return TagIdx{Tag: n.tag, Idx: n.famIdx} }

// Slot is the source key of a linked item, cover or placeholder.
func (n *Node) Slot() (TagIdx, bool) {
	if n.slot == nil {
		return TagIdx{}, false
	}
	return *n.slot, true
}

func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IdxPath is the list of absolute positions leading from the root to n.
func (n *Node) IdxPath() []int {
	res := make([]int, n.Depth())
	for x, i := n, len(res)-1; x.parent != nil; x, i = x.parent, i-1 {
		res[i] = x.idx
	}
	return res
}

// TagIdxPath is the list of tag positions leading from the root to n.
func (n *Node) TagIdxPath() []TagIdx {
	res := make([]TagIdx, n.Depth())
	for x, i := n, len(res)-1; x.parent != nil; x, i = x.parent, i-1 {
		res[i] = x.TagIdx()
	}
	return res
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	res := make([]*Node, len(n.children))
	copy(res, n.children)
	return res
}

// Child returns the child at absolute position i. Negative positions count
// from the end.
func (n *Node) Child(i int) (*Node, error) {
	j := i
	if j < 0 {
		j += len(n.children)
	}
	if j < 0 || j >= len(n.children) {
		return nil, n.indexErr(i)
	}
	return n.children[j], nil
}

// ByTagIdx returns the member at position i of the family tag. Negative
// positions count from the end of the family.
func (n *Node) ByTagIdx(tag Tag, i int) (*Node, error) {
	fam, ok := n.families[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no child tagged %s in %s", ErrNotFound, tag, n)
	}
	j := i
	if j < 0 {
		j += len(fam)
	}
	if j < 0 || j >= len(fam) {
		return nil, fmt.Errorf("%w: %s has %d members tagged %s, want %d", ErrIndex, n, len(fam), tag, i)
	}
	return fam[j], nil
}

// Family returns the children tagged tag in order.
func (n *Node) Family(tag Tag) []*Node {
	fam := n.families[tag]
	res := make([]*Node, len(fam))
	copy(res, fam)
	return res
}

// HasTag reports whether some child is tagged tag.
func (n *Node) HasTag(tag Tag) bool {
	_, ok := n.families[tag]
	return ok
}

// Tags lists the tags of the children in order of first appearance.
func (n *Node) Tags() []Tag {
	res := make([]Tag, 0, len(n.families))
	for _, c := range n.children {
		if c.famIdx == 0 {
			res = append(res, c.tag)
		}
	}
	return res
}

// PreItem is the sibling before n, nil if there is none.
func (n *Node) PreItem() *Node {
	if n.parent == nil || n.idx == 0 {
		return nil
	}
	return n.parent.children[n.idx-1]
}

// PostItem is the sibling after n, nil if there is none.
func (n *Node) PostItem() *Node {
	if n.parent == nil || n.idx == len(n.parent.children)-1 {
		return nil
	}
	return n.parent.children[n.idx+1]
}

// IsAncestorOf reports whether n is a strict ancestor of o.
func (n *Node) IsAncestorOf(o *Node) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(n.tag.String())
	if n.parent != nil {
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(n.famIdx))
	}
	if n.value.set {
		b.WriteByte('=')
		b.WriteString(n.value.String())
	}
	return b.String()
}

func (n *Node) indexErr(i int) error {
	return fmt.Errorf("%w: %s has %d children, want %d", ErrIndex, n, len(n.children), i)
}
