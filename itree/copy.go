package itree

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
)

type copyMode int

const (
	// copyLocal produces owned local nodes. Linked slots below a link root
	// are replaced by placeholders.
	copyLocal copyMode = iota
	// copyLinked produces read-only overlay nodes for a link root.
	copyLinked
)

func (n *Node) cloneNode(mode copyMode) *Node {
	c := &Node{tag: n.tag, value: n.value.copy(), idx: -1, famIdx: -1}
	if mode == copyLinked {
		c.flags = n.flags&(userFlags|Placeholder) | Linked
		return c
	}
	c.flags = n.flags &^ Linked
	if n.IsLinkRoot() && n.link != nil {
		c.link = n.link.clone()
	}
	if n.slot != nil {
		s := *n.slot
		c.slot = &s
	}
	return c
}

func copyTree(src *Node, mode copyMode) *Node {
	type pair struct{ src, dst *Node }
	root := src.cloneNode(mode)
	stack := []pair{{src, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(p.src.children) == 0 {
			continue
		}
		cs := make([]*Node, len(p.src.children))
		for i, c := range p.src.children {
			if mode == copyLocal && p.src.IsLinkRoot() && c.IsLinked() && c.slot != nil {
				cs[i] = newPlaceholder(*c.slot)
				continue
			}
			cs[i] = c.cloneNode(mode)
			stack = append(stack, pair{c, cs[i]})
		}
		p.dst.setChildren(cs)
	}
	return root
}

func newPlaceholder(slot TagIdx) *Node {
	return &Node{tag: slot.Tag, flags: Placeholder, slot: &slot, idx: -1, famIdx: -1}
}

// linkedCopy materializes src as the overlay item for slot.
func linkedCopy(src *Node, slot TagIdx) *Node {
	c := copyTree(src, copyLinked)
	c.slot = &slot
	return c
}

// Copy returns a detached copy of n without children. The coupled object is
// not copied.
func (n *Node) Copy() *Node {
	c := n.cloneNode(copyLocal)
	c.detachedRoot()
	return c
}

// DeepCopy returns a detached local copy of the subtree of n. Linked items of
// link roots are copied as placeholders, the copied links are unresolved.
func (n *Node) DeepCopy() *Node {
	c := copyTree(n, copyLocal)
	c.detachedRoot()
	return c
}

func (n *Node) detachedRoot() {
	n.flags &^= LinkCover | Placeholder
	n.slot = nil
}

// Equal reports whether the subtrees of n and o have the same tags, values
// and shape. Flags, links and coupled objects are not compared.
func (n *Node) Equal(o *Node) bool {
	type pair struct{ a, b *Node }
	stack := []pair{{n, o}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.tag != p.b.tag || !p.a.value.Equal(p.b.value) || len(p.a.children) != len(p.b.children) {
			return false
		}
		for i := range p.a.children {
			stack = append(stack, pair{p.a.children[i], p.b.children[i]})
		}
	}
	return true
}

var hashSeed = maphash.MakeSeed()

// Hash returns a 64-bit fingerprint of the subtree of n covering tags,
// values, persistent flags and slots. It is stable within a process only.
func (n *Node) Hash() uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	var b [8]byte
	for path, x := range n.IdxPaths(nil, true, WithSelf()) {
		binary.LittleEndian.PutUint64(b[:], uint64(len(path)))
		h.Write(b[:])
		if x.tag.set {
			h.WriteByte(1)
			h.WriteString(x.tag.name)
		} else {
			h.WriteByte(0)
		}
		h.WriteByte(0)
		if v, ok := x.value.Get(); ok {
			fmt.Fprintf(&h, "%#v", v)
		}
		h.WriteByte(0)
		binary.LittleEndian.PutUint64(b[:], uint64(x.flags&persistFlags))
		h.Write(b[:])
		if x.slot != nil {
			fmt.Fprintf(&h, "%s", x.slot)
		}
	}
	return h.Sum64()
}
