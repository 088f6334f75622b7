package itree

import (
	"fmt"
	"iter"
)

// Record is the flat form of one node, used to store and load trees. Records
// of a tree come in pre-order; Depth is relative to the first record.
type Record struct {
	Depth int
	Tag   Tag
	Value Value
	Flags Flags
	// LinkFile and LinkTarget describe the link of a link root.
	LinkFile   string
	LinkTarget string
	// Slot is the source key of covers and placeholders below a link root.
	Slot *TagIdx
}

// Records yields the flat form of the subtree of n. Linked items below link
// roots are written as placeholders so that their positions survive a load
// without link resolution.
func (n *Node) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if !yield(n.record(0)) {
			return
		}
		// linked slots are written without their content
		gate := func(x *Node) bool {
			p := x.parent
			return p == n || !(p.IsLinked() && p.slot != nil && p.parent.IsLinkRoot())
		}
		for path, x := range n.IdxPaths(gate, true) {
			if !yield(x.record(len(path))) {
				return
			}
		}
	}
}

func (n *Node) record(depth int) Record {
	r := Record{Depth: depth, Tag: n.tag, Value: n.value, Flags: n.flags & persistFlags}
	if n.IsLinkRoot() && n.link != nil {
		r.LinkFile, r.LinkTarget = n.link.file, n.link.target
	}
	if depth == 0 || n.slot == nil || !n.parent.IsLinkRoot() {
		r.Flags &^= LinkCover | Placeholder
		return r
	}
	s := *n.slot
	r.Slot = &s
	if n.IsLinked() {
		r.Flags = Placeholder
		r.Value = NoValue
	}
	return r
}

// Builder assembles a tree from records.
type Builder struct {
	root  *Node
	stack []*Node
	n     int
}

// Add attaches the node described by r.
func (b *Builder) Add(r Record) error {
	b.n++
	if b.root == nil {
		if r.Depth != 0 {
			return fmt.Errorf("%w: record %d: first record has depth %d", ErrRecord, b.n, r.Depth)
		}
	} else if r.Depth < 1 || r.Depth > len(b.stack) {
		return fmt.Errorf("%w: record %d: depth %d after depth %d", ErrRecord, b.n, r.Depth, len(b.stack)-1)
	}
	x := &Node{tag: r.Tag, value: r.Value, flags: r.Flags & persistFlags, idx: -1, famIdx: -1}
	if x.IsLinkRoot() {
		x.link = &Link{file: r.LinkFile, target: r.LinkTarget}
	}
	if b.root == nil {
		if x.flags&(Placeholder|LinkCover) != 0 || r.Slot != nil {
			return fmt.Errorf("%w: record %d: root cannot be a link slot", ErrRecord, b.n)
		}
		b.root = x
		b.stack = []*Node{x}
		return nil
	}
	b.stack = b.stack[:r.Depth]
	p := b.stack[r.Depth-1]
	if err := checkRecordSlot(p, x, r); err != nil {
		return fmt.Errorf("%w: record %d: %w", ErrRecord, b.n, err)
	}
	p.attach(len(p.children), x)
	b.stack = append(b.stack, x)
	return nil
}

func checkRecordSlot(p, x *Node, r Record) error {
	slotted := x.flags&(Placeholder|LinkCover) != 0
	switch {
	case p.IsPlaceholder():
		return fmt.Errorf("placeholder %s has children", p)
	case slotted && !p.IsLinkRoot():
		return fmt.Errorf("%s is a link slot outside of a link root", x)
	case slotted && r.Slot == nil:
		return fmt.Errorf("%s has no slot", x)
	case !slotted && r.Slot != nil:
		return fmt.Errorf("%s has a slot but is not a cover or placeholder", x)
	case x.IsPlaceholder() && x.value.set:
		return fmt.Errorf("placeholder %s has a value", x)
	}
	if r.Slot != nil {
		s := *r.Slot
		x.slot = &s
	}
	return nil
}

// Root returns the assembled tree.
func (b *Builder) Root() (*Node, error) {
	if b.root == nil {
		return nil, fmt.Errorf("%w: no records", ErrRecord)
	}
	return b.root, nil
}

// Build assembles the tree described by rs.
func Build(rs iter.Seq[Record]) (*Node, error) {
	var b Builder
	for r := range rs {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Root()
}
