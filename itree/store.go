package itree

import (
	"cmp"
	"fmt"
	"slices"
)

// attach inserts c at pos and maintains both indexes. It performs no checks.
func (n *Node) attach(pos int, c *Node) {
	n.children = slices.Insert(n.children, pos, c)
	c.parent = n
	n.renumber(pos)
	if n.families == nil {
		n.families = map[Tag][]*Node{}
	}
	fam := n.families[c.tag]
	fi, _ := slices.BinarySearchFunc(fam, c.idx, func(m *Node, idx int) int {
		return cmp.Compare(m.idx, idx)
	})
	fam = slices.Insert(fam, fi, c)
	n.families[c.tag] = fam
	renumberFamily(fam, fi)
}

// detach removes the child at pos and returns it. It performs no checks.
func (n *Node) detach(pos int) *Node {
	c := n.children[pos]
	n.children = slices.Delete(n.children, pos, pos+1)
	n.renumber(pos)
	n.dropFromFamily(c)
	c.parent = nil
	c.idx, c.famIdx = -1, -1
	return c
}

func (n *Node) dropFromFamily(c *Node) {
	fam := n.families[c.tag]
	fi := c.famIdx
	fam = slices.Delete(fam, fi, fi+1)
	if len(fam) == 0 {
		delete(n.families, c.tag)
		return
	}
	n.families[c.tag] = fam
	renumberFamily(fam, fi)
}

// replaceAt swaps the child at pos for r, which must carry the same tag.
func (n *Node) replaceAt(pos int, r *Node) *Node {
	old := n.children[pos]
	n.children[pos] = r
	r.parent = n
	r.idx, r.famIdx = old.idx, old.famIdx
	n.families[r.tag][r.famIdx] = r
	old.parent = nil
	old.idx, old.famIdx = -1, -1
	return old
}

// setChildren replaces the whole child list and rebuilds both indexes.
func (n *Node) setChildren(cs []*Node) {
	for _, c := range n.children {
		c.parent = nil
		c.idx, c.famIdx = -1, -1
	}
	n.children = cs
	for _, c := range cs {
		c.parent = n
	}
	n.reindex()
}

func (n *Node) reindex() {
	n.families = nil
	if len(n.children) == 0 {
		return
	}
	n.families = map[Tag][]*Node{}
	for i, c := range n.children {
		c.idx = i
		fam := n.families[c.tag]
		c.famIdx = len(fam)
		n.families[c.tag] = append(fam, c)
	}
}

func (n *Node) renumber(from int) {
	for i := from; i < len(n.children); i++ {
		n.children[i].idx = i
	}
}

func renumberFamily(fam []*Node, from int) {
	for i := from; i < len(fam); i++ {
		fam[i].famIdx = i
	}
}

// Append attaches c as the last child of n.
func (n *Node) Append(c *Node) error {
	return n.Insert(len(n.children), c)
}

// AppendLeft attaches c as the first child of n.
func (n *Node) AppendLeft(c *Node) error {
	return n.Insert(0, c)
}

// Extend appends all of cs, or none of them if one cannot be attached.
func (n *Node) Extend(cs ...*Node) error {
	if err := n.checkStructure(); err != nil {
		return err
	}
	seen := make(map[*Node]bool, len(cs))
	for i, c := range cs {
		if seen[c] {
			return fmt.Errorf("%w: %s given twice", ErrOwnership, c)
		}
		seen[c] = true
		if err := n.checkAttach(c); err != nil {
			return err
		}
		if n.IsLinkRoot() {
			if err := n.checkLinkInsert(len(n.children)+i, c.tag); err != nil {
				return err
			}
		}
	}
	for _, c := range cs {
		n.attach(len(n.children), c)
	}
	return nil
}

// Insert attaches c at absolute position pos, shifting later siblings.
func (n *Node) Insert(pos int, c *Node) error {
	if pos < 0 || pos > len(n.children) {
		return fmt.Errorf("%w: insert at %d into %s with %d children", ErrIndex, pos, n, len(n.children))
	}
	if err := n.checkAttach(c); err != nil {
		return err
	}
	if err := n.checkStructure(); err != nil {
		return err
	}
	if n.IsLinkRoot() {
		if err := n.checkLinkInsert(pos, c.tag); err != nil {
			return err
		}
	}
	n.attach(pos, c)
	return nil
}

// Remove detaches the child at absolute position pos (negative counts from
// the end) and returns it. Removing a cover brings the covered linked item
// back in its place.
func (n *Node) Remove(pos int) (*Node, error) {
	c, err := n.Child(pos)
	if err != nil {
		return nil, err
	}
	if err := n.checkStructure(); err != nil {
		return nil, err
	}
	if n.IsLinkRoot() && c.slot != nil {
		return n.removeSlot(c)
	}
	return n.detach(c.idx), nil
}

// RemoveNode detaches the child c.
func (n *Node) RemoveNode(c *Node) error {
	if c.parent != n {
		return fmt.Errorf("%w: %s is not a child of %s", ErrNotFound, c, n)
	}
	_, err := n.Remove(c.idx)
	return err
}

// Detach removes n from its parent.
func (n *Node) Detach() error {
	if n.parent == nil {
		return ErrDetached
	}
	return n.parent.RemoveNode(n)
}

// Clear removes all children.
func (n *Node) Clear() error {
	if err := n.checkStructure(); err != nil {
		return err
	}
	if n.IsLinkRoot() {
		for _, c := range n.children {
			if c.slot != nil {
				return fmt.Errorf("%w: cannot clear link root %s", ErrPermission, n)
			}
		}
	}
	n.setChildren(nil)
	return nil
}

// Move moves n to absolute position to among its siblings.
func (n *Node) Move(to int) error {
	p := n.parent
	if p == nil {
		return ErrDetached
	}
	if to < 0 || to >= len(p.children) {
		return fmt.Errorf("%w: move %s to %d of %d", ErrIndex, n, to, len(p.children))
	}
	if err := p.checkStructure(); err != nil {
		return err
	}
	if p.IsLinkRoot() {
		if n.slot != nil {
			return fmt.Errorf("%w: cannot move link slot %s", ErrPermission, n)
		}
		// position to in the list without n
		j := to
		if j >= n.idx {
			j++
		}
		if j < len(p.children) && p.children[j].IsLinked() {
			return fmt.Errorf("%w: position %d holds linked item %s", ErrPermission, to, p.children[j])
		}
	}
	if to == n.idx {
		return nil
	}
	p.detach(n.idx)
	p.attach(to, n)
	return nil
}

// Rename changes the tag of n and moves it to the matching family.
func (n *Node) Rename(tag Tag) error {
	if n.IsLinked() {
		return fmt.Errorf("%w: %s is linked", ErrPermission, n)
	}
	p := n.parent
	if p == nil {
		n.tag = tag
		return nil
	}
	if err := p.checkStructure(); err != nil {
		return err
	}
	if p.IsLinkRoot() {
		if n.slot != nil {
			return fmt.Errorf("%w: cannot rename link slot %s", ErrPermission, n)
		}
		if p.linkedTags()[tag] {
			return fmt.Errorf("%w: tag %s belongs to a linked family", ErrPermission, tag)
		}
	}
	if tag == n.tag {
		return nil
	}
	p.dropFromFamily(n)
	n.tag = tag
	fam := p.families[tag]
	fi, _ := slices.BinarySearchFunc(fam, n.idx, func(m *Node, idx int) int {
		return cmp.Compare(m.idx, idx)
	})
	fam = slices.Insert(fam, fi, n)
	p.families[tag] = fam
	renumberFamily(fam, fi)
	return nil
}

// Sort reorders the children with a stable sort on compare.
func (n *Node) Sort(compare func(a, b *Node) int) error {
	if err := n.checkBulk(); err != nil {
		return err
	}
	slices.SortStableFunc(n.children, compare)
	n.reindex()
	return nil
}

// Reverse reverses the order of the children.
func (n *Node) Reverse() error {
	if err := n.checkBulk(); err != nil {
		return err
	}
	slices.Reverse(n.children)
	n.reindex()
	return nil
}

// Rotate rotates the children k steps to the right; negative k rotates left.
func (n *Node) Rotate(k int) error {
	if err := n.checkBulk(); err != nil {
		return err
	}
	l := len(n.children)
	if l == 0 {
		return nil
	}
	k %= l
	if k < 0 {
		k += l
	}
	n.children = slices.Concat(n.children[l-k:], n.children[:l-k])
	n.reindex()
	return nil
}

// SetValue replaces the payload of n.
func (n *Node) SetValue(v any) error {
	if err := n.checkValue(); err != nil {
		return err
	}
	n.value = Some(v)
	return nil
}

// ClearValue sets the payload of n to NoValue.
func (n *Node) ClearValue() error {
	if err := n.checkValue(); err != nil {
		return err
	}
	n.value = NoValue
	return nil
}
