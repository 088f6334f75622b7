package itree

import "fmt"

// checkAttach verifies c can become a child of n.
func (n *Node) checkAttach(c *Node) error {
	if c.parent != nil {
		return fmt.Errorf("%w: %s already has parent %s", ErrOwnership, c, c.parent)
	}
	if c == n || c.IsAncestorOf(n) {
		return fmt.Errorf("%w: %s cannot contain itself", ErrOwnership, c)
	}
	if c.flags&(Linked|LinkCover) != 0 {
		return fmt.Errorf("%w: %s is managed by a link", ErrPermission, c)
	}
	if n.IsPlaceholder() {
		return fmt.Errorf("%w: placeholder %s cannot have children", ErrPermission, n)
	}
	return nil
}

// checkStructure verifies the child list of n may change.
func (n *Node) checkStructure() error {
	if n.IsLinked() {
		return fmt.Errorf("%w: %s is linked", ErrPermission, n)
	}
	for x := n; x != nil; x = x.parent {
		if x.flags&ReadOnlyTree != 0 {
			return fmt.Errorf("%w: tree of %s is locked at %s", ErrReadOnly, n, x)
		}
	}
	return nil
}

func (n *Node) checkValue() error {
	switch {
	case n.IsLinked():
		return fmt.Errorf("%w: value of linked %s", ErrPermission, n)
	case n.IsPlaceholder():
		return fmt.Errorf("%w: placeholder %s cannot have a value", ErrPermission, n)
	case n.flags&ReadOnlyValue != 0:
		return fmt.Errorf("%w: value of %s is locked", ErrReadOnly, n)
	}
	return nil
}

// checkBulk verifies the children of n may be reordered as a whole.
func (n *Node) checkBulk() error {
	if err := n.checkStructure(); err != nil {
		return err
	}
	if n.IsLinkRoot() {
		return fmt.Errorf("%w: link root %s cannot be reordered", ErrPermission, n)
	}
	return nil
}

// checkLinkInsert verifies a local child tagged tag may go to pos below the
// link root n.
func (n *Node) checkLinkInsert(pos int, tag Tag) error {
	if pos < len(n.children) && n.children[pos].IsLinked() {
		return fmt.Errorf("%w: position %d of %s holds linked item %s", ErrPermission, pos, n, n.children[pos])
	}
	if n.linkedTags()[tag] {
		return fmt.Errorf("%w: tag %s belongs to a linked family of %s", ErrPermission, tag, n)
	}
	return nil
}

func (n *Node) linkedTags() map[Tag]bool {
	res := map[Tag]bool{}
	for _, c := range n.children {
		if c.slot != nil {
			res[c.tag] = true
		}
	}
	return res
}

// removeSlot handles removal of a linked item, cover or placeholder.
func (n *Node) removeSlot(c *Node) (*Node, error) {
	switch {
	case c.IsLinked():
		return nil, fmt.Errorf("%w: cannot remove linked item %s", ErrPermission, c)
	case c.IsCover():
		r := c.covered
		if r == nil {
			r = newPlaceholder(*c.slot)
		}
		n.replaceAt(c.idx, r)
		c.flags &^= LinkCover
		c.slot, c.covered = nil, nil
		return c, nil
	}
	return n.detach(c.idx), nil
}

// SetFlags sets protection flags on n.
func (n *Node) SetFlags(f Flags) error {
	if f&^userFlags != 0 {
		return fmt.Errorf("%w: flags %s are managed internally", ErrPermission, f&^userFlags)
	}
	if n.IsLinked() {
		return fmt.Errorf("%w: flags of linked %s", ErrPermission, n)
	}
	n.flags |= f
	return nil
}

// UnsetFlags clears protection flags on n. ReadOnlyTree can only be cleared
// when no ancestor is locked.
func (n *Node) UnsetFlags(f Flags) error {
	if f&^userFlags != 0 {
		return fmt.Errorf("%w: flags %s are managed internally", ErrPermission, f&^userFlags)
	}
	if n.IsLinked() {
		return fmt.Errorf("%w: flags of linked %s", ErrPermission, n)
	}
	if f&ReadOnlyTree != 0 {
		if a := n.lockedAncestor(); a != nil {
			return fmt.Errorf("%w: %s is locked by ancestor %s", ErrPermission, n, a)
		}
	}
	n.flags &^= f
	return nil
}

func (n *Node) lockedAncestor() *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.flags&ReadOnlyTree != 0 {
			return p
		}
	}
	return nil
}

// SetTreeReadOnly locks the structure of n and of the matching descendants.
func (n *Node) SetTreeReadOnly(filter Filter, hierarchical bool) error {
	targets, err := n.flagTargets(filter, hierarchical)
	if err != nil {
		return err
	}
	for _, x := range targets {
		x.flags |= ReadOnlyTree
	}
	return nil
}

// UnsetTreeReadOnly unlocks n and the matching descendants top down. It fails
// without changing anything if a target would stay below a locked node.
func (n *Node) UnsetTreeReadOnly(filter Filter, hierarchical bool) error {
	targets, err := n.flagTargets(filter, hierarchical)
	if err != nil {
		return err
	}
	in := make(map[*Node]bool, len(targets))
	for _, x := range targets {
		in[x] = true
	}
	for _, x := range targets {
		for p := x.parent; p != nil; p = p.parent {
			if p.flags&ReadOnlyTree != 0 && !in[p] {
				return fmt.Errorf("%w: %s is locked by ancestor %s", ErrPermission, x, p)
			}
		}
	}
	for _, x := range targets {
		x.flags &^= ReadOnlyTree
	}
	return nil
}

// SetValueReadOnly locks the values of n and of the matching descendants.
func (n *Node) SetValueReadOnly(filter Filter, hierarchical bool) error {
	targets, err := n.flagTargets(filter, hierarchical)
	if err != nil {
		return err
	}
	for _, x := range targets {
		x.flags |= ReadOnlyValue
	}
	return nil
}

// UnsetValueReadOnly unlocks the values of n and the matching descendants.
func (n *Node) UnsetValueReadOnly(filter Filter, hierarchical bool) error {
	targets, err := n.flagTargets(filter, hierarchical)
	if err != nil {
		return err
	}
	for _, x := range targets {
		x.flags &^= ReadOnlyValue
	}
	return nil
}

// flagTargets lists n and its descendants selected by filter in pre-order,
// skipping linked items.
func (n *Node) flagTargets(filter Filter, hierarchical bool) ([]*Node, error) {
	if n.IsLinked() {
		return nil, fmt.Errorf("%w: flags of linked %s", ErrPermission, n)
	}
	if hierarchical && !filter.match(n) {
		return nil, nil
	}
	var res []*Node
	if filter.match(n) {
		res = append(res, n)
	}
	notLinked := func(x *Node) bool { return !x.IsLinked() }
	if hierarchical {
		gate := func(x *Node) bool { return notLinked(x) && filter.match(x) }
		for x := range n.Iter(gate, true) {
			res = append(res, x)
		}
		return res, nil
	}
	for x := range n.Iter(notLinked, true) {
		if filter.match(x) {
			res = append(res, x)
		}
	}
	return res, nil
}
