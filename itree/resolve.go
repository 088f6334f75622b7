package itree

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/BR1py/itertree-sub001/debug"
	"github.com/BR1py/itertree-sub001/itree/tpath"
)

// resolver carries the state of one LoadLinks call. active holds the link
// roots and files under resolution, done the link roots already brought up
// to date. Both are shared with nested resolvers.
type resolver struct {
	opts   linkOpts
	dir    string
	active map[any]bool
	done   map[*Node]bool
}

type fileKey struct {
	path, target string
}

func newResolver(opts []LinkOption) *resolver {
	r := &resolver{active: map[any]bool{}, done: map[*Node]bool{}}
	for _, o := range opts {
		o(&r.opts)
	}
	r.dir = r.opts.dir
	return r
}

func (r *resolver) loadAll(top *Node) (bool, error) {
	updated := false
	for _, lr := range linkRoots(top) {
		if lr != top && !top.IsAncestorOf(lr) {
			// removed with an invalid ancestor
			continue
		}
		u, err := r.resolve(lr, r.opts.force)
		if err == nil {
			updated = updated || u
			continue
		}
		if !r.opts.deleteInvalid || lr.parent == nil {
			return updated, err
		}
		if debug.Links() {
			debug.Logf("itree: removing invalid link root %s: %v\n", lr, err)
		}
		if rerr := lr.parent.RemoveNode(lr); rerr != nil {
			return updated, fmt.Errorf("%w; keeping it: %w", err, rerr)
		}
		updated = true
	}
	return updated, nil
}

// linkRoots lists the link roots at and below n in pre-order, not looking
// into linked items.
func linkRoots(n *Node) []*Node {
	if n.IsLinked() {
		return nil
	}
	var res []*Node
	if n.IsLinkRoot() {
		res = append(res, n)
	}
	for x := range n.Iter(func(x *Node) bool { return !x.IsLinked() }, true) {
		if x.IsLinkRoot() {
			res = append(res, x)
		}
	}
	return res
}

// resolveWithin brings the link roots inside a link source up to date
// before the source is read.
func (r *resolver) resolveWithin(src *Node) (bool, error) {
	updated := false
	for _, lr := range linkRoots(src) {
		u, err := r.resolve(lr, r.opts.force)
		if err != nil {
			return updated, err
		}
		updated = updated || u
	}
	return updated, nil
}

func (r *resolver) resolve(lr *Node, force bool) (bool, error) {
	if r.done[lr] {
		return false, nil
	}
	if r.active[lr] {
		return false, fmt.Errorf("%w: %s of %s", ErrCycle, lr.link, pathString(lr))
	}
	r.active[lr] = true
	defer delete(r.active, lr)

	var (
		src    *Node
		fp     uint64
		nested bool
		err    error
	)
	if lr.link.IsFile() {
		src, fp, err = r.fileSource(lr, force)
	} else {
		src, fp, nested, err = r.treeSource(lr, force)
	}
	if err != nil {
		return nested, err
	}
	r.done[lr] = true
	if src == nil {
		if debug.Links() {
			debug.Logf("itree: %s of %s is up to date\n", lr.link, pathString(lr))
		}
		return nested, nil
	}
	lr.reconcile(src, r.opts.deleteInvalid)
	lr.link.state = Resolved
	lr.link.fingerprint = fp
	if debug.Links() {
		debug.Logf("itree: resolved %s of %s with %d children\n", lr.link, pathString(lr), len(lr.children))
	}
	return true, nil
}

// treeSource returns the same-tree source of lr, nil if unchanged. Link
// roots inside the source are resolved first; nested reports whether one
// of them was updated.
func (r *resolver) treeSource(lr *Node, force bool) (src *Node, fp uint64, nested bool, err error) {
	t, err := resolveTarget(lr.Root(), lr.link.target)
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: %s of %s: %w", ErrLink, lr.link, pathString(lr), err)
	}
	if t == lr || t.IsAncestorOf(lr) || lr.IsAncestorOf(t) {
		return nil, 0, false, fmt.Errorf("%w: %s of %s targets its own branch", ErrCycle, lr.link, pathString(lr))
	}
	if nested, err = r.resolveWithin(t); err != nil {
		return nil, 0, nested, err
	}
	fp = t.Hash()
	if !force && lr.link.state == Resolved && fp == lr.link.fingerprint {
		return nil, 0, nested, nil
	}
	return t, fp, nested, nil
}

// fileSource returns the file source of lr, nil if unchanged.
func (r *resolver) fileSource(lr *Node, force bool) (*Node, uint64, error) {
	path := r.filePath(lr.link.file)
	l, err := loaderFor(path)
	if err != nil {
		return nil, 0, err
	}
	fp, err := l.Fingerprint(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s of %s: %w", ErrLink, lr.link, pathString(lr), err)
	}
	if !force && lr.link.state == Resolved && fp == lr.link.fingerprint {
		return nil, 0, nil
	}
	key := fileKey{path: path, target: lr.link.target}
	if r.active[key] {
		return nil, 0, fmt.Errorf("%w: %s is already being loaded", ErrCycle, lr.link)
	}
	r.active[key] = true
	defer delete(r.active, key)

	tree, err := l.Load(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s of %s: %w", ErrLink, lr.link, pathString(lr), err)
	}
	t, err := resolveTarget(tree, lr.link.target)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s of %s: %w", ErrLink, lr.link, pathString(lr), err)
	}
	sub := &resolver{opts: r.opts, dir: filepath.Dir(path), active: r.active, done: r.done}
	if _, err := sub.resolveWithin(t); err != nil {
		return nil, 0, err
	}
	return t, fp, nil
}

func (r *resolver) fingerprint(lr *Node) (uint64, error) {
	if !lr.link.IsFile() {
		t, err := resolveTarget(lr.Root(), lr.link.target)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrLink, lr.link, err)
		}
		return t.Hash(), nil
	}
	path := r.filePath(lr.link.file)
	l, err := loaderFor(path)
	if err != nil {
		return 0, err
	}
	return l.Fingerprint(path)
}

func (r *resolver) filePath(f string) string {
	if filepath.IsAbs(f) || r.dir == "" {
		return f
	}
	return filepath.Join(r.dir, f)
}

// resolveTarget finds the single node at target below root. A leading
// segment naming the root itself is skipped.
func resolveTarget(root *Node, target string) (*Node, error) {
	p, err := tpath.Parse(target)
	if err != nil {
		return nil, err
	}
	segs := p.Segments
	if len(segs) > 0 && segs[0].Kind == tpath.Family && root.tag.set &&
		segs[0].Tag == root.tag.name && !root.HasTag(root.tag) {
		segs = segs[1:]
	}
	return root.GetOne(selectors(segs)...)
}

var startSlot = TagIdx{Idx: -1}

// reconcile rebuilds the children of the link root n from the children of
// src. Covers and local items keep their place relative to the slots they
// follow, slots gone from the source are kept as placeholders.
func (n *Node) reconcile(src *Node, dropOrphans bool) {
	srcKeys := make([]TagIdx, len(src.children))
	srcByKey := make(map[TagIdx]*Node, len(src.children))
	for i, c := range src.children {
		k := c.TagIdx()
		srcKeys[i] = k
		srcByKey[k] = c
	}

	var oldKeys []TagIdx
	covers := map[TagIdx]*Node{}
	placeholders := map[TagIdx]*Node{}
	locals := map[TagIdx][]*Node{}
	prev := startSlot
	for _, c := range n.children {
		if c.slot != nil {
			k := *c.slot
			oldKeys = append(oldKeys, k)
			switch {
			case c.IsLinked():
			case c.IsCover():
				covers[k] = c
			case c.IsPlaceholder():
				placeholders[k] = c
			}
			prev = k
			continue
		}
		locals[prev] = append(locals[prev], c)
	}

	keys := mergeKeys(oldKeys, srcKeys)
	out := make([]*Node, 0, len(keys)+len(n.children))
	out = append(out, locals[startSlot]...)
	delete(locals, startSlot)
	for _, k := range keys {
		s, inSrc := srcByKey[k]
		cov := covers[k]
		switch {
		case inSrc && cov != nil:
			cov.covered = linkedCopy(s, k)
			out = append(out, cov)
		case inSrc:
			out = append(out, linkedCopy(s, k))
		case cov != nil:
			if !dropOrphans {
				cov.flags &^= LinkCover
				cov.slot, cov.covered = nil, nil
				out = append(out, cov)
			}
		default:
			ph := placeholders[k]
			if ph == nil {
				ph = newPlaceholder(k)
			}
			out = append(out, ph)
		}
		out = append(out, locals[k]...)
		delete(locals, k)
	}
	n.setChildren(out)
}

// mergeKeys keeps the order of the known slots and places every new source
// slot right after the source slot preceding it.
func mergeKeys(old, src []TagIdx) []TagIdx {
	res := slices.Clone(old)
	seen := make(map[TagIdx]bool, len(old)+len(src))
	for _, k := range old {
		seen[k] = true
	}
	for i, k := range src {
		if seen[k] {
			continue
		}
		pos := 0
		if i > 0 {
			pos = slices.Index(res, src[i-1]) + 1
		}
		res = slices.Insert(res, pos, k)
		seen[k] = true
	}
	return res
}

func pathString(n *Node) string {
	segs := make([]tpath.Segment, n.Depth())
	for x, i := n, len(segs)-1; x.parent != nil; x, i = x.parent, i-1 {
		if x.tag.set {
			segs[i] = tpath.Segment{Kind: tpath.TagIndex, Tag: x.tag.name, Index: x.famIdx}
			continue
		}
		segs[i] = tpath.Segment{Kind: tpath.Index, Index: x.idx}
	}
	return (&tpath.Path{Absolute: true, Segments: segs}).String()
}
