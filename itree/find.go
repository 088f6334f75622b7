package itree

import (
	"github.com/BR1py/itertree-sub001/debug"
	"github.com/BR1py/itertree-sub001/itree/tpath"
)

func selectors(segs []tpath.Segment) []Selector {
	res := make([]Selector, len(segs))
	for i, s := range segs {
		switch s.Kind {
		case tpath.Family:
			res[i] = Family(NewTag(s.Tag))
		case tpath.TagIndex:
			res[i] = TagAt(NewTag(s.Tag), s.Index)
		case tpath.Index:
			res[i] = At(s.Index)
		case tpath.Glob:
			res[i] = TagGlob(s.Tag)
		case tpath.Any:
			res[i] = All()
		case tpath.Deep:
			res[i] = Deep()
		case tpath.Parent:
			res[i] = Up()
		}
	}
	return res
}

func (n *Node) findStart(path string) (*Node, []Selector, error) {
	p, err := tpath.Parse(path)
	if err != nil {
		return nil, nil, err
	}
	start := n
	if p.Absolute {
		start = n.Root()
	}
	return start, selectors(p.Segments), nil
}

// Find returns the single node at path, see package tpath for the syntax.
func (n *Node) Find(path string) (*Node, error) {
	start, sels, err := n.findStart(path)
	if err != nil {
		return nil, err
	}
	res, err := start.GetOne(sels...)
	if debug.Find() {
		debug.Logf("itree: find %q from %s: %v %v\n", path, n, res, err)
	}
	return res, err
}

// FindAll returns the nodes at path which pass filter.
func (n *Node) FindAll(path string, filter Filter) ([]*Node, error) {
	start, sels, err := n.findStart(path)
	if err != nil {
		return nil, err
	}
	res, err := start.Get(sels...)
	if debug.Find() {
		debug.Logf("itree: find all %q from %s: %d matches %v\n", path, n, len(res), err)
	}
	if err != nil || filter == nil {
		return res, err
	}
	kept := res[:0]
	for _, x := range res {
		if filter(x) {
			kept = append(kept, x)
		}
	}
	return kept, nil
}

// Path returns the absolute path of n, using tag positions for tagged nodes
// and absolute positions for untagged ones.
func (n *Node) Path() string {
	return pathString(n)
}
