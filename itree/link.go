package itree

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// LinkState is the resolution state of a link root.
type LinkState int

const (
	Unresolved LinkState = iota
	Resolved
	// Stale means the source changed since the last resolution. It is only
	// set by CheckLink; resolution never detects it on its own.
	Stale
)

func (s LinkState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("LinkState(%d)", int(s))
}

// Link describes the source of a link root: a path in the same tree, or a
// file and a path inside the tree stored in it.
type Link struct {
	file   string
	target string

	state       LinkState
	fingerprint uint64
}

// SameTree links to the node at target, a find path evaluated from the root
// of the tree holding the link root.
func SameTree(target string) *Link {
	return &Link{target: target}
}

// FileLink links to the node at target in the tree stored in file. An empty
// target selects the stored root. Relative file names are resolved against
// the SourceDir option of LoadLinks.
func FileLink(file, target string) *Link {
	return &Link{file: file, target: target}
}

func (l *Link) File() string { return l.file }
func (l *Link) Target() string { return l.target }
func (l *Link) IsFile() bool { return l.file != "" }
func (l *Link) State() LinkState { return l.state }

func (l *Link) clone() *Link {
	return &Link{file: l.file, target: l.target}
}

func (l *Link) String() string {
	if l.file == "" {
		return "link(" + l.target + ")"
	}
	return "link(" + l.file + ":" + l.target + ")"
}

// FileLoader reads trees referenced by file links.
type FileLoader interface {
	// Load returns the tree stored at path with its own links unresolved.
	Load(path string) (*Node, error)
	// Fingerprint identifies the current content of path.
	Fingerprint(path string) (uint64, error)
}

var (
	loadersMu sync.RWMutex
	loaders   = map[string]FileLoader{}
)

// RegisterFileLoader registers l for file names with extension ext
// (including the dot). The empty extension registers the fallback loader.
func RegisterFileLoader(ext string, l FileLoader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders[strings.ToLower(ext)] = l
}

func loaderFor(path string) (FileLoader, error) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	if l, ok := loaders[strings.ToLower(filepath.Ext(path))]; ok {
		return l, nil
	}
	if l, ok := loaders[""]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: no loader registered for %q", ErrLink, path)
}

type linkOpts struct {
	force         bool
	deleteInvalid bool
	dir           string
}

type LinkOption func(*linkOpts)

// Force reloads every link even when its source did not change.
func Force(v bool) LinkOption {
	return func(o *linkOpts) { o.force = v }
}

// DeleteInvalid removes link roots that cannot be resolved, and covers whose
// slot disappeared from the source, instead of failing.
func DeleteInvalid(v bool) LinkOption {
	return func(o *linkOpts) { o.deleteInvalid = v }
}

// SourceDir is the directory relative file links are resolved against.
func SourceDir(dir string) LinkOption {
	return func(o *linkOpts) { o.dir = dir }
}

// SetLink turns n into a link root. Existing children stay as local items.
func (n *Node) SetLink(l *Link) error {
	if err := n.checkStructure(); err != nil {
		return err
	}
	if n.IsLinkRoot() {
		return fmt.Errorf("%w: %s is already a link root", ErrLink, n)
	}
	n.link = l
	n.flags |= LinkRoot
	return nil
}

// LinkState returns the resolution state of the link root n.
func (n *Node) LinkState() LinkState {
	if n.link == nil {
		return Unresolved
	}
	return n.link.state
}

// CheckLink compares the current source of the resolved link root n with the
// one seen at the last resolution and marks the link Stale if it changed.
func (n *Node) CheckLink(opts ...LinkOption) (LinkState, error) {
	if !n.IsLinkRoot() {
		return Unresolved, fmt.Errorf("%w: %s is not a link root", ErrLink, n)
	}
	if n.link.state == Unresolved {
		return Unresolved, nil
	}
	r := newResolver(opts)
	fp, err := r.fingerprint(n)
	if err != nil {
		return n.link.state, err
	}
	if fp != n.link.fingerprint {
		n.link.state = Stale
	}
	return n.link.state, nil
}

// LoadLinks resolves every link root at and below n. Unless Force is given,
// link roots whose source is unchanged since their last resolution are left
// as they are. It reports whether any link root changed.
func (n *Node) LoadLinks(opts ...LinkOption) (bool, error) {
	return newResolver(opts).loadAll(n)
}

// MakeLocal replaces the linked item n by a local copy covering its slot and
// returns the cover. Only direct children of a link root can be made local.
func (n *Node) MakeLocal() (*Node, error) {
	if !n.IsLinked() {
		return nil, fmt.Errorf("%w: %s is not a linked item", ErrPermission, n)
	}
	p := n.parent
	if p == nil || !p.IsLinkRoot() || n.slot == nil {
		return nil, fmt.Errorf("%w: %s is below a linked item, make the top item local", ErrPermission, n)
	}
	if err := p.checkStructure(); err != nil {
		return nil, err
	}
	cover := copyTree(n, copyLocal)
	cover.flags &^= Placeholder
	cover.flags |= LinkCover
	cover.covered = n
	p.replaceAt(n.idx, cover)
	return cover, nil
}
