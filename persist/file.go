package persist

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BR1py/itertree-sub001/itree"
	"github.com/cespare/xxhash/v2"
)

// Ext is the file extension of itree files.
const Ext = ".itr"

// DumpFile writes the subtree of n to path. An existing file is only
// replaced when Overwrite is given.
func DumpFile(path string, n *itree.Node, opts ...DumpOption) (string, error) {
	o := newDumpOpts(opts)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrExists, path)
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !o.overwrite {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", err
	}
	d, err := dump(f, n, o)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return d, err
}

// LoadFile reads the tree stored at path. Relative file links are resolved
// against the directory of path unless LinkDir says otherwise.
func LoadFile(path string, opts ...LoadOption) (*itree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	o := &loadOpts{checkHash: true, resolveLinks: true, linkDir: filepath.Dir(path)}
	for _, opt := range opts {
		opt(o)
	}
	root, err := load(data, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Fingerprint hashes the content of the file at path.
func Fingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

type fileLoader struct{}

// Load leaves the links of the stored tree unresolved, the link engine
// resolves them itself.
func (fileLoader) Load(path string) (*itree.Node, error) {
	return LoadFile(path, ResolveLinks(false))
}

func (fileLoader) Fingerprint(path string) (uint64, error) {
	return Fingerprint(path)
}

func init() {
	itree.RegisterFileLoader(Ext, fileLoader{})
	itree.RegisterFileLoader("", fileLoader{})
}
