// Package persist stores trees as byte streams and files.
//
// A stream is a header line holding a JSON object, a separator line
// "--", and the body. The body is the list of node records, one JSON object
// per line in pre-order, optionally compressed. When the header carries a
// digest it is the hex SHA-256 of the body bytes as stored.
//
// Linked items below link roots are stored as placeholders. A tree loaded
// without resolving its links shows the placeholders at the positions of
// the linked items; resolving the links replaces them again.
//
// Numbers in values come back as int when integral and as float64
// otherwise. Maps and slices come back as map[string]any and []any.
package persist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/BR1py/itertree-sub001/debug"
	"github.com/BR1py/itertree-sub001/itree"
)

const (
	FormatName = "itree"
	Version    = "1.0"
)

var separator = []byte("\n--\n")

type header struct {
	Format  string `json:"format"`
	Version string `json:"version"`
	Codec   Codec  `json:"codec"`
	Digest  string `json:"digest,omitempty"`
}

type dumpOpts struct {
	codec     Codec
	calcHash  bool
	overwrite bool
}

type DumpOption func(*dumpOpts)

// Pack compresses the body with codec.
func Pack(codec Codec) DumpOption {
	return func(o *dumpOpts) { o.codec = codec }
}

// CalcHash controls whether a digest is written, which is the default.
func CalcHash(v bool) DumpOption {
	return func(o *dumpOpts) { o.calcHash = v }
}

// Overwrite lets DumpFile replace an existing file.
func Overwrite(v bool) DumpOption {
	return func(o *dumpOpts) { o.overwrite = v }
}

func newDumpOpts(opts []DumpOption) *dumpOpts {
	o := &dumpOpts{codec: CodecNone, calcHash: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type loadOpts struct {
	checkHash    bool
	resolveLinks bool
	linkDir      string
}

type LoadOption func(*loadOpts)

// CheckHash controls whether the digest is verified, which is the default.
func CheckHash(v bool) LoadOption {
	return func(o *loadOpts) { o.checkHash = v }
}

// ResolveLinks controls whether the links of the loaded tree are resolved,
// which is the default.
func ResolveLinks(v bool) LoadOption {
	return func(o *loadOpts) { o.resolveLinks = v }
}

// LinkDir is the directory relative file links are resolved against.
func LinkDir(dir string) LoadOption {
	return func(o *loadOpts) { o.linkDir = dir }
}

func newLoadOpts(opts []LoadOption) *loadOpts {
	o := &loadOpts{checkHash: true, resolveLinks: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dump writes the subtree of n to w and returns the digest of the body, or
// "" if no digest was requested.
func Dump(w io.Writer, n *itree.Node, opts ...DumpOption) (string, error) {
	return dump(w, n, newDumpOpts(opts))
}

func dump(w io.Writer, n *itree.Node, o *dumpOpts) (string, error) {
	if !o.codec.valid() {
		return "", fmt.Errorf("%w: unknown codec %q", ErrBadFormat, string(o.codec))
	}
	body, err := encodeRecords(n)
	if err != nil {
		return "", err
	}
	stored, err := o.codec.encode(body)
	if err != nil {
		return "", err
	}
	h := header{Format: FormatName, Version: Version, Codec: o.codec}
	if o.calcHash {
		h.Digest = digest(stored)
	}
	hd, err := json.Marshal(&h)
	if err != nil {
		return "", err
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(hd)+len(separator)+len(stored)))
	buf.Write(hd)
	buf.Write(separator)
	buf.Write(stored)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return "", err
	}
	if debug.Persist() {
		debug.Logf("persist: dumped %s: %d body bytes, %d stored, codec %s digest %q\n",
			n, len(body), len(stored), o.codec, h.Digest)
	}
	return h.Digest, nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Load reads a tree written by Dump.
func Load(r io.Reader, opts ...LoadOption) (*itree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return load(data, newLoadOpts(opts))
}

func load(data []byte, o *loadOpts) (*itree.Node, error) {
	h, stored, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	if o.checkHash && h.Digest != "" && digest(stored) != h.Digest {
		return nil, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}
	body, err := h.Codec.decode(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %s body: %w", ErrBadFormat, h.Codec, err)
	}
	root, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	if debug.Persist() {
		debug.Logf("persist: loaded %s with %d nodes\n", root, root.DeepLen()+1)
	}
	if o.resolveLinks {
		var lopts []itree.LinkOption
		if o.linkDir != "" {
			lopts = append(lopts, itree.SourceDir(o.linkDir))
		}
		if _, err := root.LoadLinks(lopts...); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func readHeader(data []byte) (*header, []byte, error) {
	hd, stored, ok := bytes.Cut(data, separator)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing header", ErrBadFormat)
	}
	h := &header{}
	if err := json.Unmarshal(hd, h); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrBadFormat, err)
	}
	if h.Format != FormatName {
		return nil, nil, fmt.Errorf("%w: format %q", ErrBadFormat, h.Format)
	}
	if major(h.Version) != major(Version) {
		return nil, nil, fmt.Errorf("%w: %q, want %s", ErrVersion, h.Version, Version)
	}
	if h.Codec == "" {
		h.Codec = CodecNone
	}
	if !h.Codec.valid() {
		return nil, nil, fmt.Errorf("%w: unknown codec %q", ErrBadFormat, string(h.Codec))
	}
	return h, stored, nil
}

func major(v string) string {
	m, _, _ := strings.Cut(v, ".")
	return m
}

// Verify checks the digest of a stream without decoding the body. It
// returns the digest, "" when the stream carries none.
func Verify(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	h, stored, err := readHeader(data)
	if err != nil {
		return "", err
	}
	if h.Digest != "" && digest(stored) != h.Digest {
		return h.Digest, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}
	return h.Digest, nil
}
