// Package tpath parses the string paths used to find nodes in a tree.
//
// A path is a list of segments separated by '/'. A leading '/' makes the
// path absolute, that is evaluated from the root of the tree:
//   - "a" → every child tagged a (the family a)
//   - "a#2" → the third child tagged a; "a#-1" → the last one
//   - "#2" or "2" → the third child, whatever its tag
//   - "*" → every child
//   - "a*", "?b", "[ab]c" → children whose tag matches the glob pattern
//   - "**" → the node itself and all of its descendants
//   - ".." → the parent
//   - "'a/b'#0" → quoted tags may contain any character; use \' and \\ to
//     escape quotes and backslashes
//
// A bare integer always selects by absolute position. To select children
// tagged "2", quote the tag: "'2'".
package tpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("path syntax error")

// Kind is the kind of a path segment.
type Kind int

const (
	Family Kind = iota
	TagIndex
	Index
	Glob
	Any
	Deep
	Parent
)

func (k Kind) String() string {
	switch k {
	case Family:
		return "family"
	case TagIndex:
		return "tag-index"
	case Index:
		return "index"
	case Glob:
		return "glob"
	case Any:
		return "any"
	case Deep:
		return "deep"
	case Parent:
		return "parent"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Segment is one level of a path.
type Segment struct {
	Kind Kind
	// Tag is the tag of Family and TagIndex segments and the pattern of Glob
	// segments.
	Tag string
	// Index is the position of Index and TagIndex segments.
	Index int
}

// Path is a parsed path.
type Path struct {
	Absolute bool
	Segments []Segment
}

// Parse parses a path. The empty path selects the starting node.
func Parse(s string) (*Path, error) {
	p := &Path{}
	if strings.HasPrefix(s, "/") {
		p.Absolute = true
		s = s[1:]
	}
	if s == "" {
		return p, nil
	}
	toks, err := split(s)
	if err != nil {
		return nil, err
	}
	for _, tok := range toks {
		seg, err := parseSegment(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q of %q: %w", ErrSyntax, tok, s, err)
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

// split cuts s at every '/' outside of quotes.
func split(s string) ([]string, error) {
	var (
		res     []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '\'':
			inQuote = !inQuote
		case '/':
			if inQuote {
				continue
			}
			if i == start {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrSyntax, s)
			}
			res = append(res, s[start:i])
			start = i + 1
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrSyntax, s)
	}
	if start == len(s) {
		return nil, fmt.Errorf("%w: trailing '/' in %q", ErrSyntax, s)
	}
	return append(res, s[start:]), nil
}

func parseSegment(tok string) (Segment, error) {
	switch tok {
	case "..":
		return Segment{Kind: Parent}, nil
	case "**":
		return Segment{Kind: Deep}, nil
	case "*":
		return Segment{Kind: Any}, nil
	}
	if tok[0] == '#' {
		i, err := strconv.Atoi(tok[1:])
		if err != nil {
			return Segment{}, errors.New("bad index")
		}
		return Segment{Kind: Index, Index: i}, nil
	}
	if i, err := strconv.Atoi(tok); err == nil {
		return Segment{Kind: Index, Index: i}, nil
	}
	var (
		tag    string
		rest   string
		quoted bool
	)
	if tok[0] == '\'' {
		t, n, err := unquote(tok)
		if err != nil {
			return Segment{}, err
		}
		tag, rest, quoted = t, tok[n:], true
	} else if j := strings.IndexByte(tok, '#'); j >= 0 {
		tag, rest = tok[:j], tok[j:]
	} else {
		tag = tok
	}
	if rest == "" {
		if !quoted && isGlob(tag) {
			return Segment{Kind: Glob, Tag: tag}, nil
		}
		return Segment{Kind: Family, Tag: tag}, nil
	}
	if rest[0] != '#' {
		return Segment{}, errors.New("unexpected text after tag")
	}
	if !quoted && isGlob(tag) {
		return Segment{}, errors.New("pattern cannot take an index")
	}
	i, err := strconv.Atoi(rest[1:])
	if err != nil {
		return Segment{}, errors.New("bad family index")
	}
	return Segment{Kind: TagIndex, Tag: tag, Index: i}, nil
}

// unquote reads the quoted tag at the start of tok and returns it with the
// number of bytes consumed.
func unquote(tok string) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(tok); i++ {
		switch tok[i] {
		case '\\':
			i++
			if i == len(tok) {
				return "", 0, errors.New("dangling escape")
			}
			b.WriteByte(tok[i])
		case '\'':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(tok[i])
		}
	}
	return "", 0, errors.New("unterminated quote")
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// NeedsQuote reports whether tag must be quoted to be read back as a tag.
func NeedsQuote(tag string) bool {
	if tag == "" || tag == ".." || isGlob(tag) || strings.ContainsAny(tag, "/#'\\") {
		return true
	}
	_, err := strconv.Atoi(tag)
	return err == nil
}

// Quote renders tag so that Parse reads it back as the same tag.
func Quote(tag string) string {
	if !NeedsQuote(tag) {
		return tag
	}
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(tag); i++ {
		if tag[i] == '\'' || tag[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(tag[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// String returns the canonical representation of a single segment.
func (s Segment) String() string {
	switch s.Kind {
	case Family:
		return Quote(s.Tag)
	case TagIndex:
		return Quote(s.Tag) + "#" + strconv.Itoa(s.Index)
	case Index:
		return "#" + strconv.Itoa(s.Index)
	case Glob:
		return s.Tag
	case Any:
		return "*"
	case Deep:
		return "**"
	case Parent:
		return ".."
	}
	return ""
}

// String returns the canonical representation of p.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if p.Absolute {
		b.WriteByte('/')
	}
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Split returns the first segment of path and the remaining path.
//
// Examples:
//   - Split("a/b#1/c") → ("a", "b#1/c")
//   - Split("/#0") → ("#0", "")
//   - Split("") → ("", "")
func Split(path string) (first string, rest string, err error) {
	p, err := Parse(path)
	if err != nil || len(p.Segments) == 0 {
		return "", "", err
	}
	r := &Path{Segments: p.Segments[1:]}
	return p.Segments[0].String(), r.String(), nil
}

// Join appends the segments of suffix to prefix. An absolute suffix replaces
// prefix.
func Join(prefix, suffix string) (string, error) {
	pp, err := Parse(prefix)
	if err != nil {
		return "", err
	}
	sp, err := Parse(suffix)
	if err != nil {
		return "", err
	}
	if sp.Absolute {
		return sp.String(), nil
	}
	pp.Segments = append(pp.Segments, sp.Segments...)
	return pp.String(), nil
}
