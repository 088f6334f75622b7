package itree

import "strings"

// Flags is the bit set describing the kind and protection of a node.
type Flags uint16

const (
	// ReadOnlyTree blocks structural mutation at and below the node.
	ReadOnlyTree Flags = 1 << iota
	// ReadOnlyValue blocks value mutation of the node.
	ReadOnlyValue
	// Placeholder marks a contentless stand-in for a link slot.
	Placeholder
	// LinkRoot marks a node whose children are sourced through a Link.
	LinkRoot
	// LinkCover marks a local node shadowing a linked slot.
	LinkCover
	// Linked marks items materialized from a link source. It is managed by
	// the link engine only.
	Linked
)

const (
	userFlags    = ReadOnlyTree | ReadOnlyValue
	persistFlags = ReadOnlyTree | ReadOnlyValue | Placeholder | LinkRoot | LinkCover
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{ReadOnlyTree, "ReadOnlyTree"},
	{ReadOnlyValue, "ReadOnlyValue"},
	{Placeholder, "Placeholder"},
	{LinkRoot, "LinkRoot"},
	{LinkCover, "LinkCover"},
	{Linked, "Linked"},
}

func (f Flags) Has(m Flags) bool { return f&m == m }

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
