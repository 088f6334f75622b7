// Package itree provides an in-memory, order preserving tree of tagged nodes.
//
// # Overview
//
// Every node owns an ordered list of children. A child can be addressed by its
// absolute position among its siblings or by its tag and its position within
// the family of siblings sharing that tag:
//
//	root := itree.New("root")
//	b0, b1 := itree.New("B"), itree.New("B")
//	root.Append(b0)
//	root.Append(b1)
//	n, _ := root.ByTagIdx(itree.NewTag("B"), 1) // b1
//	n, _ = root.Child(1)                        // b1
//
// Tags are not required to be unique among siblings. A node may carry no tag
// (NoTag) and no value (NoValue); both are explicit states rather than magic
// values.
//
// # Ownership
//
// A node has at most one parent. Attaching a node that already has a parent,
// or attaching a node into its own subtree, fails with ErrOwnership. Detaching
// a node (Remove, Detach) hands the subtree back to the caller.
//
// # Traversal
//
// Iterators are lazy range functions (iter.Seq and iter.Seq2) driven by an
// explicit frame stack, so trees of any depth can be walked:
//
//	for n := range root.IterFlat() { ... }
//	for path, n := range root.IdxPaths(nil, true) { ... }
//
// Iter with upToLow=false yields children before their parent and yields the
// iteration root last. A filter is a parent gate by default: descendants of a
// node that fails the filter are never visited. FlatFilter disables the gate.
//
// # Links
//
// A link root is a node whose children are sourced from another subtree, from
// the same tree (SameTree) or from a file (FileLink). LoadLinks materializes
// the source as read-only linked children. Local children may be mixed in,
// a linked child may be replaced by a local cover (MakeLocal), and slots that
// disappear from the source are kept as placeholders so that absolute
// positions stay stable across reloads. File links are read through loaders
// registered with RegisterFileLoader; importing the persist package registers
// the native format.
//
// # Protection
//
// ReadOnlyTree blocks structural changes at and below a node, ReadOnlyValue
// blocks value changes of a node. Linked items reject every mutation with
// ErrPermission.
//
// Nodes are not safe for concurrent use, and a tree must not be mutated while
// an iterator over it is live.
package itree
