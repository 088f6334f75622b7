package itree

import (
	"cmp"
	"errors"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// keys lists the tag positions of the children of n.
func keys(n *Node) []string {
	var res []string
	for _, c := range n.Children() {
		res = append(res, c.TagIdx().String())
	}
	return res
}

// checkIndexes verifies both child indexes of every node below n.
func checkIndexes(t *testing.T, n *Node) {
	t.Helper()
	nodes := append([]*Node{n}, collect(n.IterFlat())...)
	for _, x := range nodes {
		fams := map[Tag]int{}
		for i, c := range x.children {
			require.Same(t, x, c.parent, "parent of %s", c)
			require.Equal(t, i, c.idx, "idx of %s", c)
			require.Equal(t, fams[c.tag], c.famIdx, "family idx of %s", c)
			require.Same(t, c, x.families[c.tag][c.famIdx])
			fams[c.tag]++
		}
		require.Equal(t, len(fams), len(x.families), "families of %s", x)
		for tag, l := range fams {
			require.Len(t, x.families[tag], l)
		}
	}
}

func collect(seq func(func(*Node) bool)) []*Node {
	var res []*Node
	for n := range seq {
		res = append(res, n)
	}
	return res
}

func build(t *testing.T, tags ...string) *Node {
	t.Helper()
	root := New("root")
	for _, tag := range tags {
		var c *Node
		if tag == "" {
			c = NewUntagged()
		} else {
			c = New(tag)
		}
		require.NoError(t, root.Append(c))
	}
	return root
}

func TestIndexes(t *testing.T) {
	root := build(t, "a", "b", "a", "", "b", "a")
	checkIndexes(t, root)
	want := []string{"a#0", "b#0", "a#1", "<notag>#0", "b#1", "a#2"}
	if diff := gocmp.Diff(want, keys(root)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	require.Equal(t, []Tag{NewTag("a"), NewTag("b"), NoTag}, root.Tags())

	n, err := root.ByTagIdx(NewTag("a"), -1)
	require.NoError(t, err)
	require.Equal(t, 5, n.Idx())
	n, err = root.Child(-3)
	require.NoError(t, err)
	require.False(t, n.Tag().IsSet())

	_, err = root.ByTagIdx(NewTag("a"), 3)
	require.ErrorIs(t, err, ErrIndex)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = root.ByTagIdx(NewTag("c"), 0)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = root.Child(6)
	require.ErrorIs(t, err, ErrIndex)

	require.Equal(t, -1, root.Idx())
	require.Equal(t, -1, root.TagIdx().Idx)
}

func TestInsertRemove(t *testing.T) {
	root := build(t, "a", "b", "a")
	x := New("a", WithValue(1))
	require.NoError(t, root.Insert(1, x))
	checkIndexes(t, root)
	require.Equal(t, []string{"a#0", "a#1", "b#0", "a#2"}, keys(root))
	require.Equal(t, 1, x.TagIdx().Idx)

	require.NoError(t, root.AppendLeft(NewUntagged()))
	checkIndexes(t, root)
	require.Equal(t, 2, x.Idx())

	got, err := root.Remove(2)
	require.NoError(t, err)
	require.Same(t, x, got)
	require.Nil(t, x.Parent())
	require.Equal(t, -1, x.Idx())
	checkIndexes(t, root)
	require.Equal(t, []string{"<notag>#0", "a#0", "b#0", "a#1"}, keys(root))

	_, err = root.Remove(-1)
	require.NoError(t, err)
	require.NoError(t, root.RemoveNode(root.Family(NewTag("b"))[0]))
	checkIndexes(t, root)
	require.False(t, root.HasTag(NewTag("b")))

	require.ErrorIs(t, root.Insert(5, New("z")), ErrIndex)
	require.ErrorIs(t, root.RemoveNode(x), ErrNotFound)
	require.ErrorIs(t, x.Detach(), ErrDetached)

	require.NoError(t, root.Clear())
	require.Zero(t, root.Len())
	checkIndexes(t, root)
}

func TestOwnership(t *testing.T) {
	root := New("root")
	a := New("a")
	b := New("b")
	require.NoError(t, root.Append(a))
	require.NoError(t, a.Append(b))

	require.ErrorIs(t, root.Append(b), ErrOwnership)
	require.ErrorIs(t, b.Append(root), ErrOwnership)
	require.ErrorIs(t, a.Append(a), ErrOwnership)
	require.True(t, root.IsAncestorOf(b))
	require.False(t, b.IsAncestorOf(root))
	require.Same(t, root, b.Root())

	require.NoError(t, b.Detach())
	require.NoError(t, root.Append(b))
	checkIndexes(t, root)

	// Extend is all or nothing
	c := New("c")
	err := root.Extend(c, c)
	require.ErrorIs(t, err, ErrOwnership)
	require.Nil(t, c.Parent())
	require.Equal(t, 2, root.Len())
	require.NoError(t, root.Extend(c, New("d")))
	require.Equal(t, []string{"a#0", "b#0", "c#0", "d#0"}, keys(root))
}

func TestMoveRename(t *testing.T) {
	root := build(t, "a", "b", "a", "c")
	b := root.Family(NewTag("b"))[0]
	require.NoError(t, b.Move(3))
	checkIndexes(t, root)
	require.Equal(t, []string{"a#0", "a#1", "c#0", "b#0"}, keys(root))
	require.NoError(t, b.Move(0))
	require.Equal(t, []string{"b#0", "a#0", "a#1", "c#0"}, keys(root))
	require.ErrorIs(t, b.Move(4), ErrIndex)

	c := root.Family(NewTag("c"))[0]
	require.NoError(t, c.Rename(NewTag("a")))
	checkIndexes(t, root)
	require.Equal(t, []string{"b#0", "a#0", "a#1", "a#2"}, keys(root))
	require.NoError(t, b.Rename(NoTag))
	checkIndexes(t, root)
	require.Equal(t, []Tag{NoTag, NewTag("a")}, root.Tags())

	lone := New("x")
	require.NoError(t, lone.Rename(NewTag("y")))
	require.Equal(t, "y", lone.Tag().Name())
}

func TestReorder(t *testing.T) {
	root := New("root")
	for _, v := range []int{3, 1, 2} {
		require.NoError(t, root.Append(New("n", WithValue(v))))
	}
	values := func() []any {
		var res []any
		for _, c := range root.Children() {
			res = append(res, c.Value().Any())
		}
		return res
	}
	require.NoError(t, root.Sort(func(a, b *Node) int {
		return cmp.Compare(a.Value().Any().(int), b.Value().Any().(int))
	}))
	checkIndexes(t, root)
	require.Equal(t, []any{1, 2, 3}, values())
	require.NoError(t, root.Reverse())
	require.Equal(t, []any{3, 2, 1}, values())
	require.NoError(t, root.Rotate(1))
	require.Equal(t, []any{1, 3, 2}, values())
	require.NoError(t, root.Rotate(-4))
	require.Equal(t, []any{3, 2, 1}, values())
	checkIndexes(t, root)
	n, err := root.ByTagIdx(NewTag("n"), 0)
	require.NoError(t, err)
	require.Equal(t, 3, n.Value().Any())
}

func TestValues(t *testing.T) {
	n := New("a")
	require.False(t, n.Value().IsSet())
	require.NoError(t, n.SetValue(nil))
	v, ok := n.Value().Get()
	require.True(t, ok)
	require.Nil(t, v)
	require.NoError(t, n.ClearValue())
	require.Equal(t, NoValue, n.Value())

	require.True(t, Some([]int{1}).Equal(Some([]int{1})))
	require.False(t, Some(nil).Equal(NoValue))
	require.True(t, NoValue.Equal(NoValue))
}

func TestCopyEqualHash(t *testing.T) {
	root := build(t, "a", "b")
	a := root.Family(NewTag("a"))[0]
	require.NoError(t, a.Append(New("x", WithValue("v"), WithFlags(ReadOnlyValue))))
	require.NoError(t, a.SetValue(map[string]any{"k": 1}))

	c := root.DeepCopy()
	require.True(t, root.Equal(c))
	require.Equal(t, root.Hash(), c.Hash())
	require.Nil(t, c.Parent())
	checkIndexes(t, c)

	x, err := c.Find("a/x")
	require.NoError(t, err)
	require.True(t, x.Flags().Has(ReadOnlyValue))
	require.NoError(t, x.UnsetFlags(ReadOnlyValue))
	require.NoError(t, x.SetValue("w"))
	require.False(t, root.Equal(c))
	require.NotEqual(t, root.Hash(), c.Hash())

	shallow := a.Copy()
	require.Zero(t, shallow.Len())
	require.Nil(t, shallow.Parent())
	require.True(t, shallow.Value().Equal(a.Value()))
}

func TestCoupled(t *testing.T) {
	type widget struct{ name string }
	w := &widget{"w"}
	n := New("a", WithCoupled(w))
	require.Same(t, w, n.Coupled())
	require.Nil(t, n.DeepCopy().Coupled())
	n.SetCoupled(nil)
	require.Nil(t, n.Coupled())
}

func TestFlagsString(t *testing.T) {
	require.Equal(t, "0", Flags(0).String())
	require.Equal(t, "ReadOnlyTree|LinkRoot", (ReadOnlyTree | LinkRoot).String())
	require.True(t, errors.Is(ErrReadOnly, ErrOwnership))
}
