package itree

import (
	"sync"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// linkSample builds
//
//	root
//	├── B#0
//	├── B#1
//	│   ├── x#0 = 1
//	│   │   └── deep#0
//	│   ├── y#0 = 2
//	│   └── z#0 = 3
//	└── L#0 -> link(/B#1)
func linkSample(t *testing.T) (root, b1, l *Node) {
	t.Helper()
	root = New("root")
	b1 = New("B")
	x := New("x", WithValue(1))
	require.NoError(t, x.Append(New("deep")))
	require.NoError(t, b1.Extend(x, New("y", WithValue(2)), New("z", WithValue(3))))
	l = New("L", WithLink(SameTree("/B#1")))
	require.NoError(t, root.Extend(New("B"), b1, l))
	return root, b1, l
}

func TestLinkResolve(t *testing.T) {
	root, b1, l := linkSample(t)
	require.Equal(t, Unresolved, l.LinkState())

	updated, err := root.LoadLinks()
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, Resolved, l.LinkState())
	require.Equal(t, []string{"x#0", "y#0", "z#0"}, keys(l))
	for _, c := range l.Children() {
		require.True(t, c.IsLinked(), "%s", c)
		slot, ok := c.Slot()
		require.True(t, ok)
		require.Equal(t, c.TagIdx(), slot)
	}
	deep, err := l.Find("x/deep")
	require.NoError(t, err)
	require.True(t, deep.IsLinked())
	checkIndexes(t, root)

	updated, err = root.LoadLinks()
	require.NoError(t, err)
	require.False(t, updated)

	// a slot gone from the source stays as a placeholder
	_, err = b1.Remove(1)
	require.NoError(t, err)
	updated, err = root.LoadLinks(Force(true))
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, []string{"x#0", "y#0", "z#0"}, keys(l))
	y, err := l.Child(1)
	require.NoError(t, err)
	require.True(t, y.IsPlaceholder())
	require.False(t, y.Value().IsSet())
	z, err := l.Find("z")
	require.NoError(t, err)
	require.Equal(t, 2, z.Idx())
	require.Equal(t, 3, z.Value().Any())

	// and is consumed when the slot comes back
	require.NoError(t, b1.Insert(1, New("y", WithValue(5))))
	_, err = root.LoadLinks()
	require.NoError(t, err)
	y, err = l.Child(1)
	require.NoError(t, err)
	require.False(t, y.IsPlaceholder())
	require.True(t, y.IsLinked())
	require.Equal(t, 5, y.Value().Any())
	checkIndexes(t, root)
}

func TestLinkNewSlots(t *testing.T) {
	root, b1, l := linkSample(t)
	_, err := root.LoadLinks()
	require.NoError(t, err)
	require.NoError(t, b1.Insert(1, New("w")))
	require.NoError(t, b1.Append(New("x")))
	_, err = root.LoadLinks()
	require.NoError(t, err)
	require.Equal(t, []string{"x#0", "w#0", "y#0", "z#0", "x#1"}, keys(l))
}

func TestLinkProtection(t *testing.T) {
	root, _, l := linkSample(t)
	_, err := root.LoadLinks()
	require.NoError(t, err)
	x, err := l.Child(0)
	require.NoError(t, err)
	deep, err := x.Child(0)
	require.NoError(t, err)

	tests := []struct {
		name string
		op   func() error
	}{
		{"insert at linked position", func() error { return l.Insert(0, New("q")) }},
		{"append linked tag", func() error { return l.Append(New("y")) }},
		{"extend linked tag", func() error { return l.Extend(New("q"), New("z")) }},
		{"remove linked item", func() error { _, err := l.Remove(0); return err }},
		{"move linked item", func() error { return x.Move(2) }},
		{"rename linked item", func() error { return x.Rename(NewTag("q")) }},
		{"sort link root", func() error { return l.Sort(func(a, b *Node) int { return 0 }) }},
		{"reverse link root", func() error { return l.Reverse() }},
		{"rotate link root", func() error { return l.Rotate(1) }},
		{"clear link root", func() error { return l.Clear() }},
		{"set linked value", func() error { return x.SetValue(9) }},
		{"set linked flags", func() error { return x.SetFlags(ReadOnlyValue) }},
		{"append below linked item", func() error { return deep.Append(New("q")) }},
		{"make nested item local", func() error { _, err := deep.MakeLocal(); return err }},
		{"relink link root", func() error { return l.SetLink(SameTree("/B#0")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.op())
		})
	}
	_, err = l.Remove(0)
	require.ErrorIs(t, err, ErrPermission)
	require.ErrorIs(t, l.Insert(0, New("q")), ErrPermission)
	require.ErrorIs(t, x.SetValue(9), ErrPermission)
	require.Equal(t, []string{"x#0", "y#0", "z#0"}, keys(l))

	// local items may follow the linked ones
	require.NoError(t, l.Append(New("local", WithValue("v"))))
	require.Equal(t, []string{"x#0", "y#0", "z#0", "local#0"}, keys(l))
	_, err = root.LoadLinks(Force(true))
	require.NoError(t, err)
	require.Equal(t, []string{"x#0", "y#0", "z#0", "local#0"}, keys(l))
	local, err := l.Child(3)
	require.NoError(t, err)
	require.NoError(t, local.Move(3))
	_, err = l.Remove(3)
	require.NoError(t, err)
	checkIndexes(t, root)
}

func TestMakeLocal(t *testing.T) {
	root, b1, l := linkSample(t)
	_, err := root.LoadLinks()
	require.NoError(t, err)
	x, err := l.Child(0)
	require.NoError(t, err)

	cover, err := x.MakeLocal()
	require.NoError(t, err)
	require.True(t, cover.IsCover())
	require.False(t, cover.IsLinked())
	require.Same(t, cover, l.children[0])
	require.NoError(t, cover.SetValue(10))
	deep, err := cover.Child(0)
	require.NoError(t, err)
	require.False(t, deep.IsLinked())
	require.NoError(t, deep.Append(New("extra")))

	// the cover position accepts local inserts
	require.NoError(t, l.Insert(0, New("q")))
	require.Equal(t, []string{"q#0", "x#0", "y#0", "z#0"}, keys(l))

	// reloads keep the cover and the local item in place
	require.NoError(t, b1.Family(NewTag("x"))[0].SetValue(100))
	_, err = root.LoadLinks()
	require.NoError(t, err)
	require.Equal(t, []string{"q#0", "x#0", "y#0", "z#0"}, keys(l))
	got, err := l.Child(1)
	require.NoError(t, err)
	require.Same(t, cover, got)
	require.Equal(t, 10, got.Value().Any())

	// removing the cover brings the linked item back
	removed, err := l.Remove(1)
	require.NoError(t, err)
	require.Same(t, cover, removed)
	require.False(t, removed.IsCover())
	back, err := l.Child(1)
	require.NoError(t, err)
	require.True(t, back.IsLinked())
	require.Equal(t, 100, back.Value().Any())
	checkIndexes(t, root)
}

func TestOrphanCover(t *testing.T) {
	for _, drop := range []bool{false, true} {
		root, b1, l := linkSample(t)
		_, err := root.LoadLinks()
		require.NoError(t, err)
		x, err := l.Child(0)
		require.NoError(t, err)
		cover, err := x.MakeLocal()
		require.NoError(t, err)
		_, err = b1.Remove(0)
		require.NoError(t, err)
		_, err = root.LoadLinks(DeleteInvalid(drop))
		require.NoError(t, err)
		if drop {
			require.Equal(t, []string{"y#0", "z#0"}, keys(l))
			require.Nil(t, cover.Parent())
			continue
		}
		require.Equal(t, []string{"x#0", "y#0", "z#0"}, keys(l))
		require.Same(t, cover, l.children[0])
		require.False(t, cover.IsCover())
		_, ok := cover.Slot()
		require.False(t, ok)
		require.NoError(t, cover.Rename(NewTag("renamed")))
	}
}

func TestLinkCycles(t *testing.T) {
	root := New("root")
	a := New("A", WithLink(SameTree("/B")))
	b := New("B", WithLink(SameTree("/A")))
	require.NoError(t, root.Extend(a, b))
	_, err := root.LoadLinks()
	require.ErrorIs(t, err, ErrCycle)

	updated, err := root.LoadLinks(DeleteInvalid(true))
	require.NoError(t, err)
	require.True(t, updated)
	require.Zero(t, root.Len())

	self := New("S", WithLink(SameTree("/S")))
	r2 := New("root")
	require.NoError(t, r2.Append(self))
	_, err = r2.LoadLinks()
	require.ErrorIs(t, err, ErrCycle)

	parent := New("P")
	child := New("C", WithLink(SameTree("/P")))
	r3 := New("root")
	require.NoError(t, r3.Append(parent))
	require.NoError(t, parent.Append(child))
	_, err = r3.LoadLinks()
	require.ErrorIs(t, err, ErrCycle)

	missing := New("M", WithLink(SameTree("/nope")))
	r4 := New("root")
	require.NoError(t, r4.Append(missing))
	_, err = r4.LoadLinks()
	require.ErrorIs(t, err, ErrLink)
}

func TestChainedLinks(t *testing.T) {
	root := New("root")
	src := New("S")
	require.NoError(t, src.Append(New("v", WithValue(1))))
	// M is resolved on demand while resolving N
	n := New("N", WithLink(SameTree("/M")))
	m := New("M", WithLink(SameTree("/S")))
	require.NoError(t, root.Extend(n, src, m))
	_, err := root.LoadLinks()
	require.NoError(t, err)
	require.Equal(t, []string{"v#0"}, keys(n))
	require.Equal(t, []string{"v#0"}, keys(m))

	value := func(l *Node) any {
		t.Helper()
		v, err := l.Find("v")
		require.NoError(t, err)
		return v.Value().Any()
	}
	v, err := src.Child(0)
	require.NoError(t, err)

	// N sees the change of S through M within one call
	require.NoError(t, v.SetValue(2))
	updated, err := root.LoadLinks()
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, 2, value(m))
	require.Equal(t, 2, value(n))
	updated, err = root.LoadLinks()
	require.NoError(t, err)
	require.False(t, updated)

	require.NoError(t, v.SetValue(3))
	updated, err = root.LoadLinks(Force(true))
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, 3, value(m))
	require.Equal(t, 3, value(n))
	updated, err = root.LoadLinks()
	require.NoError(t, err)
	require.False(t, updated)
}

func TestDeleteInvalidReadOnly(t *testing.T) {
	root := New("root")
	require.NoError(t, root.Append(New("M", WithLink(SameTree("/nope")))))
	require.NoError(t, root.SetFlags(ReadOnlyTree))

	updated, err := root.LoadLinks(DeleteInvalid(true))
	require.ErrorIs(t, err, ErrLink)
	require.ErrorIs(t, err, ErrReadOnly)
	require.False(t, updated)
	require.Equal(t, 1, root.Len())
}

func TestFamilyShrink(t *testing.T) {
	root := New("root")
	src := New("S")
	for i := range 3 {
		require.NoError(t, src.Append(New("b", WithValue(i))))
	}
	l := New("L", WithLink(SameTree("/S")))
	require.NoError(t, root.Extend(src, l))
	_, err := root.LoadLinks()
	require.NoError(t, err)

	// slots are keyed by tag and family index, so the family closes up
	// and the placeholder takes the last key
	_, err = src.Remove(1)
	require.NoError(t, err)
	_, err = root.LoadLinks()
	require.NoError(t, err)
	require.Equal(t, []string{"b#0", "b#1", "b#2"}, keys(l))
	var got []any
	for _, c := range l.Children() {
		got = append(got, c.Value().Any())
	}
	require.Equal(t, []any{0, 2, nil}, got)
	last, err := l.Child(2)
	require.NoError(t, err)
	require.True(t, last.IsPlaceholder())
	checkIndexes(t, root)
}

type memLoader struct {
	mu    sync.Mutex
	trees map[string]*Node
	fps   map[string]uint64
	loads int
}

func (m *memLoader) Load(path string) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trees[path]
	if !ok {
		return nil, ErrNotFound
	}
	m.loads++
	return t.DeepCopy(), nil
}

func (m *memLoader) Fingerprint(path string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trees[path]; !ok {
		return 0, ErrNotFound
	}
	return m.fps[path], nil
}

func TestFileLink(t *testing.T) {
	doc := New("doc")
	cfg := New("cfg")
	require.NoError(t, cfg.Extend(New("a", WithValue(1)), New("b", WithValue(2))))
	require.NoError(t, doc.Append(cfg))
	ml := &memLoader{
		trees: map[string]*Node{"dir/doc.mem": doc},
		fps:   map[string]uint64{"dir/doc.mem": 1},
	}
	RegisterFileLoader(".mem", ml)

	root := New("root")
	f := New("F", WithLink(FileLink("doc.mem", "cfg")))
	g := New("G", WithLink(FileLink("doc.mem", "doc/cfg")))
	require.NoError(t, root.Extend(f, g))
	_, err := root.LoadLinks()
	require.ErrorIs(t, err, ErrLink)

	updated, err := root.LoadLinks(SourceDir("dir"))
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, []string{"a#0", "b#0"}, keys(f))
	require.Equal(t, []string{"a#0", "b#0"}, keys(g))
	require.Equal(t, "link(doc.mem:cfg)", f.Link().String())
	require.Equal(t, 2, ml.loads)

	st, err := f.CheckLink(SourceDir("dir"))
	require.NoError(t, err)
	require.Equal(t, Resolved, st)
	updated, err = root.LoadLinks(SourceDir("dir"))
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, 2, ml.loads)

	ml.mu.Lock()
	ml.fps["dir/doc.mem"] = 2
	ml.mu.Unlock()
	st, err = f.CheckLink(SourceDir("dir"))
	require.NoError(t, err)
	require.Equal(t, Stale, st)
	updated, err = root.LoadLinks(SourceDir("dir"))
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, Resolved, f.LinkState())
	require.Equal(t, 4, ml.loads)

	none := New("root")
	require.NoError(t, none.Append(New("X", WithLink(FileLink("doc.unknown", "")))))
	_, err = none.LoadLinks()
	require.ErrorIs(t, err, ErrLink)
}

func TestRecords(t *testing.T) {
	root, b1, l := linkSample(t)
	_, err := root.LoadLinks()
	require.NoError(t, err)
	_, err = b1.Remove(1)
	require.NoError(t, err)
	_, err = root.LoadLinks()
	require.NoError(t, err)
	require.NoError(t, l.Append(New("local")))
	require.NoError(t, root.SetFlags(ReadOnlyValue))

	var depths []int
	for r := range root.Records() {
		depths = append(depths, r.Depth)
	}
	// linked items are written without their subtrees
	want := []int{0, 1, 1, 2, 3, 2, 1, 2, 2, 2, 2}
	if diff := gocmp.Diff(want, depths); diff != "" {
		t.Errorf("depths (-want +got):\n%s", diff)
	}

	back, err := Build(root.Records())
	require.NoError(t, err)
	require.True(t, back.Flags().Has(ReadOnlyValue))
	bl, err := back.Find("L")
	require.NoError(t, err)
	require.True(t, bl.IsLinkRoot())
	require.Equal(t, "/B#1", bl.Link().Target())
	require.Equal(t, Unresolved, bl.LinkState())
	require.Equal(t, []string{"x#0", "y#0", "z#0", "local#0"}, keys(bl))
	for i := range 3 {
		c, err := bl.Child(i)
		require.NoError(t, err)
		require.True(t, c.IsPlaceholder(), "%s", c)
	}
	checkIndexes(t, back)

	_, err = back.LoadLinks()
	require.NoError(t, err)
	require.Equal(t, []string{"x#0", "y#0", "z#0", "local#0"}, keys(bl))
	y, err := bl.Child(1)
	require.NoError(t, err)
	require.True(t, y.IsPlaceholder())
	x, err := bl.Child(0)
	require.NoError(t, err)
	require.True(t, x.IsLinked())
	require.Equal(t, 1, x.Len())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		recs []Record
	}{
		{"no records", nil},
		{"deep first record", []Record{{Depth: 1}}},
		{"depth jump", []Record{{Depth: 0}, {Depth: 2}}},
		{"second root", []Record{{Depth: 0}, {Depth: 0}}},
		{"placeholder outside link root", []Record{{Depth: 0}, {Depth: 1, Flags: Placeholder, Slot: &TagIdx{}}}},
		{"placeholder without slot", []Record{{Depth: 0, Flags: LinkRoot}, {Depth: 1, Flags: Placeholder}}},
		{"slot on local", []Record{{Depth: 0, Flags: LinkRoot}, {Depth: 1, Slot: &TagIdx{}}}},
		{"placeholder value", []Record{{Depth: 0, Flags: LinkRoot}, {Depth: 1, Flags: Placeholder, Slot: &TagIdx{}, Value: Some(1)}}},
		{"slotted root", []Record{{Depth: 0, Flags: LinkCover, Slot: &TagIdx{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(func(yield func(Record) bool) {
				for _, r := range tt.recs {
					if !yield(r) {
						return
					}
				}
			})
			require.ErrorIs(t, err, ErrRecord)
		})
	}
}
