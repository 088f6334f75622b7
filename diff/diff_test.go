package diff

import (
	"testing"

	"github.com/BR1py/itertree-sub001/itree"
	"github.com/stretchr/testify/require"
)

type shape struct {
	tag      string
	value    any
	children []shape
}

func mk(t *testing.T, s shape) *itree.Node {
	t.Helper()
	var opts []itree.NodeOption
	if s.value != nil {
		opts = append(opts, itree.WithValue(s.value))
	}
	var n *itree.Node
	if s.tag == "" {
		n = itree.NewUntagged(opts...)
	} else {
		n = itree.New(s.tag, opts...)
	}
	for _, c := range s.children {
		require.NoError(t, n.Append(mk(t, c)))
	}
	return n
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		from shape
		to   shape
		want string
	}{
		{
			name: "equal",
			from: shape{tag: "r", children: []shape{{tag: "a", value: 1}}},
			to:   shape{tag: "other", children: []shape{{tag: "a", value: 1}}},
			want: "",
		},
		{
			name: "root value",
			from: shape{tag: "r", value: "x"},
			to:   shape{tag: "r", value: "y"},
			want: "~ /: x -> y\n",
		},
		{
			name: "mixed",
			from: shape{tag: "r", children: []shape{
				{tag: "a", value: 1},
				{tag: "b", children: []shape{{tag: "x", value: 1}}},
				{tag: "c", children: []shape{{tag: "z"}}},
			}},
			to: shape{tag: "r", children: []shape{
				{tag: "a", value: 2},
				{tag: "b", children: []shape{{tag: "x", value: 1}, {tag: "y"}}},
				{tag: "d", value: 4},
			}},
			want: "~ /a#0: 1 -> 2\n" +
				"+ /b#0/y#0\n" +
				"- /c#0 (1 below)\n" +
				"+ /d#0 = 4\n",
		},
		{
			name: "untagged by position",
			from: shape{children: []shape{{value: 1}, {value: 2}}},
			to:   shape{children: []shape{{value: 1}, {value: 3}, {value: 4}}},
			want: "~ /#1: 2 -> 3\n+ /#2 = 4\n",
		},
		{
			name: "family shift",
			from: shape{children: []shape{{tag: "a", value: 1}, {tag: "a", value: 2}}},
			to:   shape{children: []shape{{tag: "a", value: 2}}},
			want: "~ /a#0: 1 -> 2\n- /a#1 = 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(mk(t, tt.from), mk(t, tt.to))
			require.Equal(t, tt.want, Unified(changes))
		})
	}
}

func TestChangeNodes(t *testing.T) {
	from := mk(t, shape{tag: "r", children: []shape{{tag: "a"}}})
	to := mk(t, shape{tag: "r", children: []shape{{tag: "a", value: 1}, {tag: "b"}}})
	changes := Diff(from, to)
	require.Len(t, changes, 2)
	require.Equal(t, Modify, changes[0].Kind)
	require.False(t, changes[0].From.IsSet())
	require.Equal(t, 1, changes[0].To.Any())
	require.Equal(t, "~ /a#0: <novalue> -> 1", changes[0].String())
	require.Equal(t, Insert, changes[1].Kind)
	b, err := to.Find("b")
	require.NoError(t, err)
	require.Same(t, b, changes[1].Node)
	require.Equal(t, "insert", Insert.String())
	require.Empty(t, Diff(from, from.DeepCopy()))
}
