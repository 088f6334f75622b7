// Package render prints trees for humans.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BR1py/itertree-sub001/itree"
	"github.com/BR1py/itertree-sub001/itree/tpath"
)

type renderOpts struct {
	colors   *Colors
	maxDepth int
	noRoot   bool
}

type Option func(*renderOpts)

// WithColors colors the output, nil disables color.
func WithColors(c *Colors) Option {
	return func(o *renderOpts) { o.colors = c }
}

// MaxDepth limits the output to d levels below the rendered node; d < 0
// means no limit.
func MaxDepth(d int) Option {
	return func(o *renderOpts) { o.maxDepth = d }
}

// ShowRoot controls whether the rendered node gets a line of its own.
func ShowRoot(v bool) Option {
	return func(o *renderOpts) { o.noRoot = !v }
}

const (
	guideMid  = "├── "
	guideLast = "└── "
	guideBar  = "│   "
	guideNone = "    "
)

// Render writes n and its subtree to w, one node per line.
func Render(w io.Writer, n *itree.Node, opts ...Option) error {
	o := &renderOpts{maxDepth: -1}
	for _, opt := range opts {
		opt(o)
	}
	bw := bufio.NewWriter(w)
	if !o.noRoot {
		bw.WriteString(Line(n, o.colors))
		bw.WriteByte('\n')
	}
	var gate itree.Filter
	if o.maxDepth >= 0 {
		base := n.Depth()
		gate = func(x *itree.Node) bool { return x.Depth()-base <= o.maxDepth }
	}
	var guides []string
	for x := range n.Iter(gate, true) {
		// innermost ancestor first
		guides = guides[:0]
		for a := x.Parent(); a != n; a = a.Parent() {
			g := guideBar
			if a.PostItem() == nil {
				g = guideNone
			}
			guides = append(guides, g)
		}
		for i := len(guides) - 1; i >= 0; i-- {
			bw.WriteString(o.colors.Color(NoKind, GuideColor, guides[i]))
		}
		g := guideMid
		if x.PostItem() == nil {
			g = guideLast
		}
		bw.WriteString(o.colors.Color(NoKind, GuideColor, g))
		bw.WriteString(Line(x, o.colors))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Line renders the single line describing n.
func Line(n *itree.Node, c *Colors) string {
	var b strings.Builder
	t := n.Tag()
	switch {
	case n.IsRoot():
		if t.IsSet() {
			b.WriteString(c.Color(NoKind, TagColor, tpath.Quote(t.Name())))
		} else {
			b.WriteString(c.Color(NoKind, IdxColor, "/"))
		}
	case t.IsSet():
		b.WriteString(c.Color(NoKind, TagColor, tpath.Quote(t.Name())))
		b.WriteString(c.Color(NoKind, IdxColor, "#"+strconv.Itoa(n.TagIdx().Idx)))
	default:
		b.WriteString(c.Color(NoKind, IdxColor, "#"+strconv.Itoa(n.Idx())))
	}
	if v, ok := n.Value().Get(); ok {
		k, s := valueString(v)
		b.WriteString(" = ")
		b.WriteString(c.Color(k, ValueColor, s))
	}
	if n.IsLinkRoot() && n.Link() != nil {
		l := n.Link()
		b.WriteString(c.Color(NoKind, LinkColor, " -> "+l.String()))
		b.WriteString(c.Color(NoKind, MarkColor, " "+l.State().String()))
	}
	for _, m := range marks(n) {
		b.WriteString(c.Color(NoKind, MarkColor, " "+m))
	}
	return b.String()
}

func marks(n *itree.Node) []string {
	var res []string
	switch {
	case n.IsPlaceholder():
		res = append(res, "(placeholder)")
	case n.IsCover():
		res = append(res, "(cover)")
	case n.IsLinked():
		res = append(res, "(linked)")
	}
	if n.Flags().Has(itree.ReadOnlyTree) {
		res = append(res, "[ro-tree]")
	}
	if n.Flags().Has(itree.ReadOnlyValue) {
		res = append(res, "[ro-value]")
	}
	return res
}

func valueString(v any) (Kind, string) {
	switch x := v.(type) {
	case nil:
		return NullKind, "null"
	case bool:
		return BoolKind, strconv.FormatBool(x)
	case string:
		return StringKind, strconv.Quote(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NumberKind, fmt.Sprint(x)
	}
	return OtherKind, fmt.Sprintf("%v", v)
}
