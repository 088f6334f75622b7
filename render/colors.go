package render

import (
	"strings"

	"github.com/fatih/color"
)

// Kind is the kind of a rendered value.
type Kind int

const (
	NoKind Kind = iota
	NullKind
	BoolKind
	NumberKind
	StringKind
	OtherKind
)

type ColorAttr int

const (
	TagColor ColorAttr = iota
	IdxColor
	ValueColor
	GuideColor
	LinkColor
	MarkColor
)

type Colorable struct {
	Kind Kind
	Attr ColorAttr
}

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	colors.Map[Colorable{Attr: TagColor}] = color.RGB(128, 168, 196).SprintfFunc()
	colors.Map[Colorable{Attr: IdxColor}] = color.RGB(96, 96, 96).SprintfFunc()
	colors.Map[Colorable{Attr: GuideColor}] = color.RGB(96, 96, 96).SprintfFunc()
	colors.Map[Colorable{Attr: LinkColor}] = color.RGB(255, 0, 196).SprintfFunc()
	colors.Map[Colorable{Attr: MarkColor}] = color.BlueString

	able := Colorable{Attr: ValueColor}
	able.Kind = NumberKind
	colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()
	able.Kind = NullKind
	colors.Map[able] = color.RGB(168, 0, 196).SprintfFunc()
	able.Kind = BoolKind
	colors.Map[able] = color.CyanString
	able.Kind = StringKind
	colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()
	able.Kind = OtherKind
	colors.Map[able] = color.RGB(198, 198, 46).SprintfFunc()
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(k Kind, a ColorAttr, s string) string {
	return c.Get(k, a)(s)
}

func (c *Colors) Get(k Kind, a ColorAttr) func(string, ...any) string {
	if c == nil {
		return colorDefault
	}
	f := c.Map[Colorable{Kind: k, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
