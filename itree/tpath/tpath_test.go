package tpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    *Path
		wantErr bool
	}{
		{input: "", want: &Path{}},
		{input: "/", want: &Path{Absolute: true}},
		{input: "a", want: &Path{Segments: []Segment{{Kind: Family, Tag: "a"}}}},
		{
			input: "/a#2/b#-1",
			want: &Path{Absolute: true, Segments: []Segment{
				{Kind: TagIndex, Tag: "a", Index: 2},
				{Kind: TagIndex, Tag: "b", Index: -1},
			}},
		},
		{
			input: "#3/4",
			want: &Path{Segments: []Segment{
				{Kind: Index, Index: 3},
				{Kind: Index, Index: 4},
			}},
		},
		{
			input: "*/**/../a*",
			want: &Path{Segments: []Segment{
				{Kind: Any},
				{Kind: Deep},
				{Kind: Parent},
				{Kind: Glob, Tag: "a*"},
			}},
		},
		{
			input: `'a/b'#1/'x\'y'/'*'`,
			want: &Path{Segments: []Segment{
				{Kind: TagIndex, Tag: "a/b", Index: 1},
				{Kind: Family, Tag: "x'y"},
				{Kind: Family, Tag: "*"},
			}},
		},
		{input: "'2'", want: &Path{Segments: []Segment{{Kind: Family, Tag: "2"}}}},
		{input: "a//b", wantErr: true},
		{input: "a/", wantErr: true},
		{input: "'a", wantErr: true},
		{input: "a#x", wantErr: true},
		{input: "#", wantErr: true},
		{input: "a*#1", wantErr: true},
		{input: "'a'b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrSyntax) {
					t.Fatalf("Parse(%q) error = %v, want ErrSyntax", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"/a#0/b",
		"#1/'a/b'#2",
		"*/**/..",
		"'#'/'..'/'3'#0",
		`'it\'s'`,
	} {
		p, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := p.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"plain", "plain"},
		{"", "''"},
		{"a/b", "'a/b'"},
		{"12", "'12'"},
		{"x[1]", "'x[1]'"},
		{`a\b`, `'a\\b'`},
		{"..", "'..'"},
	}
	for _, tt := range tests {
		if got := Quote(tt.tag); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.tag, got, tt.want)
		}
		p, err := Parse(Quote(tt.tag))
		if err != nil {
			t.Fatalf("Parse(Quote(%q)): %v", tt.tag, err)
		}
		if len(p.Segments) != 1 || p.Segments[0].Tag != tt.tag || p.Segments[0].Kind != Family {
			t.Errorf("Parse(Quote(%q)) = %+v", tt.tag, p.Segments)
		}
	}
}

func TestSplitJoin(t *testing.T) {
	first, rest, err := Split("a/b#1/c")
	if err != nil || first != "a" || rest != "b#1/c" {
		t.Errorf("Split = %q, %q, %v", first, rest, err)
	}
	first, rest, err = Split("/#0")
	if err != nil || first != "#0" || rest != "" {
		t.Errorf("Split = %q, %q, %v", first, rest, err)
	}
	first, rest, err = Split("")
	if err != nil || first != "" || rest != "" {
		t.Errorf("Split = %q, %q, %v", first, rest, err)
	}

	j, err := Join("/a", "b#1")
	if err != nil || j != "/a/b#1" {
		t.Errorf("Join = %q, %v", j, err)
	}
	j, err = Join("a", "/b")
	if err != nil || j != "/b" {
		t.Errorf("Join = %q, %v", j, err)
	}
	if _, err := Join("a", "b/"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Join error = %v", err)
	}
}
