package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BR1py/itertree-sub001/convert"
	"github.com/BR1py/itertree-sub001/itree"
	"github.com/BR1py/itertree-sub001/persist"

	"github.com/scott-cotton/cli"
)

// Format is the encoding of an input document.
type Format int

const (
	UnknownFormat Format = iota
	ItreeFormat
	YAMLFormat
	JSONFormat
)

func (f Format) String() string {
	switch f {
	case ItreeFormat:
		return "itree"
	case YAMLFormat:
		return "yaml"
	case JSONFormat:
		return "json"
	}
	return "unknown"
}

func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(v) {
	case "itree", "i":
		return ItreeFormat, nil
	case "yaml", "y":
		return YAMLFormat, nil
	case "json", "j":
		return JSONFormat, nil
	}
	return UnknownFormat, fmt.Errorf("unknown format %q", v)
}

func formatOf(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case persist.Ext:
		return ItreeFormat
	case ".yaml", ".yml":
		return YAMLFormat
	case ".json":
		return JSONFormat
	}
	if bytes.HasPrefix(data, []byte(`{"`)) && bytes.Contains(data, []byte(`"format":"`+persist.FormatName+`"`)) {
		return ItreeFormat
	}
	return YAMLFormat
}

// input is a decoded document.
type input struct {
	path   string
	format Format
	root   *itree.Node
}

// getTree reads path, "-" meaning the command input, and decodes it.
// Relative file links of itree documents are resolved against the
// directory of path when resolve is set.
func getTree(cfg *MainConfig, cc *cli.Context, path string, resolve bool) (*input, error) {
	var r io.Reader
	dir := "."
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
		dir = filepath.Dir(path)
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	in := &input{path: path, format: formatOf(path, d)}
	if cfg.InFormat != nil {
		in.format = *cfg.InFormat
	}
	switch in.format {
	case ItreeFormat:
		in.root, err = persist.Load(bytes.NewReader(d), persist.ResolveLinks(resolve), persist.LinkDir(dir))
	default:
		in.root, err = convert.FromYAML(d)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return in, nil
}

// writeTree encodes root in format to w.
func writeTree(w io.Writer, root *itree.Node, format Format) error {
	if format == ItreeFormat {
		_, err := persist.Dump(w, root)
		return err
	}
	d, err := convert.ToYAML(root)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

func argsOrStdin(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}
