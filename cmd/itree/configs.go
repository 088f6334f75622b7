package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BR1py/itertree-sub001/persist"
	"github.com/BR1py/itertree-sub001/render"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='render with color'"`

	InFormat *Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) renderOpts(w io.Writer) []render.Option {
	if cfg.Color {
		return []render.Option{render.WithColors(render.NewColors())}
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return []render.Option{render.WithColors(render.NewColors())}
	}
	return nil
}

type ViewConfig struct {
	*MainConfig

	NoLinks bool `cli:"name=nolinks desc='do not resolve links'"`
	Depth   int  `cli:"name=depth desc='maximum depth to render'"`
	View    *cli.Command
}

type GetConfig struct {
	*MainConfig

	Where   string `cli:"name=where desc='keep only nodes matching the expression'"`
	Subtree bool   `cli:"name=r desc='render the subtrees of the matches'"`
	Get     *cli.Command
}

type LinksConfig struct {
	*MainConfig

	Force  bool `cli:"name=force desc='reload links even when unchanged'"`
	Delete bool `cli:"name=delete desc='remove links which cannot be resolved'"`
	Links  *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Pack   string `cli:"name=pack desc='body compression: none, gzip or snappy'"`
	NoHash bool   `cli:"name=nohash desc='do not write a digest'"`
	Dump   *cli.Command
}

func (cfg *DumpConfig) dumpOpts() ([]persist.DumpOption, error) {
	c := persist.Codec(cfg.Pack)
	switch c {
	case persist.CodecNone, persist.CodecGzip, persist.CodecSnappy:
	default:
		return nil, fmt.Errorf("%w: unknown codec %q", cli.ErrUsage, cfg.Pack)
	}
	return []persist.DumpOption{persist.Pack(c), persist.CalcHash(!cfg.NoHash)}, nil
}

type ExportConfig struct {
	*MainConfig
	Export *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Merge bool `cli:"name=merge desc='patch is a json merge patch'"`
	File  bool `cli:"name=f desc='patch arg as file'"`

	Patch *cli.Command
}

type VerifyConfig struct {
	*MainConfig
	Verify *cli.Command
}
