package main

import (
	"fmt"

	"github.com/BR1py/itertree-sub001/render"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	files := argsOrStdin(args)
	opts := append(cfg.renderOpts(cc.Out), render.MaxDepth(cfg.Depth))
	for i, file := range files {
		in, err := getTree(cfg.MainConfig, cc, file, !cfg.NoLinks)
		if err != nil {
			return err
		}
		if err := render.Render(cc.Out, in.root, opts...); err != nil {
			return fmt.Errorf("error rendering %s: %w", file, err)
		}
		if i < len(files)-1 {
			cc.Out.Write([]byte("---\n"))
		}
	}
	return nil
}
