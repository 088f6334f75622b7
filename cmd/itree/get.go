package main

import (
	"fmt"

	"github.com/BR1py/itertree-sub001/filter"
	"github.com/BR1py/itertree-sub001/itree"
	"github.com/BR1py/itertree-sub001/render"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a path", cli.ErrUsage)
	}
	path := args[0]
	var (
		where itree.Filter
		ex    *filter.Expr
	)
	if cfg.Where != "" {
		ex, err = filter.NewExpr(cfg.Where)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		where = ex.Match
	}
	opts := cfg.renderOpts(cc.Out)
	if !cfg.Subtree {
		opts = append(opts, render.MaxDepth(0))
	}
	for _, file := range argsOrStdin(args[1:]) {
		in, err := getTree(cfg.MainConfig, cc, file, true)
		if err != nil {
			return err
		}
		res, err := in.root.FindAll(path, where)
		if err != nil {
			return fmt.Errorf("error finding %s in %s: %w", path, file, err)
		}
		if ex != nil && ex.Err() != nil {
			return ex.Err()
		}
		for _, n := range res {
			fmt.Fprintf(cc.Out, "%s\t", n.Path())
			if err := render.Render(cc.Out, n, opts...); err != nil {
				return err
			}
		}
	}
	return nil
}
