package main

import (
	"fmt"

	"github.com/BR1py/itertree-sub001/diff"

	"github.com/scott-cotton/cli"
)

func diffMain(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 arguments", cli.ErrUsage)
	}
	if cfg.Reverse {
		args[0], args[1] = args[1], args[0]
	}
	from, err := getTree(cfg.MainConfig, cc, args[0], true)
	if err != nil {
		return err
	}
	to, err := getTree(cfg.MainConfig, cc, args[1], true)
	if err != nil {
		return err
	}
	changes := diff.Diff(from.root, to.root)
	if len(changes) == 0 {
		return nil
	}
	fmt.Fprint(cc.Out, diff.Unified(changes))
	return cli.ExitCodeErr(1)
}
