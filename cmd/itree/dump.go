package main

import (
	"fmt"

	"github.com/BR1py/itertree-sub001/persist"

	"github.com/scott-cotton/cli"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	opts, err := cfg.dumpOpts()
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: dump takes at most one file", cli.ErrUsage)
	}
	in, err := getTree(cfg.MainConfig, cc, argsOrStdin(args)[0], false)
	if err != nil {
		return err
	}
	if _, err := persist.Dump(cc.Out, in.root, opts...); err != nil {
		return fmt.Errorf("error dumping %s: %w", in.path, err)
	}
	return nil
}
