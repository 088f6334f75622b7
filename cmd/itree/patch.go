package main

import (
	"fmt"
	"os"

	"github.com/BR1py/itertree-sub001/convert"

	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: patch requires a path, a patch and optionally a file", cli.ErrUsage)
	}
	path := args[0]
	p := []byte(args[1])
	if cfg.File {
		p, err = os.ReadFile(args[1])
		if err != nil {
			return err
		}
	}
	in, err := getTree(cfg.MainConfig, cc, argsOrStdin(args[2:])[0], false)
	if err != nil {
		return err
	}
	nodes, err := in.root.FindAll(path, nil)
	if err != nil {
		return fmt.Errorf("error finding %s: %w", path, err)
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%s: no nodes matched", path)
	}
	edit := convert.PatchValue
	if cfg.Merge {
		edit = convert.MergeValue
	}
	for _, n := range nodes {
		if err := edit(n, p); err != nil {
			return fmt.Errorf("error patching %s: %w", n.Path(), err)
		}
	}
	return writeTree(cc.Out, in.root, in.format)
}
