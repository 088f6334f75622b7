package main

import (
	"github.com/scott-cotton/cli"
)

func export(cfg *ExportConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Export.Parse(cc, args)
	if err != nil {
		return err
	}
	files := argsOrStdin(args)
	for i, file := range files {
		in, err := getTree(cfg.MainConfig, cc, file, true)
		if err != nil {
			return err
		}
		if err := writeTree(cc.Out, in.root, YAMLFormat); err != nil {
			return err
		}
		if i < len(files)-1 {
			cc.Out.Write([]byte("---\n"))
		}
	}
	return nil
}
