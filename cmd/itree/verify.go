package main

import (
	"fmt"
	"os"

	"github.com/BR1py/itertree-sub001/persist"

	"github.com/scott-cotton/cli"
)

func verify(cfg *VerifyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Verify.Parse(cc, args)
	if err != nil {
		return err
	}
	failed := false
	for _, file := range argsOrStdin(args) {
		d, err := verifyOne(cc, file)
		if err != nil {
			failed = true
			fmt.Fprintf(cc.Out, "%s: %v\n", file, err)
			continue
		}
		if d == "" {
			d = "no digest"
		}
		fmt.Fprintf(cc.Out, "%s: ok %s\n", file, d)
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func verifyOne(cc *cli.Context, file string) (string, error) {
	if file == "-" {
		return persist.Verify(cc.In)
	}
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return persist.Verify(f)
}
