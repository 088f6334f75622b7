package main

import (
	"fmt"
	"path/filepath"

	"github.com/BR1py/itertree-sub001/itree"

	"github.com/scott-cotton/cli"
)

func links(cfg *LinksConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Links.Parse(cc, args)
	if err != nil {
		return err
	}
	for _, file := range argsOrStdin(args) {
		in, err := getTree(cfg.MainConfig, cc, file, false)
		if err != nil {
			return err
		}
		opts := []itree.LinkOption{itree.Force(cfg.Force), itree.DeleteInvalid(cfg.Delete)}
		if in.path != "-" {
			opts = append(opts, itree.SourceDir(filepath.Dir(in.path)))
		}
		updated, err := in.root.LoadLinks(opts...)
		if err != nil {
			return fmt.Errorf("error resolving links of %s: %w", file, err)
		}
		isLinkRoot := func(n *itree.Node) bool { return n.IsLinkRoot() }
		for n := range in.root.Iter(isLinkRoot, true, itree.FlatFilter()) {
			var ph, cov int
			for _, c := range n.Children() {
				switch {
				case c.IsPlaceholder():
					ph++
				case c.IsCover():
					cov++
				}
			}
			fmt.Fprintf(cc.Out, "%s\t%s\t%s\tchildren=%d covers=%d placeholders=%d\n",
				n.Path(), n.Link(), n.LinkState(), n.Len(), cov, ph)
		}
		if !updated {
			fmt.Fprintf(cc.Out, "# %s: links up to date\n", file)
		}
	}
	return nil
}
