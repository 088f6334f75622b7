package main

import (
	"context"

	_ "github.com/BR1py/itertree-sub001/convert"
	_ "github.com/BR1py/itertree-sub001/persist"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
