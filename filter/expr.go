package filter

import (
	"fmt"
	"path"

	"github.com/BR1py/itertree-sub001/debug"
	"github.com/BR1py/itertree-sub001/itree"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// env is what an expression sees of a node.
type env struct {
	Tag         string `expr:"tag"`
	Tagged      bool   `expr:"tagged"`
	Value       any    `expr:"value"`
	HasValue    bool   `expr:"hasValue"`
	Depth       int    `expr:"depth"`
	Idx         int    `expr:"idx"`
	FamIdx      int    `expr:"famIdx"`
	Flags       int    `expr:"flags"`
	Linked      bool   `expr:"linked"`
	Placeholder bool   `expr:"placeholder"`
	Cover       bool   `expr:"cover"`
	Size        int    `expr:"size"`
}

func nodeEnv(n *itree.Node) env {
	v, ok := n.Value().Get()
	return env{
		Tag:         n.Tag().Name(),
		Tagged:      n.Tag().IsSet(),
		Value:       v,
		HasValue:    ok,
		Depth:       n.Depth(),
		Idx:         n.Idx(),
		FamIdx:      n.TagIdx().Idx,
		Flags:       int(n.Flags()),
		Linked:      n.IsLinked(),
		Placeholder: n.IsPlaceholder(),
		Cover:       n.IsCover(),
		Size:        n.Len(),
	}
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(env{}),
		expr.AsBool(),
		expr.Function("glob", func(params ...any) (any, error) {
			return path.Match(params[0].(string), params[1].(string))
		},
			new(func(string, string) bool)),
	}
}

// Expr is a filter written as a boolean expression over the fields of a
// node, for example
//
//	tag == "port" && value > 1024
//	glob("x*", tag) && !linked
type Expr struct {
	src string
	prg *vm.Program
	err error
}

// NewExpr compiles src.
func NewExpr(src string) (*Expr, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", src, err)
	}
	return &Expr{src: src, prg: prg}, nil
}

// Match evaluates the expression on n. A node on which evaluation fails
// does not match; the first such error is kept for Err.
func (e *Expr) Match(n *itree.Node) bool {
	res, err := expr.Run(e.prg, nodeEnv(n))
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("filter %q on %s: %w", e.src, n, err)
		}
		if debug.Filter() {
			debug.Logf("filter: %q on %s: %v\n", e.src, n, err)
		}
		return false
	}
	ok, _ := res.(bool)
	if debug.Filter() {
		debug.Logf("filter: %q on %s: %v\n", e.src, n, ok)
	}
	return ok
}

// Filter returns Match as an itree.Filter.
func (e *Expr) Filter() itree.Filter {
	return e.Match
}

// Err returns the first evaluation error since the last Reset.
func (e *Expr) Err() error {
	return e.err
}

func (e *Expr) Reset() {
	e.err = nil
}

func (e *Expr) String() string {
	return e.src
}
