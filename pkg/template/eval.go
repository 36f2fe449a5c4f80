package template

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// StarlarkEvaluator evaluates ${...} expressions as Starlark. Free
// identifiers resolve through the Variables source first, then through
// the filter set.
type StarlarkEvaluator struct {
	filters map[string]Filter
}

// New returns an evaluator exposing the given filters as callables.
func New(filters map[string]Filter) *StarlarkEvaluator {
	return &StarlarkEvaluator{filters: filters}
}

// universal names Starlark predeclares itself.
var universal = map[string]bool{
	"True": true, "False": true, "None": true,
	"len": true, "str": true, "int": true, "float": true, "bool": true,
	"range": true, "sorted": true, "reversed": true, "min": true,
	"max": true, "zip": true, "enumerate": true, "any": true, "all": true,
}

func (e *StarlarkEvaluator) evalExpr(src string, vars Variables) (out string, err error) {
	expr, err := syntax.ParseExpr("template", src, 0)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q: %w", src, err)
	}

	free := make(map[string]bool)
	collectFreeIdents(expr, map[string]bool{}, free)

	env := starlark.StringDict{}
	for name := range free {
		if universal[name] {
			continue
		}
		v, ok, lerr := vars.Lookup(name)
		if lerr != nil {
			return "", lerr
		}
		if ok {
			sv, cerr := toStarlark(v)
			if cerr != nil {
				return "", cerr
			}
			env[name] = sv
			continue
		}
		if f, ok := e.filters[name]; ok {
			env[name] = filterBuiltin(name, f)
			continue
		}
		return "", fmt.Errorf("name %q is not defined", name)
	}

	// Index and Iterate on lazy containers cannot return errors, so they
	// panic with lazyPanic; recover it here as an ordinary error.
	defer func() {
		if r := recover(); r != nil {
			lp, ok := r.(*lazyPanic)
			if !ok {
				panic(r)
			}
			out, err = "", lp.err
		}
	}()

	thread := &starlark.Thread{
		Name:  "template",
		Print: func(_ *starlark.Thread, _ string) {},
	}
	v, err := starlark.Eval(thread, "template", src, env)
	if err != nil {
		return "", fmt.Errorf("expression %q: %w", src, err)
	}
	return render(v), nil
}

// render turns an expression result into interpolated text. Strings are
// inserted verbatim; everything else uses its Starlark display form,
// which matches how the rest of the system prints values.
func render(v starlark.Value) string {
	if s, ok := v.(starlark.String); ok {
		return string(s)
	}
	return v.String()
}

func filterBuiltin(name string, f Filter) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: keyword arguments are not supported", b.Name())
		}
		in := make([]conf.Value, len(args))
		for i, a := range args {
			cv, err := fromStarlark(a)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", b.Name(), i, err)
			}
			in[i] = cv
		}
		result, err := f(in...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return toStarlark(result)
	})
}

// collectFreeIdents walks an expression and records identifiers that are
// not bound by a comprehension or lambda.
func collectFreeIdents(e syntax.Expr, bound map[string]bool, out map[string]bool) {
	switch n := e.(type) {
	case nil:
	case *syntax.Ident:
		if !bound[n.Name] {
			out[n.Name] = true
		}
	case *syntax.Literal:
	case *syntax.ParenExpr:
		collectFreeIdents(n.X, bound, out)
	case *syntax.UnaryExpr:
		collectFreeIdents(n.X, bound, out)
	case *syntax.BinaryExpr:
		collectFreeIdents(n.X, bound, out)
		collectFreeIdents(n.Y, bound, out)
	case *syntax.DotExpr:
		collectFreeIdents(n.X, bound, out)
	case *syntax.IndexExpr:
		collectFreeIdents(n.X, bound, out)
		collectFreeIdents(n.Y, bound, out)
	case *syntax.SliceExpr:
		collectFreeIdents(n.X, bound, out)
		collectFreeIdents(n.Lo, bound, out)
		collectFreeIdents(n.Hi, bound, out)
		collectFreeIdents(n.Step, bound, out)
	case *syntax.CallExpr:
		collectFreeIdents(n.Fn, bound, out)
		for _, arg := range n.Args {
			// name=value keyword arguments bind the name, not a variable
			if kw, ok := arg.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
				if _, isIdent := kw.X.(*syntax.Ident); isIdent {
					collectFreeIdents(kw.Y, bound, out)
					continue
				}
			}
			collectFreeIdents(arg, bound, out)
		}
	case *syntax.ListExpr:
		for _, el := range n.List {
			collectFreeIdents(el, bound, out)
		}
	case *syntax.TupleExpr:
		for _, el := range n.List {
			collectFreeIdents(el, bound, out)
		}
	case *syntax.DictExpr:
		for _, el := range n.List {
			collectFreeIdents(el, bound, out)
		}
	case *syntax.DictEntry:
		collectFreeIdents(n.Key, bound, out)
		collectFreeIdents(n.Value, bound, out)
	case *syntax.CondExpr:
		collectFreeIdents(n.Cond, bound, out)
		collectFreeIdents(n.True, bound, out)
		collectFreeIdents(n.False, bound, out)
	case *syntax.Comprehension:
		inner := copyBound(bound)
		for _, clause := range n.Clauses {
			switch c := clause.(type) {
			case *syntax.ForClause:
				collectFreeIdents(c.X, inner, out)
				bindTargets(c.Vars, inner)
			case *syntax.IfClause:
				collectFreeIdents(c.Cond, inner, out)
			}
		}
		collectFreeIdents(n.Body, inner, out)
	case *syntax.LambdaExpr:
		inner := copyBound(bound)
		for _, p := range n.Params {
			switch param := p.(type) {
			case *syntax.Ident:
				inner[param.Name] = true
			case *syntax.BinaryExpr:
				if id, ok := param.X.(*syntax.Ident); ok {
					collectFreeIdents(param.Y, bound, out)
					inner[id.Name] = true
				}
			}
		}
		collectFreeIdents(n.Body, inner, out)
	}
}

func bindTargets(e syntax.Expr, bound map[string]bool) {
	switch n := e.(type) {
	case *syntax.Ident:
		bound[n.Name] = true
	case *syntax.TupleExpr:
		for _, el := range n.List {
			bindTargets(el, bound)
		}
	case *syntax.ParenExpr:
		bindTargets(n.X, bound)
	case *syntax.ListExpr:
		for _, el := range n.List {
			bindTargets(el, bound)
		}
	}
}

func copyBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound))
	for k := range bound {
		out[k] = true
	}
	return out
}
