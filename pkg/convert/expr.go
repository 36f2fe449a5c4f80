package convert

import (
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// Arithmetic returns the converter for arithmetic expressions like
// "(7 + 3) / 5". With wantInt the result is an integer; fractional
// results truncate toward zero. An integer value passes through the
// integer converter unchanged, and likewise a float through the float
// converter. A float given to the integer converter is an error to avoid
// silent precision loss; an integer given to the float converter widens.
func Arithmetic(wantInt bool) Converter {
	return func(raw conf.Value) (conf.Value, error) {
		switch x := raw.(type) {
		case conf.Int:
			if wantInt {
				return x, nil
			}
			return conf.Float(x), nil
		case conf.Float:
			if wantInt {
				return nil, errorf("cannot implicitly convert float %v into integer", x)
			}
			return x, nil
		case conf.String:
			name := "float"
			if wantInt {
				name = "integer"
			}
			v, err := evalRestricted(x.Value, checkArithmetic, nil)
			if err != nil {
				return nil, errorf("cannot parse into %s: %q", name, x.Value)
			}
			switch n := v.(type) {
			case starlark.Int:
				i, ok := n.Int64()
				if !ok {
					return nil, errorf("cannot parse into %s: %q (out of range)", name, x.Value)
				}
				if wantInt {
					return conf.Int(i), nil
				}
				return conf.Float(i), nil
			case starlark.Float:
				if wantInt {
					return conf.Int(math.Trunc(float64(n))), nil
				}
				return conf.Float(n), nil
			default:
				return nil, errorf("cannot parse into %s: %q", name, x.Value)
			}
		default:
			name := "float"
			if wantInt {
				name = "integer"
			}
			return nil, errorf("cannot convert type %q to %s", conf.TypeName(raw), name)
		}
	}
}

// Logic is the "boolean" converter. Booleans pass through; strings are
// parsed as boolean expressions like "True and (False or True)". Both
// Python-style and lowercase literals are accepted.
func Logic(raw conf.Value) (conf.Value, error) {
	switch x := raw.(type) {
	case conf.Bool:
		return x, nil
	case conf.String:
		env := starlark.StringDict{
			"true":  starlark.True,
			"false": starlark.False,
		}
		v, err := evalRestricted(x.Value, checkLogic, env)
		if err != nil {
			return nil, errorf("cannot parse into boolean: %q", x.Value)
		}
		b, ok := v.(starlark.Bool)
		if !ok {
			return nil, errorf("cannot parse into boolean: %q", x.Value)
		}
		return conf.Bool(b), nil
	default:
		return nil, errorf("cannot convert type %q to boolean", conf.TypeName(raw))
	}
}

// evalRestricted parses src as a single expression, rejects any node the
// check does not allow, and evaluates it with Starlark.
func evalRestricted(src string, check func(syntax.Expr) error, env starlark.StringDict) (starlark.Value, error) {
	expr, err := syntax.ParseExpr("expr", src, 0)
	if err != nil {
		return nil, err
	}
	if err := check(expr); err != nil {
		return nil, err
	}
	thread := &starlark.Thread{Name: "convert"}
	if env == nil {
		env = starlark.StringDict{}
	}
	return starlark.Eval(thread, "expr", src, env)
}

func checkArithmetic(e syntax.Expr) error {
	switch n := e.(type) {
	case *syntax.Literal:
		if n.Token == syntax.INT || n.Token == syntax.FLOAT {
			return nil
		}
		return errorf("literal %v not allowed in arithmetic expression", n.Token)
	case *syntax.ParenExpr:
		return checkArithmetic(n.X)
	case *syntax.UnaryExpr:
		if n.Op != syntax.MINUS && n.Op != syntax.PLUS {
			return errorf("operator %v not allowed in arithmetic expression", n.Op)
		}
		return checkArithmetic(n.X)
	case *syntax.BinaryExpr:
		switch n.Op {
		case syntax.PLUS, syntax.MINUS, syntax.STAR, syntax.SLASH, syntax.STARSTAR:
		default:
			return errorf("operator %v not allowed in arithmetic expression", n.Op)
		}
		if err := checkArithmetic(n.X); err != nil {
			return err
		}
		return checkArithmetic(n.Y)
	default:
		return errorf("expression %T not allowed in arithmetic expression", e)
	}
}

func checkLogic(e syntax.Expr) error {
	switch n := e.(type) {
	case *syntax.Ident:
		switch n.Name {
		case "True", "False", "true", "false":
			return nil
		}
		return errorf("identifier %q not allowed in boolean expression", n.Name)
	case *syntax.ParenExpr:
		return checkLogic(n.X)
	case *syntax.UnaryExpr:
		if n.Op != syntax.NOT {
			return errorf("operator %v not allowed in boolean expression", n.Op)
		}
		return checkLogic(n.X)
	case *syntax.BinaryExpr:
		if n.Op != syntax.AND && n.Op != syntax.OR {
			return errorf("operator %v not allowed in boolean expression", n.Op)
		}
		if err := checkLogic(n.X); err != nil {
			return err
		}
		return checkLogic(n.Y)
	default:
		return errorf("expression %T not allowed in boolean expression", e)
	}
}
