package template

import (
	"fmt"
	"strings"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// Variables supplies values for free identifiers in an expression. The
// returned value is either a conf.Value or a Container. The lookup may
// itself fail, e.g. when resolving the referenced value hits a cycle.
type Variables interface {
	Lookup(name string) (any, bool, error)
}

// Container is a lazy container exposed to expressions. Len and Keys do
// not force resolution; Get resolves leaf children on access and returns
// nested containers as Containers.
type Container interface {
	Len() int
	Keys() []string
	IsSequence() bool
	Get(key string) (any, error)
	Resolve() (conf.Value, error)
}

// Filter is a helper callable exposed to expressions by name, e.g.
// "${ upper(name) }". Variables shadow filters of the same name.
type Filter func(args ...conf.Value) (conf.Value, error)

// Evaluator expands ${...} expressions in a string.
type Evaluator interface {
	Evaluate(src string, vars Variables) (string, error)
}

// Evaluate expands every ${...} expression in src using the Starlark
// evaluator e and writes the results into the surrounding text.
func (e *StarlarkEvaluator) Evaluate(src string, vars Variables) (string, error) {
	var b strings.Builder
	rest := src
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])
		exprSrc, length, err := scanExpression(rest[start+2:])
		if err != nil {
			return "", err
		}
		out, err := e.evalExpr(exprSrc, vars)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		rest = rest[start+2+length+1:]
	}
}

// scanExpression reads up to the brace closing a ${ opener, honoring
// nested braces and string literals. It returns the expression text and
// the number of bytes consumed before the closing brace.
func scanExpression(s string) (string, int, error) {
	depth := 1
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], i, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unterminated ${...} expression")
}
