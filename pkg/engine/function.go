package engine

import (
	"fmt"
	"sort"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// Func is a function implementation. It receives the argument bundle and
// returns a configuration, which may itself contain further function
// calls when the function's output is resolved.
type Func func(args FunctionArgs) (conf.Value, error)

// Function pairs an implementation with flags controlling whether the
// engine resolves the call's input before invocation and rebuilds and
// resolves its output afterwards. Both default to true via New.
type Function struct {
	Fn            Func
	ResolveInput  bool
	ResolveOutput bool

	// buildFn is the in-package escape hatch used by core functions that
	// need to return nodes instead of values (raw, template, let, ...).
	buildFn func(t *tree, callIdx int, args FunctionArgs) (int, error)
}

// New returns a Function with input and output resolution enabled.
func New(fn Func) Function {
	return Function{Fn: fn, ResolveInput: true, ResolveOutput: true}
}

// NewLazy returns a Function that receives its input unresolved.
func NewLazy(fn Func) Function {
	return Function{Fn: fn, ResolveOutput: true}
}

// ResolveFunc resolves an arbitrary sub-configuration against a schema,
// with extra local variables visible during interpolation. A nil schema
// means the schema expected at the calling position. Functions use it to
// re-evaluate configuration fragments, e.g. a loop body per iteration.
type ResolveFunc func(cfg conf.Value, sch schema.Schema, locals map[string]conf.Value) (conf.Value, error)

// FunctionArgs is the bundle passed to a function implementation.
type FunctionArgs struct {
	// Input is the call's argument: resolved when the function was
	// registered with ResolveInput, raw otherwise.
	Input conf.Value

	// Root is a lazy view of the configuration root.
	Root *View

	// Path is the keypath of the call.
	Path conf.KeyPath

	// Schema is the schema expected at the call's position.
	Schema schema.Schema

	// Resolve resolves a sub-configuration (see ResolveFunc).
	Resolve ResolveFunc

	// Options exposes the registries active for this run. They must not
	// be mutated.
	Options *Options
}

// Namespace is a possibly nested function registry: values are Function
// or Namespace. Nesting is flattened to dotted names at construction, so
// {"math": {"double": fn}} is called as __math.double__.
type Namespace map[string]any

// Flatten converts a namespace into a flat dotted-name registry.
func Flatten(ns Namespace) (map[string]Function, error) {
	out := make(map[string]Function)
	if err := flattenInto(out, "", ns); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out map[string]Function, prefix string, ns Namespace) error {
	// deterministic traversal so duplicate-name errors are stable
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		switch v := ns[name].(type) {
		case Function:
			out[full] = v
		case Func:
			out[full] = New(v)
		case Namespace:
			if err := flattenInto(out, full, v); err != nil {
				return err
			}
		case map[string]any:
			if err := flattenInto(out, full, Namespace(v)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("function registry entry %q is a %T, expected a Function or a Namespace", full, v)
		}
	}
	return nil
}
