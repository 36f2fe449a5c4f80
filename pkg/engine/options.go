package engine

import (
	"github.com/rs/zerolog"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/convert"
	"github.com/lazyconf/lazyconf/pkg/template"
)

// DefaultMaxInterpolationPasses caps the fixpoint loop of recursive
// string interpolation.
const DefaultMaxInterpolationPasses = 32

// Options holds the registries and knobs active for one resolution run.
// Functions receive a pointer to it and must treat it as read-only.
type Options struct {
	// Converters maps schema type names to converters. Defaults to
	// convert.Default().
	Converters convert.Registry

	// Functions is the flattened function registry, keyed by dotted name.
	Functions map[string]Function

	// Globals are extra names visible to every ${...} expression.
	Globals map[string]conf.Value

	// InjectRootAs, when non-empty, exposes the configuration root to
	// expressions under this name. Root keys shadow it.
	InjectRootAs string

	// Filters are helper callables for expressions. Variables shadow
	// filters of the same name.
	Filters map[string]template.Filter

	// Recognizer decides which mappings are function calls. Nil disables
	// call recognition entirely.
	Recognizer Recognizer

	// Evaluator expands ${...} expressions. Defaults to the Starlark
	// evaluator over Filters.
	Evaluator template.Evaluator

	// MaxInterpolationPasses caps recursive interpolation.
	MaxInterpolationPasses int

	// PreserveType makes Resolve return a value with the input's shape,
	// dropping keys synthesized from schema defaults.
	PreserveType bool

	// Logger receives per-run debug logs. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Option customizes a resolution run.
type Option func(*Options) error

func WithConverters(overrides convert.Registry) Option {
	return func(o *Options) error {
		o.Converters = o.Converters.Merged(overrides)
		return nil
	}
}

// WithFunctions adds functions to the registry. Nested namespaces are
// flattened to dotted names, so {"math": {"double": fn}} registers
// "math.double". Later registrations win on name collisions.
func WithFunctions(ns Namespace) Option {
	return func(o *Options) error {
		flat, err := Flatten(ns)
		if err != nil {
			return err
		}
		for name, fn := range flat {
			o.Functions[name] = fn
		}
		return nil
	}
}

func WithGlobals(globals map[string]conf.Value) Option {
	return func(o *Options) error {
		if o.Globals == nil {
			o.Globals = make(map[string]conf.Value, len(globals))
		}
		for name, v := range globals {
			o.Globals[name] = v
		}
		return nil
	}
}

func WithInjectRootAs(name string) Option {
	return func(o *Options) error {
		o.InjectRootAs = name
		return nil
	}
}

func WithFilters(filters map[string]template.Filter) Option {
	return func(o *Options) error {
		if o.Filters == nil {
			o.Filters = make(map[string]template.Filter, len(filters))
		}
		for name, f := range filters {
			o.Filters[name] = f
		}
		return nil
	}
}

// WithRecognizer replaces the call syntax. Passing nil turns every
// mapping into plain data.
func WithRecognizer(r Recognizer) Option {
	return func(o *Options) error {
		o.Recognizer = r
		return nil
	}
}

func WithEvaluator(e template.Evaluator) Option {
	return func(o *Options) error {
		o.Evaluator = e
		return nil
	}
}

func WithMaxInterpolationPasses(n int) Option {
	return func(o *Options) error {
		o.MaxInterpolationPasses = n
		return nil
	}
}

func WithPreserveType(preserve bool) Option {
	return func(o *Options) error {
		o.PreserveType = preserve
		return nil
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) error {
		o.Logger = logger
		return nil
	}
}

func defaultOptions() (Options, error) {
	functions, err := Flatten(CoreFunctions())
	if err != nil {
		return Options{}, err
	}
	return Options{
		Converters:             convert.Default(),
		Functions:              functions,
		Recognizer:             DunderRecognizer,
		MaxInterpolationPasses: DefaultMaxInterpolationPasses,
		Logger:                 zerolog.Nop(),
	}, nil
}
