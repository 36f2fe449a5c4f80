package convert

import (
	"fmt"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// Converter turns a raw leaf value into the typed value for its position.
type Converter func(raw conf.Value) (conf.Value, error)

// Registry maps scalar type names to converters. Registries are treated
// as immutable during a resolution run.
type Registry map[string]Converter

// Has reports whether a type name is registered.
func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Merged returns a new registry with overrides layered on top of r.
func (r Registry) Merged(overrides Registry) Registry {
	out := make(Registry, len(r)+len(overrides))
	for name, c := range r {
		out[name] = c
	}
	for name, c := range overrides {
		out[name] = c
	}
	return out
}

// Default returns the built-in converters: integer, float, string,
// boolean, date, datetime, and any.
func Default() Registry {
	return Registry{
		"integer":  Arithmetic(true),
		"float":    Arithmetic(false),
		"string":   Stringify,
		"boolean":  Logic,
		"date":     SmartDate,
		"datetime": SmartDateTime,
		"any":      Identity,
	}
}

// ConversionError reports a value a converter could not handle.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string { return e.Reason }

func errorf(format string, args ...any) error {
	return &ConversionError{Reason: fmt.Sprintf(format, args...)}
}

// Stringify is the "string" converter: scalars become their string form,
// containers are rejected.
func Stringify(raw conf.Value) (conf.Value, error) {
	switch x := raw.(type) {
	case conf.String:
		return conf.Str(x.Value), nil
	case *conf.Mapping, conf.Sequence:
		return nil, errorf("cannot convert type %q to string", conf.TypeName(raw))
	case conf.Null:
		return nil, errorf("cannot convert null to string")
	default:
		return conf.Str(raw.String()), nil
	}
}

// Identity is the "any" converter.
func Identity(raw conf.Value) (conf.Value, error) { return raw, nil }
