package schema

import (
	"fmt"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// Schema describes the expected structure at one configuration position.
// The interface is sealed; all implementations live in this package.
type Schema interface {
	schemaNode()
}

// Mapping describes a dict position. Required keys must be present,
// optional keys may carry a default that is synthesized when absent, and
// Extra (when non-nil) admits keys outside both sets.
type Mapping struct {
	Required map[string]Schema
	Optional map[string]Optional
	Extra    Schema
	Nullable bool
}

// Optional is an optional mapping key: its schema and, when non-nil, the
// raw default used if the key is absent. Defaults go through the same
// build-and-resolve pipeline as written values.
type Optional struct {
	Schema  Schema
	Default conf.Value
}

// Sequence describes a list position; every element shares one schema.
type Sequence struct {
	Element  Schema
	Nullable bool
}

// Scalar describes a leaf position. Type names a converter ("integer",
// "float", "string", "boolean", "date", "datetime", "any", ...).
type Scalar struct {
	Type     string
	Nullable bool
}

// Any admits any structure. Nested function calls are still recognized
// under it, leaves convert with the "any" converter, and null is always
// admitted.
type Any struct{}

// Dynamic computes a schema from the raw value it will describe and that
// value's position. It is evaluated lazily, once per position, and the
// result is validated before use.
type Dynamic func(raw conf.Value, path conf.KeyPath) (Schema, error)

func (Mapping) schemaNode()  {}
func (Sequence) schemaNode() {}
func (Scalar) schemaNode()   {}
func (Any) schemaNode()      {}
func (Dynamic) schemaNode()  {}

// InvalidSchemaError reports a malformed schema at a keypath.
type InvalidSchemaError struct {
	Path   conf.KeyPath
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid schema at keypath %q: %s", e.Path.String(), e.Reason)
}

func invalid(path conf.KeyPath, format string, args ...any) error {
	return &InvalidSchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a schema tree. knownType reports whether a scalar type
// name has a converter; a nil knownType accepts every name. Dynamic
// schemas pass validation here and are validated again when materialized.
func Validate(s Schema, knownType func(name string) bool) error {
	return validate(s, nil, knownType)
}

func validate(s Schema, path conf.KeyPath, knownType func(string) bool) error {
	switch x := s.(type) {
	case nil:
		return invalid(path, "schema is nil")
	case Mapping:
		for key, sub := range x.Required {
			if _, dup := x.Optional[key]; dup {
				return invalid(path, "key %q is both required and optional", key)
			}
			if err := validate(sub, path.Child(key), knownType); err != nil {
				return err
			}
		}
		for key, opt := range x.Optional {
			if err := validate(opt.Schema, path.Child(key), knownType); err != nil {
				return err
			}
			if _, isNull := opt.Default.(conf.Null); isNull && !nullable(opt.Schema) {
				return invalid(path.Child(key), "default is null but the schema is not nullable")
			}
		}
		if x.Extra != nil {
			if err := validate(x.Extra, path.Child("*"), knownType); err != nil {
				return err
			}
		}
		return nil
	case Sequence:
		if x.Element == nil {
			return invalid(path, "sequence schema has no element schema")
		}
		return validate(x.Element, path.Child("*"), knownType)
	case Scalar:
		if x.Type == "" {
			return invalid(path, "scalar schema has no type")
		}
		if knownType != nil && !knownType(x.Type) {
			return invalid(path, "unknown type %q", x.Type)
		}
		return nil
	case Any, Dynamic:
		return nil
	default:
		return invalid(path, "unknown schema kind %T", s)
	}
}

// nullable reports whether a schema admits null. Dynamic schemas are
// treated as nullable here since their shape is unknown until use.
func nullable(s Schema) bool {
	switch x := s.(type) {
	case Mapping:
		return x.Nullable
	case Sequence:
		return x.Nullable
	case Scalar:
		return x.Nullable
	case Any, Dynamic:
		return true
	default:
		return false
	}
}
