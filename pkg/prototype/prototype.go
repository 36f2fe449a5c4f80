// Package prototype derives schemas from tagged Go structs and decodes
// resolved configurations back into them. It is an authoring convenience
// on top of the engine: declare the configuration shape once as a struct,
// get the schema, the decode step, and struct-level validation together.
package prototype

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// Field tags:
//
//	Name string `conf:"name"`                      required key
//	Retries int `conf:"retries" default:"3"`       optional with default
//	Note *string `conf:"note,optional"`            optional, no default
//	Extra map[string]string `conf:",remain"`       extra-keys catch-all
//
// Pointer fields are nullable. A default value is written as raw text and
// goes through the same interpolation and conversion pipeline as values
// in the document.

// FromStruct derives a mapping schema from a struct type (a value or a
// pointer to one).
func FromStruct(prototype any) (schema.Schema, error) {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("prototype must be a struct, got %T", prototype)
	}
	return structSchema(t, false)
}

func structSchema(t reflect.Type, nullable bool) (schema.Schema, error) {
	out := schema.Mapping{
		Required: make(map[string]schema.Schema),
		Optional: make(map[string]schema.Optional),
		Nullable: nullable,
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts := parseTag(field)
		if name == "-" {
			continue
		}

		// ",remain" doubles as the extra-keys schema marker and as the
		// mapstructure option that collects unmatched keys on decode
		if opts["remain"] {
			if field.Type.Kind() != reflect.Map || field.Type.Key().Kind() != reflect.String {
				return nil, fmt.Errorf("field %s: remain requires a map with string keys", field.Name)
			}
			extra, err := fieldSchema(field.Type.Elem())
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			out.Extra = extra
			continue
		}

		fs, err := fieldSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		def, hasDefault := field.Tag.Lookup("default")
		switch {
		case hasDefault:
			out.Optional[name] = schema.Optional{Schema: fs, Default: conf.Str(def)}
		case opts["optional"]:
			out.Optional[name] = schema.Optional{Schema: fs}
		default:
			out.Required[name] = fs
		}
	}
	return out, nil
}

func parseTag(field reflect.StructField) (string, map[string]bool) {
	tag := field.Tag.Get("conf")
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = strings.ToLower(field.Name)
	}
	opts := make(map[string]bool)
	for _, o := range parts[1:] {
		opts[o] = true
	}
	return name, opts
}

var timeType = reflect.TypeOf(time.Time{})

func fieldSchema(t reflect.Type) (schema.Schema, error) {
	nullable := false
	for t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if t == timeType {
		return schema.Scalar{Type: "datetime", Nullable: nullable}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return schema.Scalar{Type: "string", Nullable: nullable}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return schema.Scalar{Type: "integer", Nullable: nullable}, nil
	case reflect.Float32, reflect.Float64:
		return schema.Scalar{Type: "float", Nullable: nullable}, nil
	case reflect.Bool:
		return schema.Scalar{Type: "boolean", Nullable: nullable}, nil
	case reflect.Slice, reflect.Array:
		element, err := fieldSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return schema.Sequence{Element: element, Nullable: nullable}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", t.Key())
		}
		extra, err := fieldSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return schema.Mapping{Extra: extra, Nullable: nullable}, nil
	case reflect.Struct:
		return structSchema(t, nullable)
	case reflect.Interface:
		return schema.Any{}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", t)
	}
}

var validate = validator.New()

// Decode copies a resolved configuration into the target struct and runs
// struct-level validation ("validate" tags).
func Decode(resolved conf.Value, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "conf",
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(conf.ToGo(resolved)); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("validate configuration: %w", err)
	}
	return nil
}

// Resolve derives the schema from the target struct, resolves raw against
// it, and decodes the result into the target.
func Resolve(raw conf.Value, target any, opts ...engine.Option) error {
	sch, err := FromStruct(target)
	if err != nil {
		return err
	}
	resolved, err := engine.Resolve(raw, sch, opts...)
	if err != nil {
		return err
	}
	return Decode(resolved, target)
}
