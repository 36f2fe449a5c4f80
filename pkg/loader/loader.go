package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// LoadFile reads a configuration document, picking the format from the
// file extension: .yaml, .yml and .json parse as YAML, .toml as TOML.
func LoadFile(path string) (conf.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		return LoadYAML(data)
	case ".toml":
		return LoadTOML(data)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
}

// LoadSchemaFile reads a schema document and parses it into a Schema.
func LoadSchemaFile(path string) (schema.Schema, error) {
	v, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(v)
}

// ParseSchema converts a schema document into a schema.Schema. The
// document form mirrors the schema model:
//
//	{type: dict, required_keys: {...}, optional_keys: {...},
//	 extra_keys_schema: {...}, nullable: false}
//	{type: list, element_schema: {...}, nullable: false}
//	{type: integer, nullable: false}
//	{type: any}
//
// Values of optional_keys are schemas that may carry an extra "default"
// key.
func ParseSchema(v conf.Value) (schema.Schema, error) {
	return parseSchema(v, nil)
}

func parseSchema(v conf.Value, path conf.KeyPath) (schema.Schema, error) {
	m, ok := v.(*conf.Mapping)
	if !ok {
		return nil, schemaErrorf(path, "a schema must be a dict, got %s", conf.TypeName(v))
	}
	typeName, err := stringField(m, "type", path)
	if err != nil {
		return nil, err
	}
	nullable, err := boolField(m, "nullable", path)
	if err != nil {
		return nil, err
	}

	switch typeName {
	case "dict":
		return parseMappingSchema(m, nullable, path)
	case "list":
		if err := checkKeys(m, path, "type", "element_schema", "nullable"); err != nil {
			return nil, err
		}
		elRaw, ok := m.Get("element_schema")
		if !ok {
			return nil, schemaErrorf(path, `a list schema requires "element_schema"`)
		}
		element, err := parseSchema(elRaw, path.Child("element_schema"))
		if err != nil {
			return nil, err
		}
		return schema.Sequence{Element: element, Nullable: nullable}, nil
	case "any":
		if err := checkKeys(m, path, "type", "nullable"); err != nil {
			return nil, err
		}
		return schema.Any{}, nil
	default:
		if err := checkKeys(m, path, "type", "nullable"); err != nil {
			return nil, err
		}
		return schema.Scalar{Type: typeName, Nullable: nullable}, nil
	}
}

func parseMappingSchema(m *conf.Mapping, nullable bool, path conf.KeyPath) (schema.Schema, error) {
	if err := checkKeys(m, path, "type", "required_keys", "optional_keys", "extra_keys_schema", "nullable"); err != nil {
		return nil, err
	}
	out := schema.Mapping{Nullable: nullable}

	if rawRequired, ok := m.Get("required_keys"); ok {
		keys, ok := rawRequired.(*conf.Mapping)
		if !ok {
			return nil, schemaErrorf(path, `"required_keys" must be a dict`)
		}
		out.Required = make(map[string]schema.Schema, keys.Len())
		for _, key := range keys.Keys() {
			raw, _ := keys.Get(key)
			s, err := parseSchema(raw, path.Child("required_keys").Child(key))
			if err != nil {
				return nil, err
			}
			out.Required[key] = s
		}
	}

	if rawOptional, ok := m.Get("optional_keys"); ok {
		keys, ok := rawOptional.(*conf.Mapping)
		if !ok {
			return nil, schemaErrorf(path, `"optional_keys" must be a dict`)
		}
		out.Optional = make(map[string]schema.Optional, keys.Len())
		for _, key := range keys.Keys() {
			raw, _ := keys.Get(key)
			opt, err := parseOptional(raw, path.Child("optional_keys").Child(key))
			if err != nil {
				return nil, err
			}
			out.Optional[key] = opt
		}
	}

	if rawExtra, ok := m.Get("extra_keys_schema"); ok {
		s, err := parseSchema(rawExtra, path.Child("extra_keys_schema"))
		if err != nil {
			return nil, err
		}
		out.Extra = s
	}
	return out, nil
}

// parseOptional splits the "default" key out of an optional-key schema
// document before parsing the rest.
func parseOptional(v conf.Value, path conf.KeyPath) (schema.Optional, error) {
	m, ok := v.(*conf.Mapping)
	if !ok {
		return schema.Optional{}, schemaErrorf(path, "a schema must be a dict, got %s", conf.TypeName(v))
	}
	var def conf.Value
	rest := conf.NewMapping()
	for _, key := range m.Keys() {
		raw, _ := m.Get(key)
		if key == "default" {
			def = raw
			continue
		}
		rest.Set(key, raw)
	}
	s, err := parseSchema(rest, path)
	if err != nil {
		return schema.Optional{}, err
	}
	return schema.Optional{Schema: s, Default: def}, nil
}

func stringField(m *conf.Mapping, key string, path conf.KeyPath) (string, error) {
	raw, ok := m.Get(key)
	if !ok {
		return "", schemaErrorf(path, "a schema requires a %q key", key)
	}
	s, ok := raw.(conf.String)
	if !ok {
		return "", schemaErrorf(path, "%q must be a string, got %s", key, conf.TypeName(raw))
	}
	return s.Value, nil
}

func boolField(m *conf.Mapping, key string, path conf.KeyPath) (bool, error) {
	raw, ok := m.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := raw.(conf.Bool)
	if !ok {
		return false, schemaErrorf(path, "%q must be a boolean, got %s", key, conf.TypeName(raw))
	}
	return bool(b), nil
}

func checkKeys(m *conf.Mapping, path conf.KeyPath, allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	for _, k := range m.Keys() {
		if !ok[k] {
			return schemaErrorf(path, "unknown schema key %q", k)
		}
	}
	return nil
}

func schemaErrorf(path conf.KeyPath, format string, args ...any) error {
	return &schema.InvalidSchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
