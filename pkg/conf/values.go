package conf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Value is a configuration value: a Mapping, a Sequence, or one of the
// scalar types (String, Int, Float, Bool, Date, DateTime, Null).
// The interface is sealed; all implementations live in this package.
type Value interface {
	value()
	fmt.Stringer
}

// StringMode controls how a String participates in interpolation.
type StringMode int

const (
	// ModePlain strings are interpolated once during resolution.
	ModePlain StringMode = iota
	// ModeRaw strings skip interpolation and type conversion entirely.
	ModeRaw
	// ModeRecursive strings are re-interpolated until they stop changing.
	ModeRecursive
)

func (m StringMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeRecursive:
		return "recursive"
	default:
		return "plain"
	}
}

// String is a string scalar tagged with its interpolation mode.
type String struct {
	Value string
	Mode  StringMode
}

// Str returns a plain-mode string value.
func Str(s string) String { return String{Value: s} }

// Raw returns a raw-mode string value.
func Raw(s string) String { return String{Value: s, Mode: ModeRaw} }

// Recursive returns a recursive-mode string value.
func Recursive(s string) String { return String{Value: s, Mode: ModeRecursive} }

// Int is an integer scalar.
type Int int64

// Float is a floating-point scalar.
type Float float64

// Bool is a boolean scalar.
type Bool bool

// Date is a calendar date scalar.
type Date struct{ time.Time }

// DateTime is a timestamp scalar.
type DateTime struct{ time.Time }

// Null is the null scalar.
type Null struct{}

// Sequence is an ordered list of values.
type Sequence []Value

// Mapping is an ordered collection of unique string keys to values.
// Key order is preserved from insertion.
type Mapping struct {
	keys  []string
	items map[string]Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{items: make(map[string]Value)}
}

// MappingOf builds a mapping from alternating key/value pairs.
// It panics on an odd number of arguments or a non-string key; it is
// intended for literals in code and tests.
func MappingOf(pairs ...any) *Mapping {
	if len(pairs)%2 != 0 {
		panic("conf.MappingOf: odd number of arguments")
	}
	m := NewMapping()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("conf.MappingOf: key is not a string")
		}
		v, err := FromGo(pairs[i+1])
		if err != nil {
			panic("conf.MappingOf: " + err.Error())
		}
		m.Set(key, v)
	}
	return m
}

// Set inserts or replaces a key. Insertion order of new keys is preserved.
func (m *Mapping) Set(key string, v Value) {
	if m.items == nil {
		m.items = make(map[string]Value)
	}
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// Get looks up a key.
func (m *Mapping) Get(key string) (Value, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Has reports whether the key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Delete removes a key if present.
func (m *Mapping) Delete(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int { return len(m.keys) }

// SortedKeys returns the keys in lexical order. The slice is a copy.
func (m *Mapping) SortedKeys() []string {
	out := m.Keys()
	sort.Strings(out)
	return out
}

func (String) value()   {}
func (Int) value()      {}
func (Float) value()    {}
func (Bool) value()     {}
func (Date) value()     {}
func (DateTime) value() {}
func (Null) value()     {}
func (Sequence) value() {}
func (*Mapping) value() {}

func (s String) String() string { return s.Value }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string  { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (d Date) String() string     { return d.Format("2006-01-02") }
func (d DateTime) String() string { return d.Format("2006-01-02 15:04:05") }
func (Null) String() string       { return "None" }

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = displayString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (m *Mapping) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.keys {
		parts = append(parts, strconv.Quote(k)+": "+displayString(m.items[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// displayString quotes strings inside containers so nested output stays
// readable.
func displayString(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(s.Value)
	}
	return v.String()
}

// TypeName returns the short name of a value's type, as used in error
// messages and by converter registries.
func TypeName(v Value) string {
	switch v.(type) {
	case *Mapping:
		return "dict"
	case Sequence:
		return "list"
	case String:
		return "string"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Bool:
		return "boolean"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Null:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
