package conf

import (
	"fmt"
	"sort"
	"time"
)

// FromGo converts a native Go value into a Value. Strings become
// plain-mode String values; use Raw or Recursive to tag other modes.
// Map keys are sorted so the result is deterministic; loaders that care
// about document order build Mappings directly.
func FromGo(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case string:
		return Str(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return DateTime{x}, nil
	case []any:
		seq := make(Sequence, len(x))
		for i, el := range x {
			cv, err := FromGo(el)
			if err != nil {
				return nil, err
			}
			seq[i] = cv
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			cv, err := FromGo(x[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, cv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported Go type %T", v)
	}
}

// MustFromGo is FromGo that panics on error, for literals in tests.
func MustFromGo(v any) Value {
	cv, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return cv
}

// ToGo converts a Value into native Go types: *Mapping to map[string]any,
// Sequence to []any, scalars to their Go counterparts, Null to nil.
// String modes are dropped.
func ToGo(v Value) any {
	switch x := v.(type) {
	case Null:
		return nil
	case String:
		return x.Value
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Date:
		return x.Time
	case DateTime:
		return x.Time
	case Sequence:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = ToGo(el)
		}
		return out
	case *Mapping:
		out := make(map[string]any, x.Len())
		for _, k := range x.keys {
			out[k] = ToGo(x.items[k])
		}
		return out
	default:
		return nil
	}
}
