package template

import (
	"fmt"
	"strconv"

	"go.starlark.net/starlark"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// toStarlark converts a lookup result into a Starlark value. Containers
// become lazy wrappers so only the children an expression touches are
// resolved.
func toStarlark(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case Container:
		return &lazyValue{c: x}, nil
	case conf.String:
		return starlark.String(x.Value), nil
	case conf.Int:
		return starlark.MakeInt64(int64(x)), nil
	case conf.Float:
		return starlark.Float(x), nil
	case conf.Bool:
		return starlark.Bool(x), nil
	case conf.Null:
		return starlark.None, nil
	case conf.Date:
		return starlark.String(x.String()), nil
	case conf.DateTime:
		return starlark.String(x.String()), nil
	case conf.Sequence:
		elems := make([]starlark.Value, len(x))
		for i, el := range x {
			sv, err := toStarlark(el)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return starlark.NewList(elems), nil
	case *conf.Mapping:
		d := starlark.NewDict(x.Len())
		for _, k := range x.Keys() {
			cv, _ := x.Get(k)
			sv, err := toStarlark(cv)
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("cannot expose %T to an expression", v)
	}
}

// fromStarlark converts a Starlark value produced by an expression or a
// filter back into a configuration value.
func fromStarlark(v starlark.Value) (conf.Value, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return conf.Null{}, nil
	case starlark.String:
		return conf.Str(string(x)), nil
	case starlark.Bool:
		return conf.Bool(x), nil
	case starlark.Int:
		i, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s is out of range", x.String())
		}
		return conf.Int(i), nil
	case starlark.Float:
		return conf.Float(x), nil
	case *lazyValue:
		return x.c.Resolve()
	case starlark.Tuple:
		out := make(conf.Sequence, len(x))
		for i, el := range x {
			cv, err := fromStarlark(el)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case *starlark.List:
		out := make(conf.Sequence, x.Len())
		for i := 0; i < x.Len(); i++ {
			cv, err := fromStarlark(x.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case *starlark.Dict:
		out := conf.NewMapping()
		for _, item := range x.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is not a string", item[0].String())
			}
			cv, err := fromStarlark(item[1])
			if err != nil {
				return nil, err
			}
			out.Set(string(key), cv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert %s value into a configuration", v.Type())
	}
}

// lazyPanic carries a resolution error out of Starlark callbacks that
// cannot return one (Index, Iterate). evalExpr recovers it.
type lazyPanic struct{ err error }

// lazyValue adapts a Container to Starlark. Attribute and key access
// resolve the referenced child on demand.
type lazyValue struct {
	c Container
}

var (
	_ starlark.Value     = (*lazyValue)(nil)
	_ starlark.Mapping   = (*lazyValue)(nil)
	_ starlark.Sequence  = (*lazyValue)(nil)
	_ starlark.HasAttrs  = (*lazyValue)(nil)
	_ starlark.Indexable = (*lazyValue)(nil)
)

func (l *lazyValue) Type() string { return "config" }
func (l *lazyValue) Freeze()      {}
func (l *lazyValue) Truth() starlark.Bool {
	return starlark.Bool(l.c.Len() > 0)
}

func (l *lazyValue) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: config")
}

func (l *lazyValue) String() string {
	v, err := l.c.Resolve()
	if err != nil {
		panic(&lazyPanic{err})
	}
	return v.String()
}

func (l *lazyValue) Len() int { return l.c.Len() }

func (l *lazyValue) get(key string) (starlark.Value, error) {
	child, err := l.c.Get(key)
	if err != nil {
		return nil, err
	}
	return toStarlark(child)
}

// Get implements starlark.Mapping, so both config["key"] and list-style
// config[0] indexing work.
func (l *lazyValue) Get(k starlark.Value) (starlark.Value, bool, error) {
	var key string
	switch x := k.(type) {
	case starlark.String:
		key = string(x)
	case starlark.Int:
		i, ok := x.Int64()
		if !ok {
			return nil, false, fmt.Errorf("index %s out of range", x.String())
		}
		key = strconv.FormatInt(i, 10)
	default:
		return nil, false, fmt.Errorf("config keys must be strings or integers, got %s", k.Type())
	}
	if !l.has(key) {
		return nil, false, nil
	}
	v, err := l.get(key)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (l *lazyValue) has(key string) bool {
	if l.c.IsSequence() {
		i, err := strconv.Atoi(key)
		return err == nil && i >= 0 && i < l.c.Len()
	}
	for _, k := range l.c.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func (l *lazyValue) Index(i int) starlark.Value {
	v, err := l.get(strconv.Itoa(i))
	if err != nil {
		panic(&lazyPanic{err})
	}
	return v
}

func (l *lazyValue) Iterate() starlark.Iterator {
	return &lazyIterator{l: l, keys: l.c.Keys()}
}

// lazyIterator yields keys for mappings and elements for sequences,
// matching Starlark's dict/list iteration conventions.
type lazyIterator struct {
	l    *lazyValue
	keys []string
	i    int
}

func (it *lazyIterator) Next(p *starlark.Value) bool {
	if it.i >= len(it.keys) {
		return false
	}
	key := it.keys[it.i]
	it.i++
	if it.l.c.IsSequence() {
		v, err := it.l.get(key)
		if err != nil {
			panic(&lazyPanic{err})
		}
		*p = v
	} else {
		*p = starlark.String(key)
	}
	return true
}

func (it *lazyIterator) Done() {}

func (l *lazyValue) Attr(name string) (starlark.Value, error) {
	if !l.c.IsSequence() && l.has(name) {
		return l.get(name)
	}
	if l.c.IsSequence() {
		return nil, nil
	}
	switch name {
	case "keys":
		return l.method(name, func() (starlark.Value, error) {
			keys := l.c.Keys()
			elems := make([]starlark.Value, len(keys))
			for i, k := range keys {
				elems[i] = starlark.String(k)
			}
			return starlark.NewList(elems), nil
		}), nil
	case "values":
		return l.method(name, func() (starlark.Value, error) {
			keys := l.c.Keys()
			elems := make([]starlark.Value, len(keys))
			for i, k := range keys {
				v, err := l.get(k)
				if err != nil {
					return nil, err
				}
				elems[i] = v
			}
			return starlark.NewList(elems), nil
		}), nil
	case "items":
		return l.method(name, func() (starlark.Value, error) {
			keys := l.c.Keys()
			elems := make([]starlark.Value, len(keys))
			for i, k := range keys {
				v, err := l.get(k)
				if err != nil {
					return nil, err
				}
				elems[i] = starlark.Tuple{starlark.String(k), v}
			}
			return starlark.NewList(elems), nil
		}), nil
	}
	return nil, nil
}

func (l *lazyValue) AttrNames() []string {
	names := []string{"items", "keys", "values"}
	if !l.c.IsSequence() {
		names = append(names, l.c.Keys()...)
	}
	return names
}

func (l *lazyValue) method(name string, impl func() (starlark.Value, error)) starlark.Value {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 || len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected arguments", b.Name())
		}
		return impl()
	})
}
