package funclib

import (
	"fmt"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// Dict returns the dict namespace: from_items, update, update_shallow.
func Dict() engine.Namespace {
	return engine.Namespace{
		"from_items":     engine.NewLazy(dictFromItems),
		"update":         engine.New(dictUpdate),
		"update_shallow": engine.New(dictUpdateShallow),
	}
}

func mappingList(input conf.Value, fnName string) ([]*conf.Mapping, error) {
	seq, ok := input.(conf.Sequence)
	if !ok {
		return nil, fmt.Errorf("input to %q must be a list of dicts", fnName)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("input to %q must be a non-empty list of dicts", fnName)
	}
	out := make([]*conf.Mapping, len(seq))
	for i, el := range seq {
		m, ok := el.(*conf.Mapping)
		if !ok {
			return nil, fmt.Errorf("input to %q must be a list of dicts, element %d is %s", fnName, i, conf.TypeName(el))
		}
		out[i] = m
	}
	return out, nil
}

// dictUpdateShallow merges later dicts into the first, replacing whole
// entries on key collision.
func dictUpdateShallow(args engine.FunctionArgs) (conf.Value, error) {
	dicts, err := mappingList(args.Input, "update_shallow")
	if err != nil {
		return nil, err
	}
	out := conf.DeepCopy(dicts[0]).(*conf.Mapping)
	for _, m := range dicts[1:] {
		for _, key := range m.Keys() {
			v, _ := m.Get(key)
			out.Set(key, conf.DeepCopy(v))
		}
	}
	return out, nil
}

// dictUpdate merges later dicts into the first recursively.
func dictUpdate(args engine.FunctionArgs) (conf.Value, error) {
	dicts, err := mappingList(args.Input, "update")
	if err != nil {
		return nil, err
	}
	out := conf.DeepCopy(dicts[0]).(*conf.Mapping)
	for _, m := range dicts[1:] {
		out = conf.DeepUpdate(out, m)
	}
	return out, nil
}

// dictFromItems builds a dict from a list of {key, value} pairs. The
// input is resolved lazily under an explicit item schema so the keys are
// forced to strings.
func dictFromItems(args engine.FunctionArgs) (conf.Value, error) {
	itemSchema := schema.Sequence{Element: schema.Mapping{
		Required: map[string]schema.Schema{
			"key":   schema.Scalar{Type: "string"},
			"value": schema.Any{},
		},
	}}
	resolved, err := args.Resolve(args.Input, itemSchema, nil)
	if err != nil {
		return nil, err
	}

	out := conf.NewMapping()
	for _, el := range resolved.(conf.Sequence) {
		item := el.(*conf.Mapping)
		key, _ := item.Get("key")
		value, _ := item.Get("value")
		out.Set(key.(conf.String).Value, value)
	}
	return out, nil
}
