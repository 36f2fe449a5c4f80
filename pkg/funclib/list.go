package funclib

import (
	"fmt"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// List returns the list namespace: concatenate, filter, loop, range, zip.
func List() engine.Namespace {
	return engine.Namespace{
		"concatenate": engine.New(listConcatenate),
		"filter":      engine.NewLazy(listFilter),
		"loop":        engine.NewLazy(listLoop),
		"range":       engine.New(listRange),
		"zip":         engine.New(listZip),
	}
}

func listOfLists(input conf.Value, fnName string) ([]conf.Sequence, error) {
	seq, ok := input.(conf.Sequence)
	if !ok {
		return nil, fmt.Errorf("input to %q must be a list of lists", fnName)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("input to %q must be a non-empty list of lists", fnName)
	}
	out := make([]conf.Sequence, len(seq))
	for i, el := range seq {
		inner, ok := el.(conf.Sequence)
		if !ok {
			return nil, fmt.Errorf("input to %q must be a list of lists, element %d is %s", fnName, i, conf.TypeName(el))
		}
		out[i] = inner
	}
	return out, nil
}

func listConcatenate(args engine.FunctionArgs) (conf.Value, error) {
	lists, err := listOfLists(args.Input, "concatenate")
	if err != nil {
		return nil, err
	}
	var out conf.Sequence
	for _, l := range lists {
		out = append(out, l...)
	}
	return out, nil
}

// listZip transposes its input lists, stopping at the shortest one.
func listZip(args engine.FunctionArgs) (conf.Value, error) {
	lists, err := listOfLists(args.Input, "zip")
	if err != nil {
		return nil, err
	}
	shortest := len(lists[0])
	for _, l := range lists[1:] {
		if len(l) < shortest {
			shortest = len(l)
		}
	}
	out := make(conf.Sequence, shortest)
	for i := 0; i < shortest; i++ {
		entry := make(conf.Sequence, len(lists))
		for j, l := range lists {
			entry[j] = l[i]
		}
		out[i] = entry
	}
	return out, nil
}

func listRange(args engine.FunctionArgs) (conf.Value, error) {
	m, ok := args.Input.(*conf.Mapping)
	if !ok {
		return nil, fmt.Errorf("input to \"range\" must be a dict")
	}
	start, stop, step := int64(0), int64(0), int64(1)
	hasStop := false
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		n, ok := v.(conf.Int)
		if !ok {
			return nil, fmt.Errorf("the %q value in \"range\" must be an integer", key)
		}
		switch key {
		case "start":
			start = int64(n)
		case "stop":
			stop, hasStop = int64(n), true
		case "step":
			step = int64(n)
		default:
			return nil, fmt.Errorf("unexpected key %q in \"range\"", key)
		}
	}
	if !hasStop {
		return nil, fmt.Errorf("input to \"range\" must contain \"stop\"")
	}
	if step == 0 {
		return nil, fmt.Errorf("the \"step\" in \"range\" must not be zero")
	}

	out := conf.Sequence{}
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, conf.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, conf.Int(i))
		}
	}
	return out, nil
}

// loopInput reads the {variable, <overKey>, <bodyKey>} shape shared by
// loop and filter, resolving the iterated list eagerly.
func loopInput(args engine.FunctionArgs, fnName, overKey, bodyKey string) (variable string, over conf.Sequence, body conf.Value, err error) {
	m, ok := args.Input.(*conf.Mapping)
	if !ok {
		return "", nil, nil, fmt.Errorf("input to %q must be a dict with keys \"variable\", %q and %q", fnName, overKey, bodyKey)
	}
	varRaw, hasVar := m.Get("variable")
	overRaw, hasOver := m.Get(overKey)
	body, hasBody := m.Get(bodyKey)
	if !hasVar || !hasOver || !hasBody || m.Len() != 3 {
		return "", nil, nil, fmt.Errorf("input to %q must be a dict with keys \"variable\", %q and %q", fnName, overKey, bodyKey)
	}
	varStr, ok := varRaw.(conf.String)
	if !ok {
		return "", nil, nil, fmt.Errorf("the \"variable\" in %q must be a string", fnName)
	}

	resolved, err := args.Resolve(overRaw, schema.Sequence{Element: schema.Any{}}, nil)
	if err != nil {
		return "", nil, nil, err
	}
	return varStr.Value, resolved.(conf.Sequence), body, nil
}

// listLoop resolves one copy of the body per element of "over", with the
// loop variable bound to the element.
func listLoop(args engine.FunctionArgs) (conf.Value, error) {
	variable, over, body, err := loopInput(args, "loop", "over", "in")
	if err != nil {
		return nil, err
	}

	var elementSchema schema.Schema
	switch s := args.Schema.(type) {
	case schema.Sequence:
		elementSchema = s.Element
	case schema.Any:
		elementSchema = schema.Any{}
	default:
		return nil, fmt.Errorf("\"loop\" must appear at a list position")
	}

	out := make(conf.Sequence, 0, len(over))
	for _, element := range over {
		v, err := args.Resolve(body, elementSchema, map[string]conf.Value{variable: element})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// listFilter keeps the elements of "over" for which the condition
// resolves to true, with the loop variable bound to the element.
func listFilter(args engine.FunctionArgs) (conf.Value, error) {
	variable, over, condition, err := loopInput(args, "filter", "iterable", "condition")
	if err != nil {
		return nil, err
	}

	out := conf.Sequence{}
	for _, element := range over {
		v, err := args.Resolve(condition, schema.Scalar{Type: "boolean"}, map[string]conf.Value{variable: element})
		if err != nil {
			return nil, err
		}
		if b, ok := v.(conf.Bool); ok && bool(b) {
			out = append(out, element)
		}
	}
	return out, nil
}
