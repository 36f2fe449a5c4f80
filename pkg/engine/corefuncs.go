package engine

import (
	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// CoreFunctions returns the built-in function registry. These functions
// manipulate the node tree directly: they control how their input is
// built (raw, resolve, fully_resolve), reuse other parts of the tree
// (splice, use), or extend the scope of their subtree (let).
func CoreFunctions() Namespace {
	return Namespace{
		"raw":           buildModeFunction(modeRaw),
		"resolve":       buildModeFunction(modeStandard),
		"recursive":     buildModeFunction(modeFull),
		"fully_resolve": buildModeFunction(modeFull),
		"template":      templateFunction(),
		"use":           useFunction(),
		"splice":        spliceFunction(),
		"let":           letFunction(),
		"if":            ifFunction(),
	}
}

// buildModeFunction rebuilds the call's input under a fixed build mode.
func buildModeFunction(mode buildMode) Function {
	return Function{buildFn: func(t *tree, callIdx int, args FunctionArgs) (int, error) {
		return t.build(args.Input, args.Schema, callIdx, args.Path, nil, mode)
	}}
}

// templateFunction wraps its input in a single-key "__template__" mapping
// built in raw mode, so the body keeps its function calls and ${...}
// expressions intact until a use call rebuilds it.
func templateFunction() Function {
	return Function{buildFn: func(t *tree, callIdx int, args FunctionArgs) (int, error) {
		wrapper := conf.NewMapping()
		wrapper.Set("__template__", args.Input)
		return t.build(wrapper, args.Schema, callIdx, args.Path, nil, modeRaw)
	}}
}

func spliceFunction() Function {
	return Function{buildFn: func(t *tree, callIdx int, args FunctionArgs) (int, error) {
		s, ok := args.Input.(conf.String)
		if !ok {
			return -1, resolutionErrorf(args.Path, "input to 'splice' must be a string keypath")
		}
		targetIdx, err := t.nodeAt(t.root, conf.ParseKeyPath(s.Value))
		if err != nil {
			return -1, err
		}
		resolved, err := t.resolveNode(targetIdx)
		if err != nil {
			return -1, err
		}
		// the copy is rebuilt under this position's schema, so the same
		// source can satisfy different types at different destinations
		return t.build(conf.DeepCopy(resolved), args.Schema, callIdx, args.Path, nil, t.nodes[callIdx].mode)
	}}
}

func useFunction() Function {
	return Function{buildFn: func(t *tree, callIdx int, args FunctionArgs) (int, error) {
		var pathStr string
		var overrides *conf.Mapping

		switch in := args.Input.(type) {
		case conf.String:
			pathStr = in.Value
		case *conf.Mapping:
			for _, key := range in.Keys() {
				v, _ := in.Get(key)
				switch key {
				case "template":
					s, ok := v.(conf.String)
					if !ok {
						return -1, resolutionErrorf(args.Path, "'use' template must be a string keypath")
					}
					pathStr = s.Value
				case "overrides":
					o, ok := v.(*conf.Mapping)
					if !ok {
						return -1, resolutionErrorf(args.Path, "'use' overrides must be a dict")
					}
					overrides = o
				default:
					return -1, resolutionErrorf(args.Path, "unexpected key %q in 'use'", key)
				}
			}
			if pathStr == "" {
				return -1, resolutionErrorf(args.Path, "'use' requires a \"template\" key")
			}
		default:
			return -1, resolutionErrorf(args.Path, "input to 'use' must be a string or a dict")
		}

		targetIdx, err := t.nodeAt(t.root, conf.ParseKeyPath(pathStr))
		if err != nil {
			return -1, err
		}
		resolved, err := t.resolveNode(targetIdx)
		if err != nil {
			return -1, err
		}
		wrapper, ok := resolved.(*conf.Mapping)
		if !ok || wrapper.Len() != 1 {
			return -1, resolutionErrorf(args.Path, "keypath %q does not refer to a template", pathStr)
		}
		tmpl, found := wrapper.Get("__template__")
		if !found {
			return -1, resolutionErrorf(args.Path, "keypath %q does not refer to a template", pathStr)
		}

		body := conf.DeepCopy(tmpl)
		if overrides != nil {
			bm, ok := body.(*conf.Mapping)
			if !ok {
				return -1, resolutionErrorf(args.Path, "'use' overrides require the template body to be a dict")
			}
			body = conf.DeepUpdate(bm, overrides)
		}
		return t.build(body, args.Schema, callIdx, args.Path, nil, modeStandard)
	}}
}

func letFunction() Function {
	return Function{buildFn: func(t *tree, callIdx int, args FunctionArgs) (int, error) {
		m, ok := args.Input.(*conf.Mapping)
		if !ok {
			return -1, resolutionErrorf(args.Path, "input to 'let' must be a dict")
		}

		var varsRaw, refsRaw *conf.Mapping
		var inRaw conf.Value
		hasIn := false
		for _, key := range m.Keys() {
			v, _ := m.Get(key)
			switch key {
			case "variables":
				vm, ok := v.(*conf.Mapping)
				if !ok {
					return -1, resolutionErrorf(args.Path, "'let' variables must be a dict")
				}
				varsRaw = vm
			case "references":
				rm, ok := v.(*conf.Mapping)
				if !ok {
					return -1, resolutionErrorf(args.Path, "'let' references must be a dict")
				}
				refsRaw = rm
			case "in":
				inRaw, hasIn = v, true
			default:
				return -1, resolutionErrorf(args.Path, "unexpected key %q in 'let'", key)
			}
		}
		if !hasIn {
			return -1, resolutionErrorf(args.Path, "'let' requires an \"in\" key")
		}

		locals := make(map[string]any)
		if varsRaw != nil {
			resolved, err := args.Resolve(varsRaw, schema.Any{}, nil)
			if err != nil {
				return -1, err
			}
			rm, ok := resolved.(*conf.Mapping)
			if !ok {
				return -1, resolutionErrorf(args.Path, "'let' variables resolved to %s, expected dict", conf.TypeName(resolved))
			}
			for _, name := range rm.Keys() {
				v, _ := rm.Get(name)
				locals[name] = v
			}
		}

		inIdx, err := t.build(inRaw, args.Schema, callIdx, args.Path, locals, t.nodes[callIdx].mode)
		if err != nil {
			return -1, err
		}

		// references are bound after the body is built: "__this__" points
		// at the body itself, so it must already have a node
		if refsRaw != nil {
			for _, name := range refsRaw.Keys() {
				tv, _ := refsRaw.Get(name)
				ts, ok := tv.(conf.String)
				if !ok {
					return -1, resolutionErrorf(args.Path, "'let' reference %q must name a target string", name)
				}
				switch ts.Value {
				case "__this__":
					if t.nodes[inIdx].kind == kindLeaf {
						return -1, resolutionErrorf(args.Path, "'let' reference %q: \"__this__\" requires a container body", name)
					}
					locals[name] = t.view(inIdx)
				case "__previous__":
					prev, err := t.previousSibling(callIdx, args.Path)
					if err != nil {
						return -1, err
					}
					locals[name] = prev
				default:
					return -1, resolutionErrorf(args.Path, "'let' reference %q has unknown target %q", name, ts.Value)
				}
			}
		}
		return inIdx, nil
	}}
}

// previousSibling finds the list element preceding the node, for the
// "__previous__" reference target. Containers come back as views, leaves
// as resolved values.
func (t *tree) previousSibling(idx int, path conf.KeyPath) (any, error) {
	n := t.nodes[idx]
	if n.parent < 0 || t.nodes[n.parent].kind != kindSequence {
		return nil, resolutionErrorf(path, "\"__previous__\" is only available inside a list")
	}
	parent := t.nodes[n.parent]
	pos := -1
	for i, e := range parent.elems {
		if e == idx {
			pos = i
			break
		}
	}
	if pos <= 0 {
		return nil, resolutionErrorf(path, "\"__previous__\": the element has no predecessor")
	}

	prevIdx := parent.elems[pos-1]
	for t.nodes[prevIdx].kind == kindCall {
		res, err := t.evaluateCall(prevIdx)
		if err != nil {
			return nil, err
		}
		prevIdx = res
	}
	if t.nodes[prevIdx].kind == kindLeaf {
		return t.resolveNode(prevIdx)
	}
	return t.view(prevIdx), nil
}

// ifFunction resolves the condition eagerly but only the selected branch,
// so the untaken branch may contain unresolvable configuration.
func ifFunction() Function {
	return Function{Fn: func(args FunctionArgs) (conf.Value, error) {
		m, ok := args.Input.(*conf.Mapping)
		if !ok {
			return nil, resolutionErrorf(args.Path, "input to 'if' must be a dict")
		}
		condRaw, hasCond := m.Get("condition")
		thenRaw, hasThen := m.Get("then")
		elseRaw, hasElse := m.Get("else")
		if !hasCond || !hasThen || !hasElse || m.Len() != 3 {
			return nil, resolutionErrorf(args.Path, "'if' requires exactly \"condition\", \"then\" and \"else\" keys")
		}

		cond, err := args.Resolve(condRaw, schema.Scalar{Type: "boolean"}, nil)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(conf.Bool)
		if !ok {
			return nil, resolutionErrorf(args.Path, "'if' condition resolved to %s, expected boolean", conf.TypeName(cond))
		}
		if bool(b) {
			return args.Resolve(thenRaw, nil, nil)
		}
		return args.Resolve(elseRaw, nil, nil)
	}}
}
