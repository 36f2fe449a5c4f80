package engine

import (
	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// resolveNode resolves one node, memoizing the outcome. A node observed
// in progress from within its own resolution is a circular reference.
func (t *tree) resolveNode(idx int) (conf.Value, error) {
	n := t.nodes[idx]
	switch n.state {
	case stateResolved:
		return n.value, nil
	case stateFailed:
		return nil, n.err
	case stateInProgress:
		return nil, circularError(n.path)
	}

	n.state = stateInProgress
	v, err := t.resolveValue(idx, n)
	if err != nil {
		err = attachPath(n.path, err)
		n.state, n.err = stateFailed, err
		return nil, err
	}
	n.state, n.value = stateResolved, v
	return v, nil
}

func (t *tree) resolveValue(idx int, n *node) (conf.Value, error) {
	switch n.kind {
	case kindMapping:
		out := conf.NewMapping()
		for _, key := range n.keys {
			cv, err := t.resolveNode(n.children[key])
			if err != nil {
				return nil, err
			}
			out.Set(key, cv)
		}
		return out, nil

	case kindSequence:
		out := make(conf.Sequence, 0, len(n.elems))
		for _, elem := range n.elems {
			cv, err := t.resolveNode(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil

	case kindCall:
		res, err := t.evaluateCall(idx)
		if err != nil {
			return nil, err
		}
		return t.resolveNode(res)

	default:
		return t.resolveLeaf(idx, n)
	}
}

// resolveLeaf interpolates a string leaf, then converts the result to the
// leaf's schema type. Raw strings skip both steps; leaves under a raw
// build mode skip interpolation but still convert.
func (t *tree) resolveLeaf(idx int, n *node) (conf.Value, error) {
	raw := n.raw
	if _, ok := raw.(conf.Null); ok {
		return conf.Null{}, nil
	}

	if s, ok := raw.(conf.String); ok {
		switch {
		case s.Mode == conf.ModeRaw:
			return conf.Str(s.Value), nil
		case n.mode == modeRaw:
			raw = conf.Str(s.Value)
		default:
			full := s.Mode == conf.ModeRecursive || n.mode == modeFull
			text, err := t.interpolate(s.Value, idx, full)
			if err != nil {
				return nil, err
			}
			raw = conf.Str(text)
		}
	}

	converter, ok := t.opts.Converters[n.typeName]
	if !ok {
		return nil, resolutionErrorf(n.path, "no converter provided for type %q", n.typeName)
	}
	return converter(raw)
}

// interpolate evaluates ${...} expressions in s at node idx. With full
// set, evaluation repeats until the text stops changing, so expressions
// produced by expressions are expanded too.
func (t *tree) interpolate(s string, idx int, full bool) (string, error) {
	vars := scopeVars{t: t, idx: idx}
	out, err := t.opts.Evaluator.Evaluate(s, vars)
	if err != nil {
		return "", err
	}
	if !full {
		return out, nil
	}
	for pass := 1; out != s; pass++ {
		if pass >= t.opts.MaxInterpolationPasses {
			return "", resolutionErrorf(t.nodes[idx].path,
				"interpolation did not stabilize after %d passes", t.opts.MaxInterpolationPasses)
		}
		s = out
		out, err = t.opts.Evaluator.Evaluate(s, vars)
		if err != nil {
			return "", err
		}
	}
	return out, nil
}

// evaluateCall invokes the function behind a call node and memoizes the
// index of the node its result was built into. Re-entering a call that is
// still evaluating is a circular reference.
func (t *tree) evaluateCall(idx int) (int, error) {
	n := t.nodes[idx]
	if n.result >= 0 {
		return n.result, nil
	}
	if n.state == stateFailed {
		return -1, n.err
	}
	if n.evaluating {
		return -1, circularError(n.path)
	}

	n.evaluating = true
	res, err := t.invoke(idx, n)
	n.evaluating = false
	if err != nil {
		err = attachPath(n.path, err)
		n.state, n.err = stateFailed, err
		return -1, err
	}
	n.result = res
	return res, nil
}

func (t *tree) invoke(idx int, n *node) (int, error) {
	input := n.input
	if n.fn.ResolveInput {
		inIdx, err := t.build(input, schema.Any{}, idx, n.path, nil, n.mode)
		if err != nil {
			return -1, err
		}
		resolved, err := t.resolveNode(inIdx)
		if err != nil {
			return -1, err
		}
		input = resolved
	}

	args := FunctionArgs{
		Input:   input,
		Root:    t.view(t.root),
		Path:    n.path,
		Schema:  n.sch,
		Resolve: t.resolveFuncFor(idx, n),
		Options: t.opts,
	}

	var resIdx int
	if n.fn.buildFn != nil {
		built, err := n.fn.buildFn(t, idx, args)
		if err != nil {
			return -1, err
		}
		resIdx = built
	} else {
		out, err := n.fn.Fn(args)
		if err != nil {
			return -1, err
		}
		if n.fn.ResolveOutput {
			built, err := t.build(out, n.sch, idx, n.path, nil, n.mode)
			if err != nil {
				return -1, err
			}
			resIdx = built
		} else {
			resIdx = t.addResolved(out, idx, n.path)
		}
	}

	// a function may return another call; chase it so callers always see
	// a concrete node
	for t.nodes[resIdx].kind == kindCall {
		next, err := t.evaluateCall(resIdx)
		if err != nil {
			return -1, err
		}
		resIdx = next
	}
	return resIdx, nil
}

func (t *tree) resolveFuncFor(callIdx int, n *node) ResolveFunc {
	return func(cfg conf.Value, sch schema.Schema, locals map[string]conf.Value) (conf.Value, error) {
		if sch == nil {
			sch = n.sch
		}
		var lv map[string]any
		if len(locals) > 0 {
			lv = make(map[string]any, len(locals))
			for k, v := range locals {
				lv[k] = v
			}
		}
		idx, err := t.build(cfg, sch, callIdx, n.path, lv, n.mode)
		if err != nil {
			return nil, err
		}
		return t.resolveNode(idx)
	}
}
