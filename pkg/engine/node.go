package engine

import (
	"sort"
	"strconv"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// buildMode controls interpolation and call recognition for a subtree.
// Core functions rebuild their input under a non-standard mode: raw
// disables call recognition and interpolation, full interpolates every
// string to a fixpoint.
type buildMode int

const (
	modeStandard buildMode = iota
	modeRaw
	modeFull
)

type nodeKind int

const (
	kindMapping nodeKind = iota
	kindSequence
	kindLeaf
	kindCall
)

type nodeState int

const (
	stateUnresolved nodeState = iota
	stateInProgress
	stateResolved
	stateFailed
)

// node is one position in the tree. Nodes live in the tree's arena and
// refer to each other by index, so cycle detection is a state check
// rather than a pointer-identity question.
type node struct {
	kind   nodeKind
	path   conf.KeyPath
	parent int // arena index, -1 at the root
	mode   buildMode

	// locals holds variables introduced at this position (by let);
	// lookup walks the parent chain. Values are conf.Value or *View.
	locals map[string]any

	// mapping
	keys     []string
	children map[string]int

	// sequence
	elems []int

	// leaf
	raw      conf.Value
	typeName string
	nullable bool

	// call
	fnName string
	fn     Function
	input  conf.Value
	sch    schema.Schema
	result int // evaluated node, -1 until known
	// evaluating guards call evaluation the way stateInProgress guards
	// resolution; a call can be re-entered through a view before its
	// result node exists.
	evaluating bool

	state nodeState
	value conf.Value
	err   error
}

// tree is the arena of nodes for one top-level resolution run.
type tree struct {
	nodes []*node
	root  int
	opts  *Options
}

func (t *tree) add(n *node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// addResolved records an already-final value as a leaf node, used for
// function results that skip output resolution.
func (t *tree) addResolved(v conf.Value, parent int, path conf.KeyPath) int {
	return t.add(&node{
		kind:   kindLeaf,
		path:   path,
		parent: parent,
		state:  stateResolved,
		value:  v,
	})
}

// build constructs the node for one position from a raw value and its
// schema. Dynamic schemas are materialized and validated here, lazily,
// once per position.
func (t *tree) build(raw conf.Value, sch schema.Schema, parent int, path conf.KeyPath, locals map[string]any, mode buildMode) (int, error) {
	if dyn, ok := sch.(schema.Dynamic); ok {
		materialized, err := dyn(raw, path)
		if err != nil {
			return -1, attachPath(path, err)
		}
		if err := schema.Validate(materialized, t.opts.Converters.Has); err != nil {
			return -1, attachPath(path, err)
		}
		sch = materialized
	}

	base := node{path: path, parent: parent, mode: mode, locals: locals, result: -1}

	if raw == nil {
		raw = conf.Null{}
	}
	if _, isNull := raw.(conf.Null); isNull {
		if !isNullable(sch) {
			return -1, resolutionErrorf(path, "unexpectedly null")
		}
		base.kind = kindLeaf
		base.raw = conf.Null{}
		base.typeName = "any"
		base.nullable = true
		return t.add(&base), nil
	}

	switch value := raw.(type) {
	case *conf.Mapping:
		if mode != modeRaw && t.opts.Recognizer != nil {
			name, arg, ok, err := t.opts.Recognizer(value)
			if err != nil {
				return -1, attachPath(path, err)
			}
			if ok {
				fn, found := t.opts.Functions[name]
				if !found {
					return -1, resolutionErrorf(path, "unknown function %q", name)
				}
				base.kind = kindCall
				base.fnName = name
				base.fn = fn
				base.input = arg
				base.sch = sch
				return t.add(&base), nil
			}
		}
		var ms schema.Mapping
		switch s := sch.(type) {
		case schema.Mapping:
			ms = s
		case schema.Any:
			ms = schema.Mapping{Extra: schema.Any{}}
		default:
			return -1, resolutionErrorf(path, "expected %s, got dict", schemaKindName(sch))
		}
		return t.buildMapping(value, ms, base)

	case conf.Sequence:
		var ss schema.Sequence
		switch s := sch.(type) {
		case schema.Sequence:
			ss = s
		case schema.Any:
			ss = schema.Sequence{Element: schema.Any{}}
		default:
			return -1, resolutionErrorf(path, "expected %s, got list", schemaKindName(sch))
		}
		return t.buildSequence(value, ss, base)

	default:
		switch s := sch.(type) {
		case schema.Scalar:
			base.typeName = s.Type
			base.nullable = s.Nullable
		case schema.Any:
			base.typeName = "any"
			base.nullable = true
		default:
			return -1, resolutionErrorf(path, "expected %s, got %s", schemaKindName(sch), conf.TypeName(raw))
		}
		base.kind = kindLeaf
		base.raw = raw
		return t.add(&base), nil
	}
}

func (t *tree) buildMapping(m *conf.Mapping, ms schema.Mapping, base node) (int, error) {
	base.kind = kindMapping
	base.children = make(map[string]int)
	idx := t.add(&base)
	n := t.nodes[idx]

	addChild := func(key string, raw conf.Value, ks schema.Schema) error {
		childIdx, err := t.build(raw, ks, idx, n.path.Child(key), nil, n.mode)
		if err != nil {
			return err
		}
		n.keys = append(n.keys, key)
		n.children[key] = childIdx
		return nil
	}

	// present keys, in input order
	for _, key := range m.Keys() {
		raw, _ := m.Get(key)
		if ks, ok := ms.Required[key]; ok {
			if err := addChild(key, raw, ks); err != nil {
				return -1, err
			}
			continue
		}
		if opt, ok := ms.Optional[key]; ok {
			if err := addChild(key, raw, opt.Schema); err != nil {
				return -1, err
			}
			continue
		}
		if ms.Extra != nil {
			if err := addChild(key, raw, ms.Extra); err != nil {
				return -1, err
			}
			continue
		}
		return -1, resolutionErrorf(n.path.Child(key), "unexpected extra key %q", key)
	}

	for _, key := range sortedKeys(ms.Required) {
		if !m.Has(key) {
			return -1, resolutionErrorf(n.path.Child(key), "missing required key %q", key)
		}
	}

	// synthesize absent optional keys that carry defaults; they go through
	// the same build-and-resolve pipeline as written values
	optional := make([]string, 0, len(ms.Optional))
	for key := range ms.Optional {
		optional = append(optional, key)
	}
	sort.Strings(optional)
	for _, key := range optional {
		opt := ms.Optional[key]
		if m.Has(key) || opt.Default == nil {
			continue
		}
		if err := addChild(key, conf.DeepCopy(opt.Default), opt.Schema); err != nil {
			return -1, err
		}
	}

	return idx, nil
}

func (t *tree) buildSequence(seq conf.Sequence, ss schema.Sequence, base node) (int, error) {
	base.kind = kindSequence
	idx := t.add(&base)
	n := t.nodes[idx]

	for i, el := range seq {
		childIdx, err := t.build(el, ss.Element, idx, n.path.Child(strconv.Itoa(i)), nil, n.mode)
		if err != nil {
			return -1, err
		}
		n.elems = append(n.elems, childIdx)
	}
	return idx, nil
}

func isNullable(sch schema.Schema) bool {
	switch s := sch.(type) {
	case schema.Any:
		return true
	case schema.Scalar:
		return s.Nullable
	case schema.Mapping:
		return s.Nullable
	case schema.Sequence:
		return s.Nullable
	default:
		return false
	}
}

func schemaKindName(sch schema.Schema) string {
	switch s := sch.(type) {
	case schema.Mapping:
		return "dict"
	case schema.Sequence:
		return "list"
	case schema.Scalar:
		return s.Type
	case schema.Any:
		return "any"
	default:
		return "schema"
	}
}

func sortedKeys(m map[string]schema.Schema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
