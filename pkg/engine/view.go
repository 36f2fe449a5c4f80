package engine

import (
	"errors"
	"strconv"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

var errKeyNotFound = errors.New("key not found")

// View is a lazy window onto an unresolved container node. Reading a key
// resolves only that child: leaves come back as values, containers as
// further views. Function-call nodes are evaluated transparently when the
// view traverses them.
type View struct {
	t   *tree
	idx int
}

func (t *tree) view(idx int) *View { return &View{t: t, idx: idx} }

// Path returns the keypath of the viewed position.
func (v *View) Path() conf.KeyPath { return v.t.nodes[v.idx].path }

// target follows call nodes until it reaches a concrete node.
func (v *View) target() (*node, int, error) {
	idx := v.idx
	for v.t.nodes[idx].kind == kindCall {
		res, err := v.t.evaluateCall(idx)
		if err != nil {
			return nil, -1, err
		}
		idx = res
	}
	return v.t.nodes[idx], idx, nil
}

// IsSequence reports whether the viewed container is a sequence.
func (v *View) IsSequence() bool {
	n, _, err := v.target()
	if err != nil {
		return false
	}
	return n.kind == kindSequence
}

// Len returns the number of entries without resolving any of them.
func (v *View) Len() int {
	n, _, err := v.target()
	if err != nil {
		return 0
	}
	switch n.kind {
	case kindMapping:
		return len(n.keys)
	case kindSequence:
		return len(n.elems)
	default:
		return 0
	}
}

// Keys returns the entry keys in input order. For sequences the keys are
// the decimal indices.
func (v *View) Keys() []string {
	n, _, err := v.target()
	if err != nil {
		return nil
	}
	switch n.kind {
	case kindMapping:
		out := make([]string, len(n.keys))
		copy(out, n.keys)
		return out
	case kindSequence:
		out := make([]string, len(n.elems))
		for i := range n.elems {
			out[i] = strconv.Itoa(i)
		}
		return out
	default:
		return nil
	}
}

// Get resolves a single child. Leaf children are resolved to their final
// value; container children are returned as nested *View without being
// resolved.
func (v *View) Get(key string) (any, error) {
	n, idx, err := v.target()
	if err != nil {
		return nil, err
	}
	childIdx, err := v.t.childAt(n, idx, key)
	if err != nil {
		return nil, err
	}
	for v.t.nodes[childIdx].kind == kindCall {
		childIdx, err = v.t.evaluateCall(childIdx)
		if err != nil {
			return nil, err
		}
	}
	child := v.t.nodes[childIdx]
	if child.kind == kindMapping || child.kind == kindSequence {
		return v.t.view(childIdx), nil
	}
	return v.t.resolveNode(childIdx)
}

// GetKeyPath resolves the value at a dotted keypath below this view.
func (v *View) GetKeyPath(path conf.KeyPath) (conf.Value, error) {
	idx, err := v.t.nodeAt(v.idx, path)
	if err != nil {
		return nil, err
	}
	return v.t.resolveNode(idx)
}

// Resolve resolves the whole viewed subtree.
func (v *View) Resolve() (conf.Value, error) {
	return v.t.resolveNode(v.idx)
}

// childAt looks up one child index by key on a concrete node.
func (t *tree) childAt(n *node, idx int, key string) (int, error) {
	switch n.kind {
	case kindMapping:
		childIdx, ok := n.children[key]
		if !ok {
			return -1, errKeyNotFound
		}
		return childIdx, nil
	case kindSequence:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n.elems) {
			return -1, errKeyNotFound
		}
		return n.elems[i], nil
	default:
		return -1, resolutionErrorf(n.path, "keypath component %q indexes a scalar", key)
	}
}

// nodeAt walks a keypath from a starting node, evaluating any function
// calls along the way.
func (t *tree) nodeAt(start int, path conf.KeyPath) (int, error) {
	idx := start
	for _, component := range path {
		for t.nodes[idx].kind == kindCall {
			res, err := t.evaluateCall(idx)
			if err != nil {
				return -1, err
			}
			idx = res
		}
		childIdx, err := t.childAt(t.nodes[idx], idx, component)
		if errors.Is(err, errKeyNotFound) {
			return -1, resolutionErrorf(path, "keypath %q does not exist", path.String())
		}
		if err != nil {
			return -1, err
		}
		idx = childIdx
	}
	return idx, nil
}
