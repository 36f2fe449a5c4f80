package engine

import "errors"

// scopeVars supplies the names visible to ${...} expressions at one node:
// local variables on the node chain up to the root, then keys of the
// configuration root, then the injected root name, then the globals.
type scopeVars struct {
	t   *tree
	idx int
}

func (s scopeVars) Lookup(name string) (any, bool, error) {
	for idx := s.idx; idx >= 0; idx = s.t.nodes[idx].parent {
		if v, ok := s.t.nodes[idx].locals[name]; ok {
			return v, true, nil
		}
	}

	root := s.t.nodes[s.t.root]
	if root.kind != kindLeaf {
		v, err := s.t.view(s.t.root).Get(name)
		if err == nil {
			return v, true, nil
		}
		if !errors.Is(err, errKeyNotFound) {
			return nil, false, err
		}
	}

	if name != "" && name == s.t.opts.InjectRootAs {
		if root.kind == kindLeaf {
			v, err := s.t.resolveNode(s.t.root)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
		return s.t.view(s.t.root), true, nil
	}

	if v, ok := s.t.opts.Globals[name]; ok {
		return v, true, nil
	}
	return nil, false, nil
}
