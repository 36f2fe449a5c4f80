package conf

// DeepCopy returns a structurally independent copy of v. Scalars are
// copied by value; containers are rebuilt recursively.
func DeepCopy(v Value) Value {
	switch x := v.(type) {
	case Sequence:
		out := make(Sequence, len(x))
		for i, el := range x {
			out[i] = DeepCopy(el)
		}
		return out
	case *Mapping:
		out := NewMapping()
		for _, k := range x.keys {
			out.Set(k, DeepCopy(x.items[k]))
		}
		return out
	default:
		return v
	}
}

// Equal reports structural equality. Mappings compare by key set and
// per-key values, ignoring key order. String modes participate in
// equality.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			bv, ok := y.Get(k)
			if !ok || !Equal(x.items[k], bv) {
				return false
			}
		}
		return true
	case Sequence:
		y, ok := b.(Sequence)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Date:
		y, ok := b.(Date)
		return ok && x.Time.Equal(y.Time)
	case DateTime:
		y, ok := b.(DateTime)
		return ok && x.Time.Equal(y.Time)
	default:
		return a == b
	}
}

// DeepUpdate merges src into dst and returns a new mapping. Keys present
// in both with mapping values merge recursively; everything else is
// overwritten by src. Neither input is modified.
func DeepUpdate(dst, src *Mapping) *Mapping {
	out := NewMapping()
	for _, k := range dst.keys {
		out.Set(k, DeepCopy(dst.items[k]))
	}
	for _, k := range src.keys {
		sv := src.items[k]
		if cur, ok := out.Get(k); ok {
			dm, dok := cur.(*Mapping)
			sm, sok := sv.(*Mapping)
			if dok && sok {
				out.Set(k, DeepUpdate(dm, sm))
				continue
			}
		}
		out.Set(k, DeepCopy(sv))
	}
	return out
}
