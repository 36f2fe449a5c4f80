package engine

import (
	"github.com/google/uuid"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/schema"
	"github.com/lazyconf/lazyconf/pkg/template"
)

// Resolve builds the node tree for raw under sch and resolves it. The
// input is never mutated. Any failure comes back as a *ResolutionError
// carrying the keypath of the offending position.
func Resolve(raw conf.Value, sch schema.Schema, options ...Option) (conf.Value, error) {
	opts, err := defaultOptions()
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		if err := o(&opts); err != nil {
			return nil, err
		}
	}
	if err := schema.Validate(sch, opts.Converters.Has); err != nil {
		return nil, err
	}
	if opts.Evaluator == nil {
		opts.Evaluator = template.New(opts.Filters)
	}
	if opts.MaxInterpolationPasses <= 0 {
		opts.MaxInterpolationPasses = DefaultMaxInterpolationPasses
	}

	log := opts.Logger.With().Str("run_id", uuid.NewString()).Logger()
	opts.Logger = log

	t := &tree{opts: &opts}
	rootIdx, err := t.build(raw, sch, -1, nil, nil, modeStandard)
	if err != nil {
		log.Debug().Err(err).Msg("configuration tree build failed")
		return nil, err
	}
	t.root = rootIdx
	log.Debug().Int("nodes", len(t.nodes)).Msg("configuration tree built")

	resolved, err := t.resolveNode(rootIdx)
	if err != nil {
		log.Debug().Err(err).Msg("resolution failed")
		return nil, err
	}
	log.Debug().Int("nodes", len(t.nodes)).Msg("resolution finished")

	if opts.PreserveType {
		resolved = preserveShape(raw, resolved)
	}
	return resolved, nil
}

// preserveShape copies resolved values into a structural copy of the
// input, so keys synthesized from schema defaults are dropped and the
// output mirrors what was written.
func preserveShape(input, resolved conf.Value) conf.Value {
	if im, ok := input.(*conf.Mapping); ok {
		if rm, ok := resolved.(*conf.Mapping); ok {
			out := conf.NewMapping()
			for _, key := range im.Keys() {
				iv, _ := im.Get(key)
				if rv, found := rm.Get(key); found {
					out.Set(key, preserveShape(iv, rv))
				}
			}
			return out
		}
	}
	if is, ok := input.(conf.Sequence); ok {
		if rs, ok := resolved.(conf.Sequence); ok && len(is) == len(rs) {
			out := make(conf.Sequence, len(rs))
			for i := range rs {
				out[i] = preserveShape(is[i], rs[i])
			}
			return out
		}
	}
	return conf.DeepCopy(resolved)
}
