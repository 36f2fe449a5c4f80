package loader

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// LoadYAML parses a YAML (or JSON) document into a conf.Value. Mapping
// key order is preserved. The custom tags !raw and !recursive mark string
// interpolation modes.
func LoadYAML(data []byte) (conf.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return conf.Null{}, nil
	}
	return fromYAMLNode(doc.Content[0])
}

func fromYAMLNode(n *yaml.Node) (conf.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)

	case yaml.MappingNode:
		m := conf.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			key := keyNode.Value
			if m.Has(key) {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
			}
			v, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil

	case yaml.SequenceNode:
		seq := make(conf.Sequence, 0, len(n.Content))
		for _, el := range n.Content {
			v, err := fromYAMLNode(el)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil

	case yaml.ScalarNode:
		return fromYAMLScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func fromYAMLScalar(n *yaml.Node) (conf.Value, error) {
	switch n.Tag {
	case "!!null", "":
		return conf.Null{}, nil
	case "!!str":
		return conf.Str(n.Value), nil
	case "!raw":
		return conf.Raw(n.Value), nil
	case "!recursive":
		return conf.Recursive(n.Value), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return conf.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return conf.Float(f), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return conf.Bool(b), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if len(n.Value) == len("2006-01-02") {
			return conf.Date{Time: t}, nil
		}
		return conf.DateTime{Time: t}, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml tag %q", n.Line, n.Tag)
	}
}
