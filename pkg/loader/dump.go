package loader

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// DumpYAML renders a conf.Value as YAML, preserving mapping key order and
// string mode tags so the output round-trips through LoadYAML.
func DumpYAML(v conf.Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func toYAMLNode(v conf.Value) (*yaml.Node, error) {
	switch x := v.(type) {
	case *conf.Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range x.Keys() {
			val, _ := x.Get(key)
			child, err := toYAMLNode(val)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child,
			)
		}
		return node, nil

	case conf.Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range x {
			child, err := toYAMLNode(el)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case conf.String:
		tag := "!!str"
		switch x.Mode {
		case conf.ModeRaw:
			tag = "!raw"
		case conf.ModeRecursive:
			tag = "!recursive"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: x.Value, Style: yaml.DoubleQuotedStyle}, nil

	case conf.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(x), 10)}, nil
	case conf.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(float64(x), 'g', -1, 64)}, nil
	case conf.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(x))}, nil
	case conf.Date:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: x.Format("2006-01-02")}, nil
	case conf.DateTime:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: x.Format("2006-01-02 15:04:05")}, nil
	case conf.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String()}, nil
	}
}
