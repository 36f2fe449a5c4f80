package loader

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// LoadTOML parses a TOML document into a conf.Value. The decoder yields
// unordered maps, so key order is recovered from the decoder metadata.
func LoadTOML(data []byte) (conf.Value, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	v, err := conf.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if m, ok := v.(*conf.Mapping); ok {
		reorderFromMeta(m, md.Keys(), nil)
	}
	return v, nil
}

// reorderFromMeta rearranges mapping keys to match their first appearance
// in the document, recursively.
func reorderFromMeta(m *conf.Mapping, keys []toml.Key, prefix []string) {
	order := make([]string, 0, m.Len())
	seen := make(map[string]bool, m.Len())

	for _, k := range keys {
		if len(k) <= len(prefix) {
			continue
		}
		matches := true
		for i, p := range prefix {
			if k[i] != p {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}
		name := k[len(prefix)]
		if !seen[name] && m.Has(name) {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, k := range m.Keys() {
		if !seen[k] {
			order = append(order, k)
		}
	}

	values := make(map[string]conf.Value, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		values[k] = v
	}
	for k := range values {
		m.Delete(k)
	}
	for _, k := range order {
		m.Set(k, values[k])
	}

	for _, k := range order {
		if child, ok := values[k].(*conf.Mapping); ok {
			reorderFromMeta(child, keys, append(append([]string{}, prefix...), k))
		}
	}
}
