package conf

import "strings"

// KeyPath addresses a position inside a configuration. Mapping keys and
// sequence indices both appear as string components.
type KeyPath []string

// Child returns the path extended by one component.
func (p KeyPath) Child(component string) KeyPath {
	out := make(KeyPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, component)
}

// String renders the path with dots between components. The root path
// renders as an empty string.
func (p KeyPath) String() string { return strings.Join(p, ".") }

// ParseKeyPath splits a dotted path into components. An empty string is
// the root path.
func ParseKeyPath(s string) KeyPath {
	if s == "" {
		return nil
	}
	return KeyPath(strings.Split(s, "."))
}
