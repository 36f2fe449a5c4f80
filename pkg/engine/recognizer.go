package engine

import (
	"fmt"
	"strings"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

// Recognizer decides whether a mapping is a function call. It returns the
// call name and argument when it is one, ok=false when the mapping is
// ordinary data, and an error when the mapping is a malformed call.
type Recognizer func(m *conf.Mapping) (name string, arg conf.Value, ok bool, err error)

func isDunder(key string) bool {
	return len(key) > 4 && strings.HasPrefix(key, "__") && strings.HasSuffix(key, "__")
}

// DunderRecognizer is the default call syntax: a mapping whose single key
// is "__name__" is a call to name with the key's value as argument. A
// mapping containing a dunder key among other keys is malformed.
func DunderRecognizer(m *conf.Mapping) (string, conf.Value, bool, error) {
	keys := m.Keys()
	dunder := ""
	for _, k := range keys {
		if isDunder(k) {
			dunder = k
			break
		}
	}
	if dunder == "" {
		return "", nil, false, nil
	}
	if len(keys) != 1 {
		return "", nil, false, fmt.Errorf("invalid function call: expected a single %q key, got %d keys", dunder, len(keys))
	}
	arg, _ := m.Get(dunder)
	return strings.TrimSuffix(strings.TrimPrefix(dunder, "__"), "__"), arg, true, nil
}
