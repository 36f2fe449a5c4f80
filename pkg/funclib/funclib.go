package funclib

import "github.com/lazyconf/lazyconf/pkg/engine"

// Default returns the full standard library as a namespace.
func Default() engine.Namespace {
	return engine.Namespace{
		"dict":     Dict(),
		"list":     List(),
		"datetime": Datetime(),
	}
}
