// Package funclib provides the standard function library: dict, list and
// datetime namespaces for use with engine.WithFunctions. The namespaces
// are registered under dotted names, so a call looks like
// {"__list.range__": {"stop": 5}}.
package funclib
