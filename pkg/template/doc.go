// Package template implements the default evaluator for ${...} expressions
// inside configuration strings. Expressions are Starlark; free identifiers
// are bound lazily from a caller-supplied variable source, so referencing a
// name is what triggers its resolution.
package template
