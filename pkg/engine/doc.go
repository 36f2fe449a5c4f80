// Package engine implements lazy configuration resolution: it builds a
// node tree from a raw configuration and a schema, then resolves nodes in
// dependency order with memoization and cycle detection. String leaves are
// interpolated through a template evaluator, scalar leaves pass through
// the converter registry, and function-call nodes dispatch to registered
// functions that control whether their input and output are resolved.
package engine
