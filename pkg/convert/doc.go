// Package convert provides the converter registry and the built-in
// converters. A converter takes a raw leaf value, often a string produced
// by interpolation, and returns the typed value for its schema position.
// Converters double as validators: a value of the wrong shape is an error,
// not a coercion.
package convert
