// Package schema defines the structural schemas that drive resolution:
// mappings with required/optional/extra keys, sequences, typed scalars,
// the permissive Any schema, and Dynamic schemas computed lazily from the
// value they will describe.
package schema
