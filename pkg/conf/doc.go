// Package conf defines the configuration value model shared by the whole
// engine: a small tagged union of mappings, sequences, and scalars, plus
// keypaths for addressing positions inside a configuration.
//
// Values are immutable by convention. Code that needs to modify a value
// makes a DeepCopy first.
package conf
