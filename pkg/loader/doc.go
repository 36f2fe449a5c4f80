// Package loader reads configuration documents and schema documents from
// files for the CLI. YAML and JSON go through yaml.v3 node walking so
// mapping key order survives; TOML goes through BurntSushi/toml with key
// order recovered from the decoder metadata. The engine itself never
// touches file formats.
package loader
