// Package document provides an ordered model of nested key-value documents.
//
// Decoded documents are built from three kinds of values:
//
//   - [*Object]: a mapping that remembers key insertion order
//   - [Array]: an ordered sequence
//   - scalars: string, int64, uint64, float64, json.Number, bool and nil
//
// Key order is kept through decoding and encoding so that a document read
// from JSON or YAML text is written back with its keys in source order.
//
// # Example
//
//	obj, _ := document.Decode(data)
//	out, _ := document.EncodeJSON(obj, 4)
package document
