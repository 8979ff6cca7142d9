// Package filter is the transform registry of the pipe server.
//
// A Filter is resolved fresh for every request from its wire name and maps
// each byte of the payload independently:
//   - upper: ASCII a-z become A-Z
//   - lower: ASCII A-Z become a-z
//   - null (and any unrecognised name): bytes pass through unchanged
//
// Bytes outside the ASCII letter ranges are never modified, so the output of
// Apply is always exactly as long as its input.
//
// Example Usage:
//
//	f := filter.Resolve("upper")
//	out := filter.Apply(f, "Hello World") // "HELLO WORLD"
package filter
