// Package bonjson implements BONJSON, a binary, one-to-one representation
// of the JSON data model: the same abstract values JSON can express (null,
// booleans, numbers, strings, arrays, objects) encoded in a compact,
// self-delimiting binary form that parses in a single left-to-right pass.
//
// The Decoder is a pull-style byte consumer that fires events on a
// caller-supplied EventSink. The Encoder is a push-style value sink that
// writes bytes to a caller-supplied ByteSink. Both maintain a fixed-size
// container stack and enforce the canonical-form rules described in the
// package's wire format (see tag.go): integers are always encoded in their
// shortest form; floats that are mathematically integral, and big numbers
// that equal an integer or an exact float64, are re-expressed in that
// simpler form by the Encoder and rejected by the Decoder; and a big number
// with a zero significand never appears on the wire (zero is an integer).
package bonjson
