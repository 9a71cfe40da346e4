package bonjson

import "math"

// byteBuf is a minimal growable ByteSink shared by this package's tests,
// standing in for bytes.Buffer so tests exercise the ByteSink interface
// directly rather than an io.Writer adapter.
type byteBuf struct{ data []byte }

func (b *byteBuf) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func floatBitsOf(f float64) uint64 { return math.Float64bits(f) }
