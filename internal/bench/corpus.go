// Package bench holds sample documents and throughput benchmarks for the
// codec; it is a thin out-of-scope collaborator (spec.md §2), not part of
// the CORE library.
package bench

import "github.com/kstenerud/go-bonjson"

// Sample is one document used by both the encode and decode benchmarks,
// built once with an Encoder and then reused as the decode benchmark's
// input.
type Sample struct {
	Name  string
	Build func(enc *bonjson.Encoder) error
}

// Corpus is a small spread of document shapes: flat scalars, a wide
// object, a deep array, and a chunked string, representative of the
// shapes a real BONJSON producer emits.
var Corpus = []Sample{
	{
		Name: "scalars",
		Build: func(enc *bonjson.Encoder) error {
			if err := enc.BeginArray(5, false); err != nil {
				return err
			}
			if err := enc.AddNull(); err != nil {
				return err
			}
			if err := enc.AddBool(true); err != nil {
				return err
			}
			if err := enc.AddSigned(-12345); err != nil {
				return err
			}
			if err := enc.AddFloat(3.14159); err != nil {
				return err
			}
			if err := enc.AddString([]byte("hello, bonjson")); err != nil {
				return err
			}
			return enc.EndContainer()
		},
	},
	{
		Name: "wide-object",
		Build: func(enc *bonjson.Encoder) error {
			const n = 256
			if err := enc.BeginObject(n, false); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if err := enc.AddString([]byte(fieldName(i))); err != nil {
					return err
				}
				if err := enc.AddSigned(int64(i)); err != nil {
					return err
				}
			}
			return enc.EndContainer()
		},
	},
	{
		Name: "deep-array",
		Build: func(enc *bonjson.Encoder) error {
			const depth = 64
			for i := 0; i < depth; i++ {
				if err := enc.BeginArray(1, false); err != nil {
					return err
				}
			}
			if err := enc.AddSigned(1); err != nil {
				return err
			}
			for i := 0; i < depth; i++ {
				if err := enc.EndContainer(); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Name: "chunked-string",
		Build: func(enc *bonjson.Encoder) error {
			chunks := [][]byte{[]byte("the quick "), []byte("brown fox "), []byte("jumps over the lazy dog")}
			for i, c := range chunks {
				if err := enc.ChunkString(c, i == len(chunks)-1); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func fieldName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "field_" + string(letters[i%len(letters)]) + string(rune('0'+i%10))
}

// Encode builds one sample to completion and returns its bytes.
func Encode(s Sample) ([]byte, error) {
	var buf byteBuffer
	enc := bonjson.NewEncoder(&buf)
	if err := s.Build(enc); err != nil {
		return nil, err
	}
	if err := enc.EndEncode(); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// byteBuffer is a minimal growable ByteSink; avoids pulling in bytes.Buffer
// just to satisfy an io.Writer-shaped interface in a benchmark helper.
type byteBuffer struct{ data []byte }

func (b *byteBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// discardSink implements bonjson.EventSink, discarding every event; used
// by the decode benchmark so it measures parsing cost alone.
type discardSink struct{}

func (discardSink) OnNull() error                      { return nil }
func (discardSink) OnBool(bool) error                  { return nil }
func (discardSink) OnSigned(int64) error               { return nil }
func (discardSink) OnUnsigned(uint64) error            { return nil }
func (discardSink) OnFloat(float64) error              { return nil }
func (discardSink) OnBigNumber(bonjson.BigNumber) error { return nil }
func (discardSink) OnString([]byte, bool) error        { return nil }
func (discardSink) OnBeginArray(int64) error           { return nil }
func (discardSink) OnBeginObject(int64) error          { return nil }
func (discardSink) OnEndContainer() error              { return nil }
func (discardSink) OnEndData() error                   { return nil }
