package bonjson

import (
	"encoding/binary"
	"math"
)

// ByteSink is the byte-consuming capability an Encoder writes to. Any
// io.Writer satisfies it.
type ByteSink interface {
	Write(p []byte) (n int, err error)
}

// Encoder is a push-style value sink: the caller drives it with Add*,
// Begin*/EndContainer calls and it writes BONJSON bytes to a ByteSink. An
// Encoder is not safe for concurrent use. Once any call returns an error
// the Encoder is poisoned: every subsequent call except none (there is no
// destructor in a garbage-collected language) returns MisuseAfterError.
type Encoder struct {
	sink     ByteSink
	maxDepth int
	stack    []frame
	poisoned bool

	rootWritten     bool
	inChunkedString bool
}

// EncoderOption configures an Encoder at construction time.
type EncoderOption func(*Encoder)

// WithEncoderMaxDepth overrides DefaultMaxDepth.
func WithEncoderMaxDepth(depth int) EncoderOption {
	return func(e *Encoder) { e.maxDepth = depth }
}

// NewEncoder constructs an Encoder that writes to sink.
func NewEncoder(sink ByteSink, opts ...EncoderOption) *Encoder {
	e := &Encoder{sink: sink, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	e.stack = make([]frame, 0, e.maxDepth)
	return e
}

func (e *Encoder) poison(err *Error) *Error {
	e.poisoned = true
	return err
}

// checkReady rejects any call made while the Encoder is poisoned, or
// while a chunked string sequence is still open: every call between
// ChunkString(..., false) and its isLast chunk must itself be another
// ChunkString call, or the interleaved write would land in the middle of
// the chunked-string's own wire bytes and silently corrupt the stream.
func (e *Encoder) checkReady() error {
	if e.poisoned {
		return newError(MisuseAfterError, 0)
	}
	if e.inChunkedString {
		return e.poison(newError(MisuseAfterError, 0))
	}
	return nil
}

func (e *Encoder) write(p []byte) error {
	_, err := e.sink.Write(p)
	return err
}

func (e *Encoder) writeByte(b byte) error {
	return e.write([]byte{b})
}

func (e *Encoder) writeVarint(v uint64) error {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return e.write(tmp[:n])
}

// beforeValue checks that adding a value of the given string-ness is
// legal at the current position: it must not collide with an object's
// key slot, and must not be a second root value.
func (e *Encoder) beforeValue(isString bool) error {
	if len(e.stack) == 0 {
		if e.rootWritten {
			return newError(TooManyElements, 0)
		}
		return nil
	}
	top := &e.stack[len(e.stack)-1]
	if top.kind == frameObject && top.expectingKey && !isString {
		return newError(ExpectedString, 0)
	}
	return nil
}

// registerValueComplete is the encoder's mirror of the decoder's
// afterValue: it toggles object parity and decrements a counted
// container's remaining count for the value that was just written. Unlike
// the decoder, reaching remaining == 0 does not auto-pop the frame here;
// the caller must still call EndContainer (spec.md §4.3).
func (e *Encoder) registerValueComplete() error {
	if len(e.stack) == 0 {
		e.rootWritten = true
		return nil
	}
	top := &e.stack[len(e.stack)-1]
	if top.kind == frameObject {
		if top.expectingKey {
			top.expectingKey = false
			return nil
		}
		top.expectingKey = true
	}
	if !top.chunked {
		if top.remaining == 0 {
			return e.poison(newError(TooManyElements, 0))
		}
		top.remaining--
	}
	return nil
}

func (e *Encoder) addScalar(isString bool, write func() error) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if err := e.beforeValue(isString); err != nil {
		return e.poison(err)
	}
	if err := write(); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	return e.registerValueComplete()
}

// AddNull adds a null value.
func (e *Encoder) AddNull() error {
	return e.addScalar(false, func() error { return e.writeByte(tagNull) })
}

// AddBool adds a boolean value.
func (e *Encoder) AddBool(v bool) error {
	return e.addScalar(false, func() error {
		if v {
			return e.writeByte(tagTrue)
		}
		return e.writeByte(tagFalse)
	})
}

// AddSigned adds a signed integer value, encoded in its canonical
// shortest form (small-int byte, or the narrowest signed-intN width).
func (e *Encoder) AddSigned(v int64) error {
	return e.addScalar(false, func() error { return e.writeSignedRaw(v) })
}

// AddUnsigned adds an unsigned integer value. Values that fit int64 are
// re-routed to the signed form to preserve the rule that semantically
// equal values always encode identically (spec.md §8 property 2).
func (e *Encoder) AddUnsigned(v uint64) error {
	return e.addScalar(false, func() error { return e.writeUnsignedRaw(v) })
}

// AddFloat adds a floating-point value. NaN and infinities are not
// representable in BONJSON and return InvalidFloat. A value that is
// mathematically an integer within int64/uint64 range is re-routed to
// AddSigned/AddUnsigned so it encodes identically to the integer it
// equals (spec.md §4.3, §8 property 2).
func (e *Encoder) AddFloat(v float64) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return e.poison(newError(InvalidFloat, 0))
	}
	if isInt, unsigned, iv, uv := reduceFloat(v); isInt {
		if unsigned {
			return e.AddUnsigned(uv)
		}
		return e.AddSigned(iv)
	}
	return e.addScalar(false, func() error { return e.writeFloatRaw(v) })
}

// AddBigNumber adds an arbitrary-magnitude decimal value. A big number
// that is exactly representable as a 64-bit integer or an exact float64
// is reduced to that simpler form (spec.md §4.3, §4.4); only a genuine
// big number reaches the wire in BigNumber form.
func (e *Encoder) AddBigNumber(bn BigNumber) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	kind, iv, uv, fv, normalized := reduceBigNumber(bn)
	switch kind {
	case TypeSignedInt:
		return e.AddSigned(iv)
	case TypeUnsignedInt:
		return e.AddUnsigned(uv)
	case TypeFloat:
		return e.AddFloat(fv)
	default:
		return e.addScalar(false, func() error { return e.writeBigNumberRaw(normalized) })
	}
}

// AddString adds a complete string value in a single chunk.
func (e *Encoder) AddString(s []byte) error {
	return e.addScalar(true, func() error { return e.writeStringRaw(s) })
}

// ChunkString emits one chunk of a string value. The first call in a
// sequence writes the chunked-string tag; only the call with isLast true
// counts as completing the value for container-frame accounting, and the
// concatenation of all chunks' payloads is the encoded string.
func (e *Encoder) ChunkString(chunk []byte, isLast bool) error {
	if e.poisoned {
		return newError(MisuseAfterError, 0)
	}
	if !e.inChunkedString {
		if err := e.beforeValue(true); err != nil {
			return e.poison(err)
		}
		if err := e.writeByte(tagStringChunk); err != nil {
			return e.poison(wrapError(SinkRefused, 0, err))
		}
		e.inChunkedString = true
	}
	more := byte(1)
	if isLast {
		more = 0
	}
	if err := e.writeVarint(uint64(len(chunk))); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	if err := e.writeByte(more); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	if err := e.write(chunk); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	if isLast {
		e.inChunkedString = false
		return e.registerValueComplete()
	}
	return nil
}

// BeginArray opens an array. If moreChunksFollow is false, declaredCount
// is the exact element count and the container closes implicitly once
// that many elements have been added (EndContainer then writes no
// bytes); if true, declaredCount is ignored and the container closes only
// on an explicit EndContainer call, which writes an end-container marker.
func (e *Encoder) BeginArray(declaredCount int64, moreChunksFollow bool) error {
	return e.beginContainer(frameArray, declaredCount, moreChunksFollow)
}

// BeginObject opens an object; declaredCount is a pair count. See BeginArray.
func (e *Encoder) BeginObject(declaredCount int64, moreChunksFollow bool) error {
	return e.beginContainer(frameObject, declaredCount, moreChunksFollow)
}

func (e *Encoder) beginContainer(kind frameKind, declaredCount int64, moreChunksFollow bool) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if err := e.beforeValue(false); err != nil {
		return e.poison(err)
	}
	if len(e.stack) >= e.maxDepth {
		return e.poison(newError(StackOverflow, 0))
	}

	count := chunkedCountSentinel
	if !moreChunksFollow {
		if declaredCount < 0 {
			return e.poison(newError(TooFewElements, 0))
		}
		count = uint64(declaredCount)
	}

	tag := byte(tagArrayBegin)
	if kind == frameObject {
		tag = tagObjectBegin
	}
	if err := e.writeByte(tag); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	if err := e.writeVarint(count); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}

	f := frame{kind: kind, chunked: moreChunksFollow, remaining: count}
	if kind == frameObject {
		f.expectingKey = true
	}
	e.stack = append(e.stack, f)
	return nil
}

// EndContainer closes the innermost open container. For a counted
// container it is legal only once every declared element has been added
// (TooFewElements otherwise) and writes no bytes; for a chunked container
// it writes an explicit end-container marker. In either case an object
// whose last key has not yet received its value returns TooFewElements.
func (e *Encoder) EndContainer() error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if len(e.stack) == 0 {
		return e.poison(newError(TooFewElements, 0))
	}
	top := e.stack[len(e.stack)-1]
	if top.kind == frameObject && !top.expectingKey {
		return e.poison(newError(TooFewElements, 0))
	}
	if top.chunked {
		if err := e.writeByte(tagEndContainer); err != nil {
			return e.poison(wrapError(SinkRefused, 0, err))
		}
	} else if top.remaining != 0 {
		return e.poison(newError(TooFewElements, 0))
	}
	e.stack = e.stack[:len(e.stack)-1]
	return e.registerValueComplete()
}

// noopSink discards every event; used by AddEncodedDocument to re-run the
// decoder in a structural-validation-only mode.
type noopSink struct{}

func (noopSink) OnNull() error               { return nil }
func (noopSink) OnBool(bool) error           { return nil }
func (noopSink) OnSigned(int64) error        { return nil }
func (noopSink) OnUnsigned(uint64) error     { return nil }
func (noopSink) OnFloat(float64) error       { return nil }
func (noopSink) OnBigNumber(BigNumber) error { return nil }
func (noopSink) OnString([]byte, bool) error { return nil }
func (noopSink) OnBeginArray(int64) error    { return nil }
func (noopSink) OnBeginObject(int64) error   { return nil }
func (noopSink) OnEndContainer() error       { return nil }
func (noopSink) OnEndData() error            { return nil }

// AddEncodedDocument splices a pre-encoded BONJSON fragment verbatim. It
// is re-validated with a throwaway Decoder (structural checks only, no
// caller-visible side effects) before being spliced in, so EndEncode's
// postcondition (a structurally complete document) holds regardless of
// whether the caller already validated doc (spec.md §4.3).
func (e *Encoder) AddEncodedDocument(doc []byte) error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if err := e.beforeValue(false); err != nil {
		return e.poison(err)
	}
	n, err := NewDecoder(noopSink{}).Decode(doc)
	if err != nil {
		if verr, ok := err.(*Error); ok {
			return e.poison(wrapError(UnbalancedContainer, verr.Offset, verr))
		}
		return e.poison(wrapError(UnbalancedContainer, 0, err))
	}
	if n != int64(len(doc)) {
		return e.poison(newError(UnbalancedContainer, n))
	}
	if err := e.write(doc); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	return e.registerValueComplete()
}

// EndEncode succeeds iff the container stack is empty and a root value
// has been written.
func (e *Encoder) EndEncode() error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if len(e.stack) != 0 || !e.rootWritten {
		return e.poison(newError(TooFewElements, 0))
	}
	return nil
}

// TerminateDocument writes the document terminator byte. spec.md §9 left
// it ambiguous whether the reference mandates this byte; this
// implementation exposes it as an independent, optional call so callers
// who want a self-describing end-of-stream marker can request one.
func (e *Encoder) TerminateDocument() error {
	if err := e.checkReady(); err != nil {
		return err
	}
	if err := e.writeByte(tagDocTerminator); err != nil {
		return e.poison(wrapError(SinkRefused, 0, err))
	}
	return nil
}

func (e *Encoder) writeSignedRaw(v int64) error {
	if smallIntInRange(v) {
		return e.writeByte(encodeSmallInt(v))
	}
	n := intWidth(v)
	if err := e.writeByte(tagSignedIntN + byte(n-1)); err != nil {
		return err
	}
	var buf [8]byte
	putLEUint(buf[:], uint64(v), n)
	return e.write(buf[:n])
}

func (e *Encoder) writeUnsignedRaw(v uint64) error {
	if v <= math.MaxInt64 {
		return e.writeSignedRaw(int64(v))
	}
	n := uintWidth(v)
	if err := e.writeByte(tagUnsignedIntN + byte(n-1)); err != nil {
		return err
	}
	var buf [8]byte
	putLEUint(buf[:], v, n)
	return e.write(buf[:n])
}

func (e *Encoder) writeFloatRaw(v float64) error {
	if err := e.writeByte(tagFloat64); err != nil {
		return err
	}
	var buf [8]byte
	putLEUint(buf[:], math.Float64bits(v), 8)
	return e.write(buf[:])
}

func (e *Encoder) writeBigNumberRaw(bn BigNumber) error {
	signByte := byte(signByteFixed)
	if bn.Sign == Negative {
		signByte = signByteNegative
	}
	if err := e.writeByte(tagBigNumber); err != nil {
		return err
	}
	if err := e.writeByte(signByte); err != nil {
		return err
	}
	if err := e.writeVarint(bn.Significand); err != nil {
		return err
	}
	return e.writeVarint(zigzagEncode(int64(bn.Exponent)))
}

func (e *Encoder) writeStringRaw(s []byte) error {
	if err := e.writeByte(tagString); err != nil {
		return err
	}
	if err := e.writeVarint(uint64(len(s))); err != nil {
		return err
	}
	return e.write(s)
}
