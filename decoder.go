package bonjson

import (
	"encoding/binary"
	"math"
)

// EventSink receives the semantic events a Decoder fires while consuming a
// document, in exactly the document's value order, depth-first,
// left-to-right (spec.md §5). A callback returning a non-nil error
// immediately halts decoding; that error is wrapped as the Cause of a
// CallbackRejected *Error and surfaced from Decode.
//
// This is the Go realisation of spec.md §9's guidance to replace the C
// reference's function-pointer-plus-void* dispatch with a capability
// passed by reference, with each value kind kept as a separate method
// for zero-cost dispatch rather than a single tagged-union callback.
type EventSink interface {
	OnNull() error
	OnBool(v bool) error
	OnSigned(v int64) error
	OnUnsigned(v uint64) error
	OnFloat(v float64) error
	OnBigNumber(v BigNumber) error
	// OnString delivers a string value. isLast is always true for a
	// value encoded as a single string; a chunked string fires OnString
	// once per chunk, isLast true only on the final call, and the
	// chunks' payloads concatenate to the full string.
	OnString(chunk []byte, isLast bool) error
	// OnBeginArray/OnBeginObject fire when a container opens. countHint
	// is the declared element (array) or pair (object) count, or -1 if
	// the container is chunked (length unknown up front).
	OnBeginArray(countHint int64) error
	OnBeginObject(countHint int64) error
	OnEndContainer() error
	// OnEndData fires exactly once, after the root value (and everything
	// nested within it) has been fully consumed.
	OnEndData() error
}

// Decoder consumes BONJSON bytes and fires events on an EventSink. A
// Decoder is not safe for concurrent use and is single-document: call
// Decode once per document, or construct a fresh Decoder (there is no
// Reset — see SPEC_FULL.md §7 on why Go's GC makes the reference's explicit
// destroy/reset lifecycle unnecessary).
type Decoder struct {
	sink     EventSink
	maxDepth int
	stack    []frame
	poisoned bool

	data []byte
	pos  int64
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption func(*Decoder)

// WithDecoderMaxDepth overrides DefaultMaxDepth.
func WithDecoderMaxDepth(depth int) DecoderOption {
	return func(d *Decoder) { d.maxDepth = depth }
}

// NewDecoder constructs a Decoder that fires events on sink.
func NewDecoder(sink EventSink, opts ...DecoderOption) *Decoder {
	d := &Decoder{sink: sink, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	d.stack = make([]frame, 0, d.maxDepth)
	return d
}

// Decode consumes a single BONJSON document from the front of data,
// firing events on the Decoder's sink, and returns the number of bytes
// consumed. Trailing bytes beyond the document are left unconsumed and are
// not themselves an error (spec.md §4.2's Termination rule).
func (d *Decoder) Decode(data []byte) (int64, error) {
	if d.poisoned {
		return 0, newError(MisuseAfterError, 0)
	}
	d.data = data
	d.pos = 0
	d.stack = d.stack[:0]

	if err := d.step(); err != nil {
		d.poisoned = true
		return d.pos, err
	}
	for len(d.stack) > 0 {
		if err := d.step(); err != nil {
			d.poisoned = true
			return d.pos, err
		}
	}
	if err := d.sink.OnEndData(); err != nil {
		d.poisoned = true
		return d.pos, wrapError(CallbackRejected, d.pos, err)
	}
	return d.pos, nil
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= int64(len(d.data)) {
		return 0, newError(Truncated, d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *Decoder) readBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+int64(n) > int64(len(d.data)) {
		return nil, newError(Truncated, d.pos)
	}
	b := d.data[d.pos : d.pos+int64(n)]
	d.pos += int64(n)
	return b, nil
}

// readBytesLength reads a declared payload whose length arrived as a
// wire varint (so it may be far larger than the input, or than int can
// hold). The bounds check happens entirely in uint64 space before any
// conversion, so a hostile length like 2^63-1 is rejected as Truncated
// instead of overflowing int64 arithmetic or a signed int conversion.
func (d *Decoder) readBytesLength(length uint64) ([]byte, error) {
	available := uint64(len(d.data)) - uint64(d.pos)
	if length > available {
		return nil, newError(Truncated, d.pos)
	}
	return d.readBytes(int(length))
}

func (d *Decoder) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, newError(Truncated, d.pos)
	}
	d.pos += int64(n)
	return v, nil
}

// step consumes exactly one type byte and whatever it introduces: a
// scalar value, a container header (which pushes a frame; the frame's
// contents are drained by subsequent calls to step), a string chunk
// sequence, or an explicit end-container marker.
func (d *Decoder) step() error {
	tb, err := d.readByte()
	if err != nil {
		return err
	}
	switch {
	case tb >= smallIntMin && tb <= smallIntMax:
		return d.emitSigned(decodeSmallInt(tb))
	case tb == tagNull:
		return d.emitNull()
	case tb == tagFalse:
		return d.emitBool(false)
	case tb == tagTrue:
		return d.emitBool(true)
	case tb >= tagSignedIntN && tb < tagSignedIntN+8:
		return d.decodeSignedIntN(int(tb-tagSignedIntN) + 1)
	case tb >= tagUnsignedIntN && tb < tagUnsignedIntN+8:
		return d.decodeUnsignedIntN(int(tb-tagUnsignedIntN) + 1)
	case tb == tagFloat64:
		return d.decodeFloat64()
	case tb == tagBigNumber:
		return d.decodeBigNumber()
	case tb == tagString:
		return d.decodeString()
	case tb == tagStringChunk:
		return d.decodeChunkedString()
	case tb == tagArrayBegin:
		return d.beginContainer(frameArray)
	case tb == tagObjectBegin:
		return d.beginContainer(frameObject)
	case tb == tagEndContainer:
		return d.endContainer()
	default:
		return newError(UnknownTypeByte, d.pos-1)
	}
}

func (d *Decoder) checkKeySlot(isString bool) error {
	if len(d.stack) == 0 {
		return nil
	}
	top := &d.stack[len(d.stack)-1]
	if top.kind == frameObject && top.expectingKey && !isString {
		return newError(KeyMustBeString, d.pos)
	}
	return nil
}

// afterValue registers that the value currently at the top-of-stack's
// key/value slot has just completed, toggling object parity and
// decrementing a counted container's remaining elements. When a counted
// container's remaining reaches zero it auto-closes, and the closure
// itself is registered as a completed value against whatever frame is now
// on top (spec.md §4.2's container-tracking rule).
func (d *Decoder) afterValue() error {
	if len(d.stack) == 0 {
		return nil
	}
	top := &d.stack[len(d.stack)-1]
	if top.kind == frameObject {
		if top.expectingKey {
			top.expectingKey = false
			return nil
		}
		top.expectingKey = true
	}
	if !top.chunked {
		if top.remaining == 0 {
			return newError(UnbalancedContainer, d.pos)
		}
		top.remaining--
		if top.remaining == 0 {
			d.stack = d.stack[:len(d.stack)-1]
			if err := d.sink.OnEndContainer(); err != nil {
				return wrapError(CallbackRejected, d.pos, err)
			}
			return d.afterValue()
		}
	}
	return nil
}

func (d *Decoder) emitNull() error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnNull(); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) emitBool(v bool) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnBool(v); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) emitSigned(v int64) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnSigned(v); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) emitUnsigned(v uint64) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnUnsigned(v); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) emitFloat(v float64) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnFloat(v); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) emitBigNumber(v BigNumber) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	if err := d.sink.OnBigNumber(v); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) decodeSignedIntN(n int) error {
	start := d.pos
	buf, err := d.readBytes(n)
	if err != nil {
		return err
	}
	v := readLEInt(buf, n)
	if intWidth(v) < n || smallIntInRange(v) {
		return newError(NotCanonical, start)
	}
	return d.emitSigned(v)
}

func (d *Decoder) decodeUnsignedIntN(n int) error {
	start := d.pos
	buf, err := d.readBytes(n)
	if err != nil {
		return err
	}
	v := readLEUint(buf, n)
	if uintWidth(v) < n {
		return newError(NotCanonical, start)
	}
	if v <= math.MaxInt64 {
		// Would also fit a signed form (small-int or signed-intN), which
		// is the canonical choice for any magnitude within int64 range.
		return newError(NotCanonical, start)
	}
	return d.emitUnsigned(v)
}

func (d *Decoder) decodeFloat64() error {
	start := d.pos
	buf, err := d.readBytes(8)
	if err != nil {
		return err
	}
	bits := readLEUint(buf, 8)
	f := math.Float64frombits(bits)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return newError(NotCanonical, start)
	}
	if isInt, _, _, _ := reduceFloat(f); isInt {
		return newError(NotCanonical, start)
	}
	return d.emitFloat(f)
}

func (d *Decoder) decodeBigNumber() error {
	start := d.pos
	signByte, err := d.readByte()
	if err != nil {
		return err
	}
	var sign Sign
	switch signByte {
	case signByteFixed:
		sign = Positive
	case signByteNegative:
		sign = Negative
	default:
		return newError(NotCanonical, start)
	}
	sig, err := d.readUvarint()
	if err != nil {
		return err
	}
	zz, err := d.readUvarint()
	if err != nil {
		return err
	}
	exp := int32(zigzagDecode(zz))
	if sig == 0 && exp != 0 {
		return newError(NotCanonical, start)
	}
	bn := BigNumber{Sign: sign, Significand: sig, Exponent: exp}
	kind, _, _, _, normalized := reduceBigNumber(bn)
	if kind != TypeBigNumber {
		return newError(NotCanonical, start)
	}
	if normalized.Significand != bn.Significand || normalized.Exponent != bn.Exponent {
		return newError(NotCanonical, start)
	}
	return d.emitBigNumber(bn)
}

func (d *Decoder) decodeString() error {
	start := d.pos
	length, err := d.readUvarint()
	if err != nil {
		return err
	}
	payload, err := d.readBytesLength(length)
	if err != nil {
		return err
	}
	var v utf8Validator
	if !v.Validate(payload) || v.Pending() {
		return newError(InvalidUTF8, start)
	}
	if err := d.checkKeySlot(true); err != nil {
		return err
	}
	if err := d.sink.OnString(payload, true); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}

func (d *Decoder) decodeChunkedString() error {
	var v utf8Validator
	for {
		start := d.pos
		length, err := d.readUvarint()
		if err != nil {
			return err
		}
		moreByte, err := d.readByte()
		if err != nil {
			return err
		}
		if moreByte > 1 {
			return newError(NotCanonical, d.pos-1)
		}
		isLast := moreByte == 0
		payload, err := d.readBytesLength(length)
		if err != nil {
			return err
		}
		if !v.Validate(payload) {
			return newError(InvalidUTF8, start)
		}
		if isLast {
			if v.Pending() {
				return newError(InvalidUTF8, start)
			}
			if err := d.checkKeySlot(true); err != nil {
				return err
			}
		}
		if err := d.sink.OnString(payload, isLast); err != nil {
			return wrapError(CallbackRejected, d.pos, err)
		}
		if isLast {
			return d.afterValue()
		}
	}
}

func (d *Decoder) beginContainer(kind frameKind) error {
	if err := d.checkKeySlot(false); err != nil {
		return err
	}
	count, err := d.readUvarint()
	if err != nil {
		return err
	}
	if len(d.stack) >= d.maxDepth {
		return newError(StackOverflow, d.pos)
	}
	chunked := count == chunkedCountSentinel
	f := frame{kind: kind, chunked: chunked, remaining: count}
	if kind == frameObject {
		f.expectingKey = true
	}
	d.stack = append(d.stack, f)

	hint := int64(-1)
	if !chunked {
		hint = int64(count)
	}
	var cbErr error
	if kind == frameArray {
		cbErr = d.sink.OnBeginArray(hint)
	} else {
		cbErr = d.sink.OnBeginObject(hint)
	}
	if cbErr != nil {
		return wrapError(CallbackRejected, d.pos, cbErr)
	}
	if !chunked && count == 0 {
		d.stack = d.stack[:len(d.stack)-1]
		if err := d.sink.OnEndContainer(); err != nil {
			return wrapError(CallbackRejected, d.pos, err)
		}
		return d.afterValue()
	}
	return nil
}

func (d *Decoder) endContainer() error {
	if len(d.stack) == 0 {
		return newError(UnbalancedContainer, d.pos)
	}
	top := d.stack[len(d.stack)-1]
	if !top.chunked {
		return newError(UnbalancedContainer, d.pos)
	}
	if top.kind == frameObject && !top.expectingKey {
		// An object closed with an odd number of scalars: the last key
		// never received its value.
		return newError(UnbalancedContainer, d.pos)
	}
	d.stack = d.stack[:len(d.stack)-1]
	if err := d.sink.OnEndContainer(); err != nil {
		return wrapError(CallbackRejected, d.pos, err)
	}
	return d.afterValue()
}
