package bonjson

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of failure a Decoder or Encoder reported.
// Kinds are stable across releases; callers may switch on them.
type Kind int

const (
	// KindNone is the zero value and never appears on a returned *Error.
	KindNone Kind = iota

	// Decoder failure kinds.

	// Truncated means the input ended before a declared length was satisfied.
	Truncated
	// UnknownTypeByte means a type byte that does not begin a value was read:
	// a reserved byte, or the document terminator where a value was expected.
	UnknownTypeByte
	// NotCanonical means a value was encoded in a longer-than-necessary form.
	NotCanonical
	// InvalidUTF8 means a string payload was not well-formed UTF-8.
	InvalidUTF8
	// KeyMustBeString means an object key position received a non-string event.
	KeyMustBeString
	// UnbalancedContainer means container nesting did not close correctly,
	// or a chunked container's declared length did not match its chunks.
	UnbalancedContainer
	// StackOverflow means the container nesting exceeded the configured max depth.
	StackOverflow
	// CallbackRejected means an EventSink callback returned a non-nil error;
	// that error is wrapped as the cause.
	CallbackRejected

	// Encoder failure kinds.

	// SinkRefused means the ByteSink's Write returned an error; wrapped as the cause.
	SinkRefused
	// ExpectedString means a non-string value was supplied where an object key is expected.
	ExpectedString
	// TooManyElements means more elements were added to a counted container than declared.
	TooManyElements
	// TooFewElements means EndContainer was called before a counted container's
	// declared element count was reached.
	TooFewElements
	// InvalidFloat means AddFloat was called with NaN or an infinity.
	InvalidFloat
	// MisuseAfterError means a call was made on a context already poisoned by
	// a prior error.
	MisuseAfterError
)

var kindStrings = map[Kind]string{
	KindNone:             "none",
	Truncated:            "truncated",
	UnknownTypeByte:      "unknown type byte",
	NotCanonical:         "not canonical",
	InvalidUTF8:          "invalid utf-8",
	KeyMustBeString:      "key must be string",
	UnbalancedContainer:  "unbalanced container",
	StackOverflow:        "stack overflow",
	CallbackRejected:     "callback rejected",
	SinkRefused:          "sink refused",
	ExpectedString:       "expected string",
	TooManyElements:      "too many elements",
	TooFewElements:       "too few elements",
	InvalidFloat:         "invalid float",
	MisuseAfterError:     "misuse after error",
}

// String returns a short diagnostic name for the kind.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown kind"
}

// Error is the concrete error type returned by Decoder and Encoder. It
// carries the Kind of failure, the byte offset at which it was detected
// (meaningful for decode errors; zero for most encode errors), and an
// optional wrapped cause (a rejected callback's error, or a failed sink
// write).
type Error struct {
	Kind   Kind
	Offset int64
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bonjson: %s at byte %d: %v", e.Kind, e.Offset, e.Cause)
	}
	return fmt.Sprintf("bonjson: %s at byte %d", e.Kind, e.Offset)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, offset int64) *Error {
	return &Error{Kind: kind, Offset: offset}
}

func wrapError(kind Kind, offset int64, cause error) *Error {
	return &Error{Kind: kind, Offset: offset, Cause: errors.WithStack(cause)}
}
