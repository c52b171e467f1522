package rencode

import (
	"errors"
	"fmt"
	"reflect"
)

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

var (
	// ErrUnexpectedEOF is returned when the input ends in the middle of a
	// value: a declared length or fixed-width payload promises more bytes
	// than the stream delivers. A partially consumed stream cannot be
	// resynchronized, so decoding aborts.
	ErrUnexpectedEOF = errors.New("rencode: unexpected end of input")

	// ErrInvalidUTF8 is returned when string payload bytes are not valid
	// UTF-8. Use DecodeBytes for raw binary payloads.
	ErrInvalidUTF8 = errors.New("rencode: string payload is not valid UTF-8")

	// ErrDepthLimit is returned when decoding exceeds Decoder.MaxDepth
	// nested containers. Adversarial input can otherwise drive unbounded
	// recursion from a handful of bytes.
	ErrDepthLimit = errors.New("rencode: nesting depth limit exceeded")
)

// SyntaxError reports malformed input: a reserved typecode, a bad
// decimal-length prefix, or a terminator outside any open container.
type SyntaxError struct {
	Offset int64 // byte offset of the offending typecode
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rencode: syntax error at offset %d: %s", e.Offset, e.msg)
}

// TypeMismatchError reports well-formed input that does not match the
// statically requested target, e.g. a string payload decoded into an
// integer, or a value that overflows the target's range.
type TypeMismatchError struct {
	Offset   int64
	Expected string // what the caller asked for
	Got      Kind   // what the wire actually carries
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("rencode: offset %d: cannot decode %s into %s", e.Offset, e.Got, e.Expected)
}

// UnknownFieldError reports a dict key with no corresponding field in the
// target struct.
type UnknownFieldError struct {
	Field string
	Type  reflect.Type
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("rencode: unknown field %q for %s", e.Field, e.Type)
}

// MissingFieldError reports a target struct field for which the decoded
// dict carried no entry.
type MissingFieldError struct {
	Field string
	Type  reflect.Type
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("rencode: missing field %q for %s", e.Field, e.Type)
}

// UnsupportedTypeError reports an attempt to encode a Go value the format
// cannot represent (channels, functions, complex numbers).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "rencode: unsupported type: " + e.Type.String()
}

// InvalidUnmarshalError reports a decode target that is not a non-nil
// pointer.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "rencode: Unmarshal(nil)"
	}
	if e.Type.Kind() != reflect.Pointer {
		return "rencode: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "rencode: Unmarshal(nil " + e.Type.String() + ")"
}
