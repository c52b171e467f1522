// Package rencode implements the rencode binary serialization format
// used by the Deluge RPC protocol: a compact, self-describing, typed
// wire encoding that favors small representations for common small
// values by folding length and value information into a single leading
// typecode byte.
//
// The package focuses on:
//   - Byte-for-byte interoperability with the other rencode
//     implementations (the Python original and its ports)
//   - Canonical output: minimal-width integers and sorted dict keys,
//     so equal values always encode to identical bytes
//   - Safe decoding of untrusted input with specific error kinds and
//     explicit resource guards
//
// Key Components:
//
//   - Encoder: streams values to an io.Writer through primitive emit
//     methods (EncodeInt, EncodeString, BeginList, ...). Integers are
//     written in the narrowest of the embedded, 8, 16, 32 and 64-bit
//     forms; strings and small containers embed their length in the
//     typecode, larger ones fall back to the explicit forms.
//
//   - Decoder: reconstructs values from an io.Reader by dispatching on
//     a one-byte lookahead. Containers are walked through cursors that
//     share one element path for the fixed-count and open
//     (terminator-delimited) header forms. Typed pulls (DecodeInt,
//     DecodeString, ...) report type mismatches instead of coercing.
//
//   - Value: the generic variant type (none, bool, int, uint, float,
//     string, list, dict) used when no statically typed target exists.
//     Dicts re-encode in sorted key order, and decode(encode(v))
//     yields a Value equal to v.
//
//   - Marshaler / Unmarshaler: explicit producer and consumer
//     contracts for types that describe themselves through the
//     primitive emit and pull calls, plus a reflection layer (Marshal,
//     Unmarshal) mapping plain Go structs, slices and maps onto the
//     format without hand-written glue.
//
// Error Handling:
//
//	Decoding failures carry their kind: ErrUnexpectedEOF for truncated
//	input, SyntaxError for malformed input (reserved typecodes, bad
//	length prefixes, stray terminators), TypeMismatchError when the
//	wire shape does not match the requested target, ErrInvalidUTF8 for
//	non-UTF-8 string payloads, and UnknownFieldError/MissingFieldError
//	from struct reconstruction. All failures abort the current call; a
//	partially consumed stream cannot be resynchronized.
//
// Thread Safety:
//
//	Encoders and Decoders are single-goroutine objects, but they share
//	no mutable state with each other: independent calls over
//	independent buffers are safe concurrently without locking. The
//	package-level Marshal and Unmarshal helpers are safe for
//	concurrent use.
//
// Usage:
//
//	data, err := rencode.Marshal(myStruct)
//	// ... move bytes ...
//	var out MyStruct
//	err = rencode.Unmarshal(data, &out)
//
//	// Or without a statically known shape:
//	v, err := rencode.UnmarshalValue(data)
package rencode
