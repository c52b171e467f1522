package rencode

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

// DefaultMaxDepth is the container nesting limit applied to new
// Decoders. A few dozen bytes of input can otherwise declare thousands
// of nested containers and exhaust the stack.
const DefaultMaxDepth = 1000

// maxLengthDigits bounds the digit run of the decimal-length string
// form so a malicious stream cannot feed digits forever.
const maxLengthDigits = 32

// readChunk caps single allocations made on behalf of declared lengths;
// payloads larger than this are read incrementally, so memory growth is
// bounded by the bytes actually present in the stream.
const readChunk = 1 << 16

// streamReader is what the Decoder needs from its source. bytes.Reader,
// bytes.Buffer and bufio.Reader all satisfy it; every other io.Reader
// gets wrapped in a bufio.Reader.
type streamReader interface {
	io.Reader
	io.ByteReader
}

// Decoder reads rencode-formatted values from an input stream.
//
// The only decoding state is an input cursor and a single optional
// lookahead byte: every value is dispatched on its peeked leading byte,
// and consuming after a peek returns the peeked byte instead of
// re-reading. Containers decode recursively; fixed-count headers gate
// the per-element path by a remaining counter, open headers by peeking
// for the terminator, so both share the same element decoding.
//
// A Decoder must not be used from multiple goroutines. Independent
// Decoders over independent inputs are safe concurrently.
type Decoder struct {
	r      streamReader
	peek   byte
	peeked bool
	offset int64
	depth  int

	// MaxDepth bounds container nesting while decoding. Decoding
	// deeper input fails with ErrDepthLimit.
	MaxDepth int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sr, ok := r.(streamReader)
	if !ok {
		sr = bufio.NewReader(r)
	}
	return &Decoder{r: sr, MaxDepth: DefaultMaxDepth}
}

// Unmarshal decodes a single value from data into v. It accepts a
// *Value, any type implementing Unmarshaler, and pointers to plain Go
// values via reflection (see Decode).
func Unmarshal(data []byte, v any) error {
	return NewDecoder(bytes.NewReader(data)).Decode(v)
}

// UnmarshalValue decodes a single generic Value from data.
func UnmarshalValue(data []byte) (Value, error) {
	return NewDecoder(bytes.NewReader(data)).DecodeValue()
}

// InputOffset returns the number of bytes consumed so far.
func (d *Decoder) InputOffset() int64 { return d.offset }

// --------------------------------------------------------------------------
// Generic Value Decoding
// --------------------------------------------------------------------------

// DecodeValue decodes the next value into the generic Value variant,
// building lists and dicts bottom-up. Dict keys must be strings;
// non-string keys are reported as a type mismatch (decode such data
// through the typed cursor methods or into a concrete map type
// instead). io.EOF is returned as-is when the stream ends cleanly
// before a top-level value.
func (d *Decoder) DecodeValue() (Value, error) {
	c, err := d.peekCode()
	if err != nil {
		return Value{}, err
	}
	kind, ok := kindOfCode(c)
	if !ok {
		return Value{}, d.codeError(c)
	}
	switch kind {
	case KindNone:
		if _, err := d.readByte(); err != nil {
			return Value{}, err
		}
		return None(), nil
	case KindBool:
		v, err := d.DecodeBool()
		if err != nil {
			return Value{}, err
		}
		return Bool(v), nil
	case KindInt:
		v, err := d.DecodeInt()
		if err != nil {
			return Value{}, err
		}
		return Int(v), nil
	case KindFloat:
		v, err := d.DecodeFloat64()
		if err != nil {
			return Value{}, err
		}
		return Float(v), nil
	case KindString:
		v, err := d.DecodeString()
		if err != nil {
			return Value{}, err
		}
		return Str(v), nil
	case KindList:
		cur, err := d.DecodeList()
		if err != nil {
			return Value{}, err
		}
		elems := []Value{}
		for {
			more, err := cur.Next()
			if err != nil {
				return Value{}, err
			}
			if !more {
				break
			}
			elem, err := d.DecodeValue()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, elem)
		}
		return List(elems...), nil
	default: // KindDict
		cur, err := d.DecodeDict()
		if err != nil {
			return Value{}, err
		}
		entries := map[string]Value{}
		for {
			more, err := cur.Next()
			if err != nil {
				return Value{}, err
			}
			if !more {
				break
			}
			key, err := d.DecodeString()
			if err != nil {
				return Value{}, err
			}
			val, err := d.DecodeValue()
			if err != nil {
				return Value{}, err
			}
			entries[key] = val
		}
		return Dict(entries), nil
	}
}

// PeekKind reports the kind of the next value without consuming it.
func (d *Decoder) PeekKind() (Kind, error) {
	c, err := d.peekCode()
	if err != nil {
		return 0, err
	}
	kind, ok := kindOfCode(c)
	if !ok {
		return 0, d.codeError(c)
	}
	return kind, nil
}

// --------------------------------------------------------------------------
// Typed Pull Methods
// --------------------------------------------------------------------------

// DecodeNone consumes the absent value.
func (d *Decoder) DecodeNone() error {
	c, err := d.peekCode()
	if err != nil {
		return err
	}
	if c != chrNone {
		return d.typeError("none", c)
	}
	_, err = d.readByte()
	return err
}

// DecodeBool consumes a boolean.
func (d *Decoder) DecodeBool() (bool, error) {
	c, err := d.peekCode()
	if err != nil {
		return false, err
	}
	switch c {
	case chrTrue:
		_, err = d.readByte()
		return true, err
	case chrFalse:
		_, err = d.readByte()
		return false, err
	default:
		return false, d.typeError("bool", c)
	}
}

// DecodeInt consumes an integer in any of its wire forms: embedded in
// the typecode or explicit 8/16/32/64-bit big-endian.
func (d *Decoder) DecodeInt() (int64, error) {
	c, err := d.peekCode()
	if err != nil {
		return 0, err
	}
	switch {
	case c < intPosFixedStart+intPosFixedCount:
		_, err = d.readByte()
		return int64(c), err
	case c >= intNegFixedStart && c < intNegFixedStart+intNegFixedCount:
		_, err = d.readByte()
		return int64(chrNone) - int64(c), err
	case c == chrInt8:
		if _, err = d.readByte(); err != nil {
			return 0, err
		}
		b, err := d.readByte()
		return int64(int8(b)), err
	case c == chrInt16:
		p, err := d.readPayload(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(p))), nil
	case c == chrInt32:
		p, err := d.readPayload(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(p))), nil
	case c == chrInt64:
		p, err := d.readPayload(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(p)), nil
	default:
		return 0, d.typeError("integer", c)
	}
}

// DecodeUint consumes an integer and rejects negative wire values.
func (d *Decoder) DecodeUint() (uint64, error) {
	off := d.offset
	v, err := d.DecodeInt()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &TypeMismatchError{Offset: off, Expected: "unsigned integer", Got: KindInt}
	}
	return uint64(v), nil
}

// DecodeFloat32 consumes a 32-bit float. The 64-bit form is not
// accepted: narrowing silently would lose precision.
func (d *Decoder) DecodeFloat32() (float32, error) {
	c, err := d.peekCode()
	if err != nil {
		return 0, err
	}
	if c != chrFloat32 {
		return 0, d.typeError("float32", c)
	}
	p, err := d.readPayload(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(p)), nil
}

// DecodeFloat64 consumes a float in either width; the 32-bit form
// widens losslessly.
func (d *Decoder) DecodeFloat64() (float64, error) {
	c, err := d.peekCode()
	if err != nil {
		return 0, err
	}
	switch c {
	case chrFloat64:
		p, err := d.readPayload(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
	case chrFloat32:
		v, err := d.DecodeFloat32()
		return float64(v), err
	default:
		return 0, d.typeError("float", c)
	}
}

// DecodeString consumes a string in either wire form and validates it
// as UTF-8. Use DecodeBytes for raw binary payloads.
func (d *Decoder) DecodeString() (string, error) {
	off := d.offset
	b, err := d.decodeStringPayload()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("rencode: offset %d: %w", off, ErrInvalidUTF8)
	}
	return string(b), nil
}

// DecodeBytes consumes a string-form value as raw bytes without UTF-8
// validation. The returned slice is freshly allocated.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	return d.decodeStringPayload()
}

func (d *Decoder) decodeStringPayload() ([]byte, error) {
	c, err := d.peekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c >= strFixedStart && c < strFixedStart+strFixedCount:
		if _, err := d.readByte(); err != nil {
			return nil, err
		}
		return d.readN(int(c - strFixedStart))
	case c >= '0' && c <= '9':
		n, err := d.readDecimalLength()
		if err != nil {
			return nil, err
		}
		return d.readN(n)
	default:
		return nil, d.typeError("string", c)
	}
}

// readDecimalLength parses the "<digits>:" prefix of the long string
// form. The leading byte has already been peeked and verified to be a
// digit.
func (d *Decoder) readDecimalLength() (int, error) {
	off := d.offset
	var digits [maxLengthDigits]byte
	n := 0
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if b == ':' {
			break
		}
		if b < '0' || b > '9' {
			return 0, &SyntaxError{Offset: off, msg: "malformed string length prefix"}
		}
		if n == len(digits) {
			return 0, &SyntaxError{Offset: off, msg: "string length prefix too long"}
		}
		digits[n] = b
		n++
	}
	length, err := strconv.ParseInt(string(digits[:n]), 10, 63)
	if err != nil {
		return 0, &SyntaxError{Offset: off, msg: "unparseable string length prefix"}
	}
	return int(length), nil
}

// --------------------------------------------------------------------------
// Container Cursors
// --------------------------------------------------------------------------

// ListCursor walks the elements of one list. Next gates each element:
// when it reports true the caller must decode exactly one value from
// the Decoder before calling Next again.
type ListCursor struct {
	d         *Decoder
	open      bool
	remaining int
	done      bool
}

// DictCursor walks the entries of one dict. Next gates each pair: when
// it reports true the caller must decode exactly one key and one value
// from the Decoder before calling Next again.
type DictCursor struct {
	d         *Decoder
	open      bool
	remaining int
	done      bool
}

// DecodeList consumes a list header and returns a cursor over its
// elements.
func (d *Decoder) DecodeList() (*ListCursor, error) {
	c, err := d.peekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == chrList:
		if err := d.enterContainer(); err != nil {
			return nil, err
		}
		return &ListCursor{d: d, open: true, remaining: -1}, nil
	case c >= listFixedStart:
		if err := d.enterContainer(); err != nil {
			return nil, err
		}
		return &ListCursor{d: d, remaining: int(c - listFixedStart)}, nil
	default:
		return nil, d.typeError("list", c)
	}
}

// DecodeDict consumes a dict header and returns a cursor over its
// entries.
func (d *Decoder) DecodeDict() (*DictCursor, error) {
	c, err := d.peekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case c == chrDict:
		if err := d.enterContainer(); err != nil {
			return nil, err
		}
		return &DictCursor{d: d, open: true, remaining: -1}, nil
	case c >= dictFixedStart && c < dictFixedStart+dictFixedCount:
		if err := d.enterContainer(); err != nil {
			return nil, err
		}
		return &DictCursor{d: d, remaining: int(c - dictFixedStart)}, nil
	default:
		return nil, d.typeError("dict", c)
	}
}

// Len returns the number of elements not yet gated by Next, or -1 for
// the open form.
func (c *ListCursor) Len() int { return c.remaining }

// Next reports whether another element follows. For the open form it
// peeks for the terminator and consumes exactly one when found; for the
// fixed form it counts down the declared elements.
func (c *ListCursor) Next() (bool, error) {
	return cursorNext(c.d, c.open, &c.remaining, &c.done)
}

// Len returns the number of pairs not yet gated by Next, or -1 for the
// open form.
func (c *DictCursor) Len() int { return c.remaining }

// Next reports whether another key/value pair follows.
func (c *DictCursor) Next() (bool, error) {
	return cursorNext(c.d, c.open, &c.remaining, &c.done)
}

// cursorNext is the shared element gate for both container shapes and
// both header forms.
func cursorNext(d *Decoder, open bool, remaining *int, done *bool) (bool, error) {
	if *done {
		return false, nil
	}
	if open {
		b, err := d.peekByte()
		if err != nil {
			// A missing terminator is truncation even at the point
			// where the stream happens to end between elements.
			return false, d.eofErr(err)
		}
		if b != chrTerm {
			return true, nil
		}
		if _, err := d.readByte(); err != nil {
			return false, err
		}
		*done = true
		d.depth--
		return false, nil
	}
	if *remaining == 0 {
		*done = true
		d.depth--
		return false, nil
	}
	*remaining--
	return true, nil
}

// enterContainer consumes the already-peeked container header and
// applies the nesting guard.
func (d *Decoder) enterContainer() error {
	if d.depth >= d.MaxDepth {
		return ErrDepthLimit
	}
	if _, err := d.readByte(); err != nil {
		return err
	}
	d.depth++
	return nil
}

// --------------------------------------------------------------------------
// Byte Source
// --------------------------------------------------------------------------

// peekByte fills the one-byte lookahead without advancing the cursor.
func (d *Decoder) peekByte() (byte, error) {
	if d.peeked {
		return d.peek, nil
	}
	c, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.peek = c
	d.peeked = true
	return c, nil
}

// peekCode peeks the leading byte of the next value. A clean
// end-of-stream before a top-level value surfaces as io.EOF; inside a
// container it is truncation.
func (d *Decoder) peekCode() (byte, error) {
	c, err := d.peekByte()
	if err != nil {
		if d.depth > 0 {
			return 0, d.eofErr(err)
		}
		return 0, err
	}
	return c, nil
}

// readByte consumes the next byte, returning the lookahead byte first
// if one is pending. End-of-stream here is always mid-value.
func (d *Decoder) readByte() (byte, error) {
	if d.peeked {
		d.peeked = false
		d.offset++
		return d.peek, nil
	}
	c, err := d.r.ReadByte()
	if err != nil {
		return 0, d.eofErr(err)
	}
	d.offset++
	return c, nil
}

// readPayload consumes the pending header byte and then n payload
// bytes.
func (d *Decoder) readPayload(n int) ([]byte, error) {
	if _, err := d.readByte(); err != nil {
		return nil, err
	}
	return d.readN(n)
}

// readN reads exactly n bytes. Allocation is chunked so a declared
// length far beyond the actual input fails with truncation instead of
// exhausting memory up front.
func (d *Decoder) readN(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, 0, min(n, readChunk))
	if d.peeked {
		d.peeked = false
		d.offset++
		buf = append(buf, d.peek)
		n--
	}
	for n > 0 {
		take := min(n, readChunk)
		off := len(buf)
		buf = append(buf, make([]byte, take)...)
		if _, err := io.ReadFull(d.r, buf[off:]); err != nil {
			return nil, d.eofErr(err)
		}
		d.offset += int64(take)
		n -= take
	}
	return buf, nil
}

// eofErr normalizes end-of-stream conditions to the truncation kind.
func (d *Decoder) eofErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}

// typeError classifies a leading byte that cannot start the requested
// shape: reserved codes and stray terminators are syntax errors, valid
// codes of another kind are type mismatches.
func (d *Decoder) typeError(expected string, c byte) error {
	kind, ok := kindOfCode(c)
	if !ok {
		return d.codeError(c)
	}
	return &TypeMismatchError{Offset: d.offset, Expected: expected, Got: kind}
}

// codeError reports a byte that introduces no value at all.
func (d *Decoder) codeError(c byte) error {
	if c == chrTerm {
		return &SyntaxError{Offset: d.offset, msg: "terminator outside open container"}
	}
	return &SyntaxError{Offset: d.offset, msg: fmt.Sprintf("reserved typecode %d", c)}
}
