package rencode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Encoder
// --------------------------------------------------------------------------

// Encoder writes rencode-formatted values to an output stream.
//
// Every integer is written in its narrowest form: embedded in the
// typecode when it fits [-32, 43], otherwise tagged 8/16/32/64-bit
// big-endian, smallest width first. This makes the encoding canonical:
// equal integers always produce identical bytes. Floats carry no width
// selection; the caller's declared precision picks the 32-bit or 64-bit
// form. Strings shorter than 64 bytes and lists/dicts with fewer than
// 64/25 elements use a single embedded header byte, larger or
// unknown-length values fall back to the explicit forms.
//
// On failure the Encoder stops before writing further bytes, but bytes
// already flushed to the underlying writer are not rolled back. Callers
// needing atomicity should encode into a buffer first (Marshal does).
type Encoder struct {
	w       io.Writer
	scratch [9]byte
	stack   []encFrame
}

// encFrame tracks one open Begin/End container so that fixed headers
// are held to their declared arity and open headers get exactly one
// terminator.
type encFrame struct {
	open  bool
	dict  bool
	slots int // remaining value slots for fixed containers, -1 if open
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Marshal encodes v into a freshly allocated byte slice. It accepts a
// Value, any type implementing Marshaler, and plain Go values via
// reflection (see Encode).
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes one value to the stream. Values of type Value encode
// directly, types implementing Marshaler describe themselves through
// the primitive Encode* methods, and everything else goes through
// reflection: booleans, all integer and float widths, strings, []byte,
// slices, arrays, maps, structs and pointers.
func (e *Encoder) Encode(v any) error {
	switch t := v.(type) {
	case nil:
		return e.EncodeNone()
	case Value:
		return e.EncodeValue(t)
	case Marshaler:
		return t.MarshalRencode(e)
	}
	return e.encodeReflect(v)
}

// EncodeValue writes a generic Value tree. Dict entries are written in
// sorted key order, so equal Values always produce identical bytes.
func (e *Encoder) EncodeValue(v Value) error {
	switch v.kind {
	case KindNone:
		return e.EncodeNone()
	case KindBool:
		return e.EncodeBool(v.b)
	case KindInt:
		return e.EncodeInt(v.i)
	case KindUint:
		return e.EncodeUint(v.u)
	case KindFloat:
		return e.EncodeFloat64(v.f)
	case KindString:
		return e.EncodeString(v.s)
	case KindList:
		if err := e.BeginList(len(v.list)); err != nil {
			return err
		}
		for _, elem := range v.list {
			if err := e.EncodeValue(elem); err != nil {
				return err
			}
		}
		return e.EndList()
	case KindDict:
		if err := e.BeginDict(len(v.dict)); err != nil {
			return err
		}
		for _, k := range v.sortedKeys() {
			if err := e.EncodeString(k); err != nil {
				return err
			}
			if err := e.EncodeValue(v.dict[k]); err != nil {
				return err
			}
		}
		return e.EndDict()
	default:
		return fmt.Errorf("rencode: cannot encode Value of kind %s", v.kind)
	}
}

// --------------------------------------------------------------------------
// Primitive Emit Methods
// --------------------------------------------------------------------------

// EncodeNone writes the absent value.
func (e *Encoder) EncodeNone() error {
	if err := e.beginValue(); err != nil {
		return err
	}
	return e.writeByte(chrNone)
}

// EncodeBool writes a boolean.
func (e *Encoder) EncodeBool(v bool) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if v {
		return e.writeByte(chrTrue)
	}
	return e.writeByte(chrFalse)
}

// EncodeInt writes a signed integer in its narrowest representation.
func (e *Encoder) EncodeInt(v int64) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	return e.writeInt(v)
}

// EncodeUint writes an unsigned integer by reinterpreting it as signed
// before width selection. Values above math.MaxInt64 therefore wrap to
// negative on the wire; this mirrors the original format and keeps byte
// compatibility with other implementations.
func (e *Encoder) EncodeUint(v uint64) error {
	return e.EncodeInt(int64(v))
}

// EncodeFloat32 writes a 32-bit float. The 32-bit and 64-bit forms are
// distinct on the wire and never substituted for one another.
func (e *Encoder) EncodeFloat32(v float32) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.scratch[0] = chrFloat32
	binary.BigEndian.PutUint32(e.scratch[1:5], math.Float32bits(v))
	return e.write(e.scratch[:5])
}

// EncodeFloat64 writes a 64-bit float.
func (e *Encoder) EncodeFloat64(v float64) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	e.scratch[0] = chrFloat64
	binary.BigEndian.PutUint64(e.scratch[1:9], math.Float64bits(v))
	return e.write(e.scratch[:9])
}

// EncodeString writes a string. Lengths below 64 use the embedded
// header byte, longer strings use the decimal-length form. Length is
// measured in bytes, not runes.
func (e *Encoder) EncodeString(s string) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeStringHeader(len(s)); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// EncodeBytes writes a byte slice using the string forms. The format
// has no separate binary type; strings carry raw bytes.
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeStringHeader(len(b)); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

// BeginList opens a list. A count below 64 selects the fixed-count
// header and exactly that many elements must follow before EndList.
// Pass a negative count (or one of 64 and above) for the open form,
// which EndList closes with a terminator.
func (e *Encoder) BeginList(count int) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if count >= 0 && count < int(listFixedCount) {
		e.stack = append(e.stack, encFrame{slots: count})
		return e.writeByte(listFixedStart + byte(count))
	}
	e.stack = append(e.stack, encFrame{open: true, slots: -1})
	return e.writeByte(chrList)
}

// EndList closes the innermost list.
func (e *Encoder) EndList() error {
	return e.endContainer(false)
}

// BeginDict opens a dict. A pair count below 25 selects the fixed-count
// header and exactly count key/value pairs must follow before EndDict.
// Pass a negative count (or one of 25 and above) for the open form.
// Each entry is written as key then value; values are self-delimiting,
// so no separator exists on the wire.
func (e *Encoder) BeginDict(count int) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	if count >= 0 && count < int(dictFixedCount) {
		e.stack = append(e.stack, encFrame{dict: true, slots: 2 * count})
		return e.writeByte(dictFixedStart + byte(count))
	}
	e.stack = append(e.stack, encFrame{open: true, dict: true, slots: -1})
	return e.writeByte(chrDict)
}

// EndDict closes the innermost dict.
func (e *Encoder) EndDict() error {
	return e.endContainer(true)
}

// --------------------------------------------------------------------------
// Internal Helpers
// --------------------------------------------------------------------------

// beginValue accounts for one value slot in the enclosing container.
func (e *Encoder) beginValue() error {
	if len(e.stack) == 0 {
		return nil
	}
	f := &e.stack[len(e.stack)-1]
	if f.slots == 0 {
		return fmt.Errorf("rencode: fixed-count %s already has its declared elements", frameName(f.dict))
	}
	if f.slots > 0 {
		f.slots--
	}
	return nil
}

func (e *Encoder) endContainer(dict bool) error {
	if len(e.stack) == 0 {
		return fmt.Errorf("rencode: End%s without matching Begin", endName(dict))
	}
	f := e.stack[len(e.stack)-1]
	if f.dict != dict {
		return fmt.Errorf("rencode: End%s closes an open %s", endName(dict), frameName(f.dict))
	}
	if !f.open && f.slots != 0 {
		missing := f.slots
		if dict {
			missing = (missing + 1) / 2
		}
		return fmt.Errorf("rencode: fixed-count %s is short %d of its declared elements", frameName(dict), missing)
	}
	e.stack = e.stack[:len(e.stack)-1]
	if f.open {
		return e.writeByte(chrTerm)
	}
	return nil
}

func frameName(dict bool) string {
	if dict {
		return "dict"
	}
	return "list"
}

func endName(dict bool) string {
	if dict {
		return "Dict"
	}
	return "List"
}

// writeInt emits the canonical minimal-width integer encoding.
func (e *Encoder) writeInt(v int64) error {
	switch {
	case v >= -int64(intNegFixedCount) && v <= -1:
		return e.writeByte(byte(int64(chrNone) - v))
	case v >= 0 && v < int64(intPosFixedCount):
		return e.writeByte(byte(v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		e.scratch[0] = chrInt8
		e.scratch[1] = byte(int8(v))
		return e.write(e.scratch[:2])
	case v >= math.MinInt16 && v <= math.MaxInt16:
		e.scratch[0] = chrInt16
		binary.BigEndian.PutUint16(e.scratch[1:3], uint16(int16(v)))
		return e.write(e.scratch[:3])
	case v >= math.MinInt32 && v <= math.MaxInt32:
		e.scratch[0] = chrInt32
		binary.BigEndian.PutUint32(e.scratch[1:5], uint32(int32(v)))
		return e.write(e.scratch[:5])
	default:
		e.scratch[0] = chrInt64
		binary.BigEndian.PutUint64(e.scratch[1:9], uint64(v))
		return e.write(e.scratch[:9])
	}
}

func (e *Encoder) writeStringHeader(n int) error {
	if n < int(strFixedCount) {
		return e.writeByte(strFixedStart + byte(n))
	}
	var hdr [21]byte
	b := strconv.AppendUint(hdr[:0], uint64(n), 10)
	b = append(b, ':')
	return e.write(b)
}

func (e *Encoder) writeByte(c byte) error {
	e.scratch[0] = c
	return e.write(e.scratch[:1])
}

func (e *Encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	return err
}
