package rencode

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Visitation Contracts
// --------------------------------------------------------------------------

// Marshaler is the producer contract: a type that can describe itself
// to the codec as a sequence of primitive emit calls.
type Marshaler interface {
	MarshalRencode(e *Encoder) error
}

// Unmarshaler is the consumer contract: a type that can rebuild itself
// from a sequence of primitive pull calls.
type Unmarshaler interface {
	UnmarshalRencode(d *Decoder) error
}

// --------------------------------------------------------------------------
// Struct Layouts
// --------------------------------------------------------------------------

// structField describes one encodable struct field.
type structField struct {
	name  string
	index []int
}

// structLayout is the cached field mapping for one struct type. Fields
// are kept in sorted name order so struct encoding is deterministic,
// matching the dict key ordering of generic Values.
type structLayout struct {
	fields []structField
	byName map[string]int
}

// layoutCache holds one layout per struct type. Encoders and Decoders
// on separate goroutines share it, hence the concurrent map.
var layoutCache = xsync.NewMapOf[reflect.Type, *structLayout]()

func layoutOf(t reflect.Type) *structLayout {
	layout, _ := layoutCache.LoadOrCompute(t, func() *structLayout {
		return buildLayout(t)
	})
	return layout
}

// buildLayout collects the exported fields of t. The `rencode` struct
// tag overrides the wire name; "-" skips the field entirely.
func buildLayout(t reflect.Type) *structLayout {
	layout := &structLayout{byName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("rencode"); ok {
			if tag == "-" {
				continue
			}
			if idx := strings.IndexByte(tag, ','); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = tag
			}
		}
		layout.fields = append(layout.fields, structField{name: name, index: f.Index})
	}
	sort.Slice(layout.fields, func(i, j int) bool {
		return layout.fields[i].name < layout.fields[j].name
	})
	for i, f := range layout.fields {
		layout.byName[f.name] = i
	}
	return layout
}

// --------------------------------------------------------------------------
// Reflection Encoding
// --------------------------------------------------------------------------

func (e *Encoder) encodeReflect(v any) error {
	return e.encodeReflectValue(reflect.ValueOf(v))
}

func (e *Encoder) encodeReflectValue(rv reflect.Value) error {
	if !rv.IsValid() {
		return e.EncodeNone()
	}
	if rv.CanInterface() {
		switch t := rv.Interface().(type) {
		case Value:
			return e.EncodeValue(t)
		case Marshaler:
			return t.MarshalRencode(e)
		}
	}
	switch rv.Kind() {
	case reflect.Bool:
		return e.EncodeBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.EncodeInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.EncodeUint(rv.Uint())
	case reflect.Float32:
		return e.EncodeFloat32(float32(rv.Float()))
	case reflect.Float64:
		return e.EncodeFloat64(rv.Float())
	case reflect.String:
		return e.EncodeString(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.EncodeBytes(rv.Bytes())
		}
		return e.encodeReflectList(rv)
	case reflect.Array:
		return e.encodeReflectList(rv)
	case reflect.Map:
		return e.encodeReflectMap(rv)
	case reflect.Struct:
		return e.encodeReflectStruct(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return e.EncodeNone()
		}
		return e.encodeReflectValue(rv.Elem())
	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}
}

func (e *Encoder) encodeReflectList(rv reflect.Value) error {
	n := rv.Len()
	if err := e.BeginList(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeReflectValue(rv.Index(i)); err != nil {
			return err
		}
	}
	return e.EndList()
}

// encodeReflectMap writes a Go map as a dict. Keys must be strings or
// integers and are emitted in sorted order for deterministic output.
func (e *Encoder) encodeReflectMap(rv reflect.Value) error {
	keys := rv.MapKeys()
	switch rv.Type().Key().Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}
	if err := e.BeginDict(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.encodeReflectValue(k); err != nil {
			return err
		}
		if err := e.encodeReflectValue(rv.MapIndex(k)); err != nil {
			return err
		}
	}
	return e.EndDict()
}

func (e *Encoder) encodeReflectStruct(rv reflect.Value) error {
	layout := layoutOf(rv.Type())
	if err := e.BeginDict(len(layout.fields)); err != nil {
		return err
	}
	for _, f := range layout.fields {
		if err := e.EncodeString(f.name); err != nil {
			return err
		}
		if err := e.encodeReflectValue(rv.FieldByIndex(f.index)); err != nil {
			return err
		}
	}
	return e.EndDict()
}

// --------------------------------------------------------------------------
// Reflection Decoding
// --------------------------------------------------------------------------

// Decode reads one value into v, which must be a non-nil pointer. It
// accepts *Value, any type implementing Unmarshaler, and pointers to
// plain Go values: booleans, all integer and float widths, strings,
// []byte, slices, arrays, maps, structs, nested pointers and any.
func (d *Decoder) Decode(v any) error {
	switch t := v.(type) {
	case *Value:
		val, err := d.DecodeValue()
		if err != nil {
			return err
		}
		*t = val
		return nil
	case Unmarshaler:
		return t.UnmarshalRencode(d)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(v)}
	}
	return d.decodeReflectValue(rv.Elem())
}

var valueType = reflect.TypeOf(Value{})

func (d *Decoder) decodeReflectValue(rv reflect.Value) error {
	if rv.Type() == valueType {
		val, err := d.DecodeValue()
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(val))
		return nil
	}
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalRencode(d)
		}
	}
	switch rv.Kind() {
	case reflect.Pointer:
		kind, err := d.PeekKind()
		if err != nil {
			return err
		}
		if kind == KindNone {
			if err := d.DecodeNone(); err != nil {
				return err
			}
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeReflectValue(rv.Elem())
	case reflect.Bool:
		v, err := d.DecodeBool()
		if err != nil {
			return err
		}
		rv.SetBool(v)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		off := d.offset
		v, err := d.DecodeInt()
		if err != nil {
			return err
		}
		if rv.OverflowInt(v) {
			return &TypeMismatchError{Offset: off, Expected: rv.Type().String(), Got: KindInt}
		}
		rv.SetInt(v)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		off := d.offset
		v, err := d.DecodeUint()
		if err != nil {
			return err
		}
		if rv.OverflowUint(v) {
			return &TypeMismatchError{Offset: off, Expected: rv.Type().String(), Got: KindInt}
		}
		rv.SetUint(v)
		return nil
	case reflect.Float32:
		v, err := d.DecodeFloat32()
		if err != nil {
			return err
		}
		rv.SetFloat(float64(v))
		return nil
	case reflect.Float64:
		v, err := d.DecodeFloat64()
		if err != nil {
			return err
		}
		rv.SetFloat(v)
		return nil
	case reflect.String:
		v, err := d.DecodeString()
		if err != nil {
			return err
		}
		rv.SetString(v)
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b, err := d.DecodeBytes()
			if err != nil {
				return err
			}
			rv.SetBytes(b)
			return nil
		}
		return d.decodeReflectSlice(rv)
	case reflect.Array:
		return d.decodeReflectArray(rv)
	case reflect.Map:
		return d.decodeReflectMap(rv)
	case reflect.Struct:
		return d.decodeReflectStruct(rv)
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &UnsupportedTypeError{Type: rv.Type()}
		}
		val, err := d.DecodeValue()
		if err != nil {
			return err
		}
		if val.IsNone() {
			rv.SetZero()
			return nil
		}
		rv.Set(reflect.ValueOf(val.Interface()))
		return nil
	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}
}

func (d *Decoder) decodeReflectSlice(rv reflect.Value) error {
	cur, err := d.DecodeList()
	if err != nil {
		return err
	}
	elemType := rv.Type().Elem()
	out := reflect.MakeSlice(rv.Type(), 0, max(cur.Len(), 0))
	for {
		more, err := cur.Next()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		elem := reflect.New(elemType).Elem()
		if err := d.decodeReflectValue(elem); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
	}
	rv.Set(out)
	return nil
}

func (d *Decoder) decodeReflectArray(rv reflect.Value) error {
	cur, err := d.DecodeList()
	if err != nil {
		return err
	}
	n := 0
	for {
		more, err := cur.Next()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if n >= rv.Len() {
			return fmt.Errorf("rencode: list too long for %s", rv.Type())
		}
		if err := d.decodeReflectValue(rv.Index(n)); err != nil {
			return err
		}
		n++
	}
	if n != rv.Len() {
		return fmt.Errorf("rencode: list of length %d too short for %s", n, rv.Type())
	}
	return nil
}

func (d *Decoder) decodeReflectMap(rv reflect.Value) error {
	cur, err := d.DecodeDict()
	if err != nil {
		return err
	}
	t := rv.Type()
	out := reflect.MakeMap(t)
	for {
		more, err := cur.Next()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		key := reflect.New(t.Key()).Elem()
		if err := d.decodeReflectValue(key); err != nil {
			return err
		}
		val := reflect.New(t.Elem()).Elem()
		if err := d.decodeReflectValue(val); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	rv.Set(out)
	return nil
}

// decodeReflectStruct fills a struct from a dict. Every wire key must
// map to a field and every field must be present; unknown and missing
// fields are distinct error kinds, reported rather than ignored.
func (d *Decoder) decodeReflectStruct(rv reflect.Value) error {
	cur, err := d.DecodeDict()
	if err != nil {
		return err
	}
	layout := layoutOf(rv.Type())
	seen := make([]bool, len(layout.fields))
	for {
		more, err := cur.Next()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		key, err := d.DecodeString()
		if err != nil {
			return err
		}
		idx, ok := layout.byName[key]
		if !ok {
			return &UnknownFieldError{Field: key, Type: rv.Type()}
		}
		if err := d.decodeReflectValue(rv.FieldByIndex(layout.fields[idx].index)); err != nil {
			return err
		}
		seen[idx] = true
	}
	for i, s := range seen {
		if !s {
			return &MissingFieldError{Field: layout.fields[i].name, Type: rv.Type()}
		}
	}
	return nil
}
