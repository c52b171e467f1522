package rencode

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

type wireMsg struct {
	Name string `rencode:"name"`
	Code int32  `rencode:"code"`
}

func TestStructRoundTrip(t *testing.T) {
	in := wireMsg{Name: "bob", Code: -133}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	// Fixed dict of 2, keys in sorted order, minimal integer width.
	want := []byte{
		104,
		132, 'c', 'o', 'd', 'e', 63, 0xff, 0x7b,
		132, 'n', 'a', 'm', 'e', 131, 'b', 'o', 'b',
	}
	if !bytes.Equal(data, want) {
		t.Errorf("encoded %v, want %v", data, want)
	}

	var out wireMsg
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

func TestStructTags(t *testing.T) {
	type tagged struct {
		Kept       string `rencode:"k,omitempty"`
		Skipped    string `rencode:"-"`
		unexported string
		Plain      int
	}

	in := tagged{Kept: "v", Skipped: "dropped", unexported: "hidden", Plain: 7}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	v, err := UnmarshalValue(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	dict := v.Dict()
	if len(dict) != 2 {
		t.Fatalf("encoded %d fields, want 2: %s", len(dict), v)
	}
	if dict["k"].Str() != "v" {
		t.Errorf("tag rename not applied: %s", v)
	}
	if dict["Plain"].Int() != 7 {
		t.Errorf("untagged field missing: %s", v)
	}

	var out tagged
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode into struct: %v", err)
	}
	if out.Kept != "v" || out.Plain != 7 || out.Skipped != "" {
		t.Errorf("decoded %+v", out)
	}
}

func TestNestedStructsAndPointers(t *testing.T) {
	type inner struct {
		N int `rencode:"n"`
	}
	type outer struct {
		A *inner  `rencode:"a"`
		B *inner  `rencode:"b"`
		S []int16 `rencode:"s"`
		M map[string]bool
	}

	in := outer{
		A: &inner{N: 1},
		B: nil,
		S: []int16{1, -300},
		M: map[string]bool{"x": true},
	}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var out outer
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if out.A == nil || out.A.N != 1 {
		t.Errorf("pointer field decoded as %+v", out.A)
	}
	if out.B != nil {
		t.Errorf("nil pointer came back non-nil: %+v", out.B)
	}
	if !reflect.DeepEqual(out.S, in.S) || !reflect.DeepEqual(out.M, in.M) {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

func TestStrictFields(t *testing.T) {
	t.Run("Unknown", func(t *testing.T) {
		data, err := Marshal(map[string]int{"name": 1, "extra": 2})
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		var out struct {
			Name int `rencode:"name"`
		}
		var ue *UnknownFieldError
		if err := Unmarshal(data, &out); !errors.As(err, &ue) {
			t.Fatalf("error = %v, want *UnknownFieldError", err)
		}
		if ue.Field != "extra" {
			t.Errorf("Field = %q, want \"extra\"", ue.Field)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		data, err := Marshal(map[string]int{"name": 1})
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		var out struct {
			Name int `rencode:"name"`
			Code int `rencode:"code"`
		}
		var me *MissingFieldError
		if err := Unmarshal(data, &out); !errors.As(err, &me) {
			t.Fatalf("error = %v, want *MissingFieldError", err)
		}
		if me.Field != "code" {
			t.Errorf("Field = %q, want \"code\"", me.Field)
		}
	})
}

func TestBytesAndArrays(t *testing.T) {
	t.Run("Bytes", func(t *testing.T) {
		in := []byte{0x00, 0xff, 0x10}
		data, err := Marshal(in)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		// []byte uses the string wire form.
		if data[0] != 131 {
			t.Errorf("header = %d, want 131", data[0])
		}
		var out []byte
		if err := Unmarshal(data, &out); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("decoded %v, want %v", out, in)
		}
	})

	t.Run("Array", func(t *testing.T) {
		in := [3]int{10, 20, 30}
		data, err := Marshal(in)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		var out [3]int
		if err := Unmarshal(data, &out); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if out != in {
			t.Errorf("decoded %v, want %v", out, in)
		}

		var short [2]int
		if err := Unmarshal(data, &short); err == nil {
			t.Error("expected an error decoding 3 elements into [2]int")
		}
		var long [4]int
		if err := Unmarshal(data, &long); err == nil {
			t.Error("expected an error decoding 3 elements into [4]int")
		}
	})
}

func TestDecodeIntoAny(t *testing.T) {
	data, err := Marshal(map[string]any{"n": int64(5), "l": []any{true, nil}})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	var out any
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	want := map[string]any{"n": int64(5), "l": []any{true, nil}}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("decoded %#v, want %#v", out, want)
	}
}

func TestMarshalErrors(t *testing.T) {
	t.Run("UnsupportedType", func(t *testing.T) {
		var ut *UnsupportedTypeError
		if _, err := Marshal(make(chan int)); !errors.As(err, &ut) {
			t.Errorf("error = %v, want *UnsupportedTypeError", err)
		}
		if _, err := Marshal(map[float64]int{1: 1}); !errors.As(err, &ut) {
			t.Errorf("float map key error = %v, want *UnsupportedTypeError", err)
		}
	})

	t.Run("InvalidUnmarshal", func(t *testing.T) {
		var ie *InvalidUnmarshalError
		if err := Unmarshal([]byte{5}, 7); !errors.As(err, &ie) {
			t.Errorf("non-pointer error = %v, want *InvalidUnmarshalError", err)
		}
		if err := Unmarshal([]byte{5}, (*int)(nil)); !errors.As(err, &ie) {
			t.Errorf("nil pointer error = %v, want *InvalidUnmarshalError", err)
		}
	})
}

// torrentID exercises the custom marshal contracts: it travels as a
// bare string rather than a struct dict.
type torrentID struct {
	hash string
}

func (t torrentID) MarshalRencode(e *Encoder) error {
	return e.EncodeString(t.hash)
}

func (t *torrentID) UnmarshalRencode(d *Decoder) error {
	s, err := d.DecodeString()
	if err != nil {
		return err
	}
	t.hash = s
	return nil
}

func TestCustomMarshaler(t *testing.T) {
	in := torrentID{hash: "ab12"}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if want := []byte{132, 'a', 'b', '1', '2'}; !bytes.Equal(data, want) {
		t.Errorf("encoded %v, want %v", data, want)
	}

	var out torrentID
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}

	// The contracts also apply to fields inside plain structs.
	type wrapper struct {
		ID torrentID `rencode:"id"`
	}
	wdata, err := Marshal(wrapper{ID: in})
	if err != nil {
		t.Fatalf("Failed to encode wrapper: %v", err)
	}
	var wout wrapper
	if err := Unmarshal(wdata, &wout); err != nil {
		t.Fatalf("Failed to decode wrapper: %v", err)
	}
	if wout.ID != in {
		t.Errorf("decoded %+v, want %+v", wout.ID, in)
	}
}
