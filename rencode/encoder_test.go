package rencode

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

// TestEncodeIntegerWidths verifies that every integer is written in its
// narrowest form, including the exact boundaries between forms.
func TestEncodeIntegerWidths(t *testing.T) {
	testCases := []struct {
		name string
		in   int64
		want []byte
	}{
		{"EmbeddedZero", 0, []byte{0}},
		{"EmbeddedSmall", 5, []byte{5}},
		{"EmbeddedMax", 43, []byte{43}},
		{"EmbeddedNegSmall", -5, []byte{74}},
		{"EmbeddedNegMin", -32, []byte{101}},
		{"Int8AboveEmbedded", 44, []byte{62, 44}},
		{"Int8BelowEmbedded", -33, []byte{62, 223}},
		{"Int8Pos", 100, []byte{62, 100}},
		{"Int8Neg", -100, []byte{62, 156}},
		{"Int8Max", 127, []byte{62, 127}},
		{"Int8Min", -128, []byte{62, 128}},
		{"Int16AboveInt8", 128, []byte{63, 0, 128}},
		{"Int16BelowInt8", -129, []byte{63, 255, 127}},
		{"Int16Pos", 200, []byte{63, 0, 200}},
		{"Int16Neg", -200, []byte{63, 255, 56}},
		{"Int16Max", 32767, []byte{63, 127, 255}},
		{"Int32AboveInt16", 32768, []byte{64, 0, 0, 128, 0}},
		{"Int32Pos", 100000, []byte{64, 0, 1, 134, 160}},
		{"Int32Neg", -100000, []byte{64, 255, 254, 121, 96}},
		{"Int32Max", math.MaxInt32, []byte{64, 127, 255, 255, 255}},
		{"Int64AboveInt32", math.MaxInt32 + 1, []byte{65, 0, 0, 0, 0, 128, 0, 0, 0}},
		{"Int64Pos", 400000000000, []byte{65, 0, 0, 0, 93, 33, 219, 160, 0}},
		{"Int64Neg", -400000000000, []byte{65, 255, 255, 255, 162, 222, 36, 96, 0}},
		{"Int64Max", math.MaxInt64, []byte{65, 127, 255, 255, 255, 255, 255, 255, 255}},
		{"Int64Min", math.MinInt64, []byte{65, 128, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("Failed to encode %d: %v", tc.in, err)
			}
			if !bytes.Equal(data, tc.want) {
				t.Errorf("encode(%d) = %v, want %v", tc.in, data, tc.want)
			}
		})
	}
}

// TestEncodeUintWraps verifies that unsigned values above the signed
// range reinterpret as signed, matching the original format.
func TestEncodeUintWraps(t *testing.T) {
	got, err := Marshal(uint64(math.MaxUint64))
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	want, _ := Marshal(int64(-1))
	if !bytes.Equal(got, want) {
		t.Errorf("encode(MaxUint64) = %v, want %v (the -1 encoding)", got, want)
	}

	got, err = Marshal(uint64(5))
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if !bytes.Equal(got, []byte{5}) {
		t.Errorf("encode(uint64(5)) = %v, want [5]", got)
	}
}

func TestEncodeBoolNoneFloats(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want []byte
	}{
		{"True", true, []byte{67}},
		{"False", false, []byte{68}},
		{"None", nil, []byte{69}},
		{"Float32", float32(0.5), []byte{66, 0x3f, 0, 0, 0}},
		{"Float64", float64(0.5), []byte{44, 0x3f, 0xe0, 0, 0, 0, 0, 0, 0}},
		{"Float64Value", Float(1.0), []byte{44, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("Failed to encode %v: %v", tc.in, err)
			}
			if !bytes.Equal(data, tc.want) {
				t.Errorf("encode(%v) = %v, want %v", tc.in, data, tc.want)
			}
		})
	}
}

// TestEncodeStringBoundary checks the switch from the embedded-length
// header to the decimal-length form at 64 bytes.
func TestEncodeStringBoundary(t *testing.T) {
	data, err := Marshal("abc")
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if want := []byte{131, 'a', 'b', 'c'}; !bytes.Equal(data, want) {
		t.Errorf("encode(\"abc\") = %v, want %v", data, want)
	}

	s63 := strings.Repeat("x", 63)
	data, err = Marshal(s63)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if data[0] != 191 || len(data) != 64 {
		t.Errorf("63-byte string: header %d, total %d; want header 191, total 64", data[0], len(data))
	}

	s64 := strings.Repeat("x", 64)
	data, err = Marshal(s64)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if want := []byte("64:" + s64); !bytes.Equal(data, want) {
		t.Errorf("64-byte string = %v, want decimal-length form", data)
	}

	long := "ghkdgdfjgdfjgfdgjhkdfgjhdfgfdjgdfjkgdfjhghfdgdfhkgdfhkgfdhgdfhgdfhdfghdfghkdfhdk"
	data, err = Marshal(long)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if want := []byte("80:" + long); !bytes.Equal(data, want) {
		t.Errorf("80-byte string = %q, want %q", data, want)
	}
}

// TestEncodeContainers checks the fixed and open forms on both sides of
// their count limits.
func TestEncodeContainers(t *testing.T) {
	t.Run("FixedList", func(t *testing.T) {
		data, err := Marshal([]int{1, 2})
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if want := []byte{194, 1, 2}; !bytes.Equal(data, want) {
			t.Errorf("encode([1 2]) = %v, want %v", data, want)
		}
	})

	t.Run("OpenList", func(t *testing.T) {
		list := make([]int, 80)
		for i := range list {
			list[i] = 1
		}
		data, err := Marshal(list)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if len(data) != 82 {
			t.Fatalf("80-element list encodes to %d bytes, want 82", len(data))
		}
		if data[0] != chrList || data[81] != chrTerm {
			t.Errorf("open list framing = [%d ... %d], want [59 ... 127]", data[0], data[81])
		}
	})

	t.Run("FixedDict", func(t *testing.T) {
		data, err := Marshal(map[int8]string{1: "a"})
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if want := []byte{103, 1, 129, 'a'}; !bytes.Equal(data, want) {
			t.Errorf("encode(map) = %v, want %v", data, want)
		}
	})

	t.Run("OpenDict", func(t *testing.T) {
		m := make(map[int]int)
		for i := 0; i < 80; i++ {
			m[i] = i
		}
		data, err := Marshal(m)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if data[0] != chrDict || data[len(data)-1] != chrTerm {
			t.Errorf("open dict framing = [%d ... %d], want [60 ... 127]", data[0], data[len(data)-1])
		}
	})

	t.Run("ListBoundary63", func(t *testing.T) {
		data, err := Marshal(make([]int, 63))
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if data[0] != 255 || len(data) != 64 {
			t.Errorf("63-element list: header %d, total %d; want header 255, total 64", data[0], len(data))
		}
	})

	t.Run("ListBoundary64", func(t *testing.T) {
		data, err := Marshal(make([]int, 64))
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if data[0] != chrList || data[len(data)-1] != chrTerm {
			t.Errorf("64-element list must use the open form, got header %d", data[0])
		}
	})

	t.Run("DictBoundary", func(t *testing.T) {
		m24 := make(map[int]int)
		for i := 0; i < 24; i++ {
			m24[i] = i
		}
		data, err := Marshal(m24)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if data[0] != 126 {
			t.Errorf("24-pair dict header = %d, want 126", data[0])
		}

		m25 := make(map[int]int)
		for i := 0; i < 25; i++ {
			m25[i] = i
		}
		data, err = Marshal(m25)
		if err != nil {
			t.Fatalf("Failed to encode: %v", err)
		}
		if data[0] != chrDict {
			t.Errorf("25-pair dict header = %d, want the open form (60)", data[0])
		}
	})
}

// TestEncodeDeterministicKeys verifies that dict entries are emitted in
// sorted key order regardless of insertion order.
func TestEncodeDeterministicKeys(t *testing.T) {
	a := Dict(map[string]Value{"b": Int(2), "a": Int(1), "c": Int(3)})
	first, err := Marshal(a)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	want := []byte{105, 129, 'a', 1, 129, 'b', 2, 129, 'c', 3}
	if !bytes.Equal(first, want) {
		t.Errorf("dict encoding = %v, want sorted %v", first, want)
	}

	// Same entries inserted in a different order.
	b := Dict(map[string]Value{})
	b.Dict()["c"] = Int(3)
	b.Dict()["a"] = Int(1)
	b.Dict()["b"] = Int(2)
	second, err := Marshal(b)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("insertion order leaks into encoding: %v vs %v", first, second)
	}
}

// TestEncoderArity checks that fixed-count headers are held to their
// declared element counts.
func TestEncoderArity(t *testing.T) {
	t.Run("TooFewElements", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		if err := e.BeginList(2); err != nil {
			t.Fatalf("BeginList: %v", err)
		}
		if err := e.EncodeInt(1); err != nil {
			t.Fatalf("EncodeInt: %v", err)
		}
		if err := e.EndList(); err == nil {
			t.Error("EndList on a short fixed list should fail")
		}
	})

	t.Run("TooManyElements", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		if err := e.BeginList(1); err != nil {
			t.Fatalf("BeginList: %v", err)
		}
		if err := e.EncodeInt(1); err != nil {
			t.Fatalf("EncodeInt: %v", err)
		}
		if err := e.EncodeInt(2); err == nil {
			t.Error("exceeding a fixed list's declared count should fail")
		}
	})

	t.Run("MismatchedEnd", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		if err := e.BeginList(0); err != nil {
			t.Fatalf("BeginList: %v", err)
		}
		if err := e.EndDict(); err == nil {
			t.Error("EndDict should not close a list")
		}
	})

	t.Run("EndWithoutBegin", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		if err := e.EndList(); err == nil {
			t.Error("EndList without BeginList should fail")
		}
	})

	t.Run("OpenFormTerminator", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		if err := e.BeginList(-1); err != nil {
			t.Fatalf("BeginList: %v", err)
		}
		if err := e.EncodeInt(1); err != nil {
			t.Fatalf("EncodeInt: %v", err)
		}
		if err := e.EndList(); err != nil {
			t.Fatalf("EndList: %v", err)
		}
		if want := []byte{chrList, 1, chrTerm}; !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("open list = %v, want %v", buf.Bytes(), want)
		}
	})
}
