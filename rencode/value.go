package rencode

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kind
// --------------------------------------------------------------------------

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "invalid"
	}
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is the format's generic variant type, used when no statically
// typed target is available. A Value is a tree: lists and dicts own
// their children outright, so no sharing or cycles are possible by
// construction. The zero Value is the none value.
//
// The decoder builds Values bottom-up (leaves before parents); the
// encoder consumes them without mutation, so a Value may be encoded
// concurrently from multiple goroutines.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	list []Value
	dict map[string]Value
}

// None returns the absent value.
func None() Value { return Value{kind: KindNone} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns a signed integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Uint returns an unsigned integer Value. Values above math.MaxInt64
// encode by reinterpreting the bit pattern as a signed integer; see the
// Encoder documentation.
func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }

// Float returns a 64-bit float Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str returns a string Value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// List returns a list Value owning the given elements.
func List(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, list: elems}
}

// Dict returns a dict Value owning the given entries. Keys re-encode in
// sorted order regardless of map iteration order.
func Dict(entries map[string]Value) Value {
	if entries == nil {
		entries = map[string]Value{}
	}
	return Value{kind: KindDict, dict: entries}
}

// Kind reports which variant the Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether the Value is the absent value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Bool returns the boolean payload, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the signed integer payload, or 0 for other kinds.
func (v Value) Int() int64 { return v.i }

// Uint returns the unsigned integer payload, or 0 for other kinds.
func (v Value) Uint() uint64 { return v.u }

// Float returns the float payload, or 0 for other kinds.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload, or "" for other kinds.
func (v Value) Str() string { return v.s }

// List returns the element slice, or nil for other kinds. The slice is
// owned by the Value and must not be mutated while encoding.
func (v Value) List() []Value { return v.list }

// Dict returns the entry map, or nil for other kinds. The map is owned
// by the Value and must not be mutated while encoding.
func (v Value) Dict() map[string]Value { return v.dict }

// sortedKeys returns the dict keys in encoding order.
func (v Value) sortedKeys() []string {
	keys := make([]string, 0, len(v.dict))
	for k := range v.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --------------------------------------------------------------------------
// Equality and Conversion
// --------------------------------------------------------------------------

// Equal reports whether two Values are semantically equal. Int and Uint
// Values compare equal when they represent the same non-negative number,
// since the decoder always reconstructs wire integers as Int.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		// Cross-kind numeric comparison for the int/uint split.
		if v.kind == KindInt && o.kind == KindUint {
			return v.i >= 0 && uint64(v.i) == o.u
		}
		if v.kind == KindUint && o.kind == KindInt {
			return o.i >= 0 && uint64(o.i) == v.u
		}
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindUint:
		return v.u == o.u
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for k, ve := range v.dict {
			oe, ok := o.dict[k]
			if !ok || !ve.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface converts the Value tree into plain Go values: nil, bool,
// int64, uint64, float64, string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindDict:
		out := make(map[string]any, len(v.dict))
		for k, e := range v.dict {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value from plain Go values: nil, booleans, all
// integer and float widths, strings, []any and map[string]any (and the
// concrete slice/map shapes produced by Interface). Other types need the
// reflection path in Marshal.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return List(elems...), nil
	case map[string]any:
		entries := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, err
			}
			entries[k] = v
		}
		return Dict(entries), nil
	default:
		return Value{}, fmt.Errorf("rencode: cannot build Value from %T", x)
	}
}

// String renders the Value in a compact diagnostic notation. It is meant
// for logs and test failures, not for re-parsing.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return fmt.Sprintf("%v", v.f)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindDict:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.sortedKeys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			sb.WriteString(v.dict[k].String())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return "invalid"
	}
}
