package rencode

// --------------------------------------------------------------------------
// Typecode Table
// --------------------------------------------------------------------------

// The wire format is dispatched entirely on the leading byte of a value.
// The byte ranges below partition 0..255 and must never overlap:
//
//	0..43    embedded non-negative integer, value == byte
//	44       64-bit float follows (big-endian IEEE-754 double)
//	48..57   ASCII digit: decimal-length string form ("<len>:<bytes>")
//	59       open list, elements follow until the terminator
//	60       open dict, key/value pairs follow until the terminator
//	62..65   explicit signed integer of 1/2/4/8 bytes (big-endian)
//	66       32-bit float follows (big-endian IEEE-754 single)
//	67, 68   boolean true / false, no payload
//	69       none, no payload
//	70..101  embedded negative integer, value == 69 - byte
//	102..126 fixed dict header, pair count == byte - 102
//	127      terminator closing an open list or dict
//	128..191 fixed string header, byte length == byte - 128
//	192..255 fixed list header, element count == byte - 192
//
// The remaining codes (45..47, 58 and 61) are unused by the format and
// rejected by the decoder.
const (
	chrList    byte = 59
	chrDict    byte = 60
	chrInt8    byte = 62
	chrInt16   byte = 63
	chrInt32   byte = 64
	chrInt64   byte = 65
	chrFloat32 byte = 66
	chrFloat64 byte = 44
	chrTrue    byte = 67
	chrFalse   byte = 68
	chrNone    byte = 69
	chrTerm    byte = 127
)

// Embedded forms carry part or all of the value in the typecode itself.
const (
	intPosFixedStart byte = 0
	intPosFixedCount byte = 44
	intNegFixedStart byte = 70
	intNegFixedCount byte = 32
	dictFixedStart   byte = 102
	dictFixedCount   byte = 25
	strFixedStart    byte = 128
	strFixedCount    byte = 64
	listFixedStart   byte = strFixedStart + strFixedCount
	listFixedCount   byte = 64
)

// kindOfCode maps a leading byte to the kind of value it introduces.
// The second return value is false for the reserved codes and for the
// terminator, neither of which introduces a value.
func kindOfCode(c byte) (Kind, bool) {
	switch {
	case c >= '0' && c <= '9':
		// Decimal-length string form. Checked before the integer
		// ranges: the digit codes always mean "string" on the wire.
		return KindString, true
	case c < intPosFixedStart+intPosFixedCount:
		return KindInt, true
	case c == chrFloat64, c == chrFloat32:
		return KindFloat, true
	case c == chrList:
		return KindList, true
	case c == chrDict:
		return KindDict, true
	case c >= chrInt8 && c <= chrInt64:
		return KindInt, true
	case c == chrTrue, c == chrFalse:
		return KindBool, true
	case c == chrNone:
		return KindNone, true
	case c >= intNegFixedStart && c < intNegFixedStart+intNegFixedCount:
		return KindInt, true
	case c >= dictFixedStart && c < dictFixedStart+dictFixedCount:
		return KindDict, true
	case c >= strFixedStart && c < strFixedStart+strFixedCount:
		return KindString, true
	case c >= listFixedStart:
		return KindList, true
	default:
		// 45..47, 58, 61 (reserved) and 127 (terminator).
		return 0, false
	}
}
