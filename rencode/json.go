package rencode

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON renders the Value tree as JSON, for diagnostics and for
// handing decoded payloads to JSON-speaking tooling. The none value
// renders as null; integers and floats render as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON builds a Value tree from JSON. JSON numbers arrive as
// float64 per the standard decoding rules, so integers do not survive a
// JSON round trip exactly; this path exists for diagnostics and test
// fixtures, not for wire interchange.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	val, err := FromInterface(x)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
