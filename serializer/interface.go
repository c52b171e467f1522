package serializer

// ISerializer is the interface for all serializer implementations.
type ISerializer interface {
	// Serialize encodes a value into a byte slice.
	// It returns the encoded bytes and an error if any.
	Serialize(v any) ([]byte, error)
	// Deserialize decodes a byte slice into a value.
	// It takes the encoded bytes and a pointer to the target as parameters.
	// It returns an error if any.
	Deserialize(data []byte, v any) error
}
