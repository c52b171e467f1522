package serializer

import (
	"github.com/sbstp/deluge/rencode"
)

// NewRencodeSerializer creates a new serializer using the rencode wire
// format, the native encoding of the Deluge RPC protocol
func NewRencodeSerializer() ISerializer {
	return &rencodeSerializerImpl{}
}

// rencodeSerializerImpl implements ISerializer using the rencode package
type rencodeSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (r rencodeSerializerImpl) Serialize(v any) ([]byte, error) {
	return rencode.Marshal(v)
}

func (r rencodeSerializerImpl) Deserialize(data []byte, v any) error {
	return rencode.Unmarshal(data, v)
}
