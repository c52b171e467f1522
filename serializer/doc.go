// Package serializer provides a pluggable serialization layer for
// applications speaking the Deluge RPC protocol. It defines a common
// interface and multiple implementations for converting between Go
// values and byte slices, so transports and storage layers can be
// written against one contract and switch formats without code changes.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Offering multiple implementations with different performance characteristics
//   - Keeping every implementation deterministic where the format allows it
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations
//     must satisfy.
//
//   - rencodeSerializerImpl: The protocol's native format, implemented
//     by the rencode package in this module. Produces the smallest
//     payloads for the small integers, short strings and short
//     collections that dominate RPC traffic, and is the only
//     implementation that interoperates with existing Deluge peers.
//
//   - cborSerializerImpl: CBOR (RFC 8949) via fxamacker/cbor,
//     configured for Core Deterministic Encoding: sorted map keys,
//     smallest integer encoding, no indefinite-length items.
//
//   - msgpackSerializerImpl: MessagePack via vmihailenco/msgpack,
//     a widely supported binary format with good general performance.
//
//   - jsonSerializerImpl: JSON via json-iterator, useful for debugging
//     and for integrating with systems that cannot speak a binary
//     format, at the cost of payload size.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent
//	use across multiple goroutines without additional synchronization.
//
// Usage:
//
//	Serializers are typically created once and reused throughout the
//	application:
//
//	  s := serializer.NewRencodeSerializer()
//	  data, err := s.Serialize(request)
//	  // ... send data ...
//	  var resp Response
//	  err = s.Deserialize(received, &resp)
package serializer
