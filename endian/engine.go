// Package endian provides the byte order used by the GraphPipe tensor codec.
//
// Tensor payloads on the wire are always little-endian. The codec packs and unpacks
// through a WireEngine, and uses NativeIsWire to decide whether a typed slice can be
// copied through a raw byte view instead of element by element.
//
//	engine := endian.WireEngine()
//	engine.PutUint16(buf, uint16(v))
//
// All functions in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"sync"
	"unsafe"
)

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness probes the host's byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	// First byte at the lowest address is the MSB on big-endian hosts.
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

var nativeIsWire = sync.OnceValue(func() bool {
	return CheckEndianness() == binary.LittleEndian
})

// NativeIsWire reports whether the host byte order equals the wire byte order, in which
// case the in-memory representation of a numeric slice is already its wire encoding.
func NativeIsWire() bool {
	return nativeIsWire()
}

// WireEngine returns the engine for the wire byte order (little-endian).
func WireEngine() EndianEngine {
	return binary.LittleEndian
}
