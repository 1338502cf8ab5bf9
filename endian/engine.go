// Package endian fixes the byte order of rzap streams and converts typed
// vectors to and from their wire representation.
//
// Every fixed-width value in an rzap stream (raw vector payloads, deltaframe
// reference and offset, packed containers, bitmaps) is little-endian,
// regardless of the host. On little-endian hosts the bulk converters below
// reduce to a single memory copy.
//
//	buf = endian.AppendInt32s(buf, vec.Values)
//	endian.Int32s(values, payload)
package endian

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256: a little-endian host stores the 0x00 byte first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

var nativeLittle = CheckEndianness() == binary.LittleEndian

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return nativeLittle
}

// Wire returns the engine used for every fixed-width value in a stream.
func Wire() EndianEngine {
	return binary.LittleEndian
}

func asBytes[T int32 | uint32 | uint64 | int64 | float64](src []T) []byte {
	if len(src) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(src[0]))

	return unsafe.Slice((*byte)(unsafe.Pointer(&src[0])), len(src)*size)
}

// AppendInt32s appends src to dst as little-endian int32 values.
func AppendInt32s(dst []byte, src []int32) []byte {
	if nativeLittle {
		return append(dst, asBytes(src)...)
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v)) //nolint:gosec
	}

	return dst
}

// Int32s decodes len(dst) little-endian int32 values from src.
// src must hold at least 4*len(dst) bytes.
func Int32s(dst []int32, src []byte) {
	if nativeLittle {
		copy(asBytes(dst), src)
		return
	}
	for i := range dst {
		dst[i] = int32(binary.LittleEndian.Uint32(src[i*4:])) //nolint:gosec
	}
}

// AppendUint32s appends src to dst as little-endian uint32 values.
func AppendUint32s(dst []byte, src []uint32) []byte {
	if nativeLittle {
		return append(dst, asBytes(src)...)
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}

	return dst
}

// Uint32s decodes len(dst) little-endian uint32 values from src.
func Uint32s(dst []uint32, src []byte) {
	if nativeLittle {
		copy(asBytes(dst), src)
		return
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(src[i*4:])
	}
}

// AppendUint64s appends src to dst as little-endian uint64 values.
func AppendUint64s(dst []byte, src []uint64) []byte {
	if nativeLittle {
		return append(dst, asBytes(src)...)
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, v)
	}

	return dst
}

// Uint64s decodes len(dst) little-endian uint64 values from src.
func Uint64s(dst []uint64, src []byte) {
	if nativeLittle {
		copy(asBytes(dst), src)
		return
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
}

// AppendInt64s appends src to dst as little-endian int64 values.
func AppendInt64s(dst []byte, src []int64) []byte {
	if nativeLittle {
		return append(dst, asBytes(src)...)
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, uint64(v)) //nolint:gosec
	}

	return dst
}

// Int64s decodes len(dst) little-endian int64 values from src.
func Int64s(dst []int64, src []byte) {
	if nativeLittle {
		copy(asBytes(dst), src)
		return
	}
	for i := range dst {
		dst[i] = int64(binary.LittleEndian.Uint64(src[i*8:])) //nolint:gosec
	}
}

// AppendFloat64s appends the IEEE-754 bit patterns of src to dst, little-endian.
// NaN payloads and the sign of zero are preserved.
func AppendFloat64s(dst []byte, src []float64) []byte {
	if nativeLittle {
		return append(dst, asBytes(src)...)
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// Float64s decodes len(dst) little-endian IEEE-754 values from src.
func Float64s(dst []float64, src []byte) {
	if nativeLittle {
		copy(asBytes(dst), src)
		return
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
	}
}
