package multimap

import (
	"bytes"
	"encoding/binary"
)

// Serializer is supplied by the caller for each of a table's key and
// value types: a stable, deterministic serialization plus a total
// order over the serialized form.
type Serializer[T any] interface {
	ToBytes(v T) []byte
	FromBytes(b []byte) T
	Compare(a, b []byte) int
}

// Bytes is the identity serializer: []byte values compared
// lexicographically.
type Bytes struct{}

func (Bytes) ToBytes(v []byte) []byte   { return v }
func (Bytes) FromBytes(b []byte) []byte { return append([]byte(nil), b...) }
func (Bytes) Compare(a, b []byte) int   { return bytes.Compare(a, b) }

// String serializes strings as their UTF-8 bytes, comparing in
// lexicographic byte order (equivalently, Go string order).
type String struct{}

func (String) ToBytes(v string) []byte   { return []byte(v) }
func (String) FromBytes(b []byte) string { return string(b) }
func (String) Compare(a, b []byte) int   { return bytes.Compare(a, b) }

// Uint64BE serializes uint64 values big-endian, so that byte order and
// numeric order agree.
type Uint64BE struct{}

func (Uint64BE) ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func (Uint64BE) FromBytes(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func (Uint64BE) Compare(a, b []byte) int   { return bytes.Compare(a, b) }

// Int64BE serializes int64 values big-endian with the sign bit flipped,
// so that two's-complement values still compare in numeric order as
// raw bytes.
type Int64BE struct{}

func (Int64BE) ToBytes(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^signBit)
	return buf
}

func (Int64BE) FromBytes(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ signBit)
}

func (Int64BE) Compare(a, b []byte) int { return bytes.Compare(a, b) }

const signBit = uint64(1) << 63
