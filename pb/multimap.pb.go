// Code generated by protoc-gen-gogofaster would normally sit here; the
// compiled output is hand-maintained in this tree because the .proto
// source is small and stable (a single metadata record for the
// backend's table roots).
package pb

import (
	"encoding/binary"
	"errors"
	"io"
)

// TableRoot is the backend's durable record of one table's persisted
// state: its name, the database revision it was written at, and a
// CRC32C checksum over its encoded pairs, checked on reload to detect
// corruption.
type TableRoot struct {
	Name     string
	Rev      int64
	Count    int64
	Checksum uint32
}

func (m *TableRoot) Reset()         { *m = TableRoot{} }
func (m *TableRoot) String() string { return protoString(m) }
func (*TableRoot) ProtoMessage()    {}

// Marshal implements the gogo/protobuf Marshaler fast path: proto.Marshal
// calls this directly instead of falling back to reflection.
func (m *TableRoot) Marshal() ([]byte, error) {
	size := m.Size()
	buf := make([]byte, 0, size)
	buf = appendTagString(buf, 1, m.Name)
	buf = appendTagVarint(buf, 2, zigzag(m.Rev))
	buf = appendTagVarint(buf, 3, zigzag(m.Count))
	buf = appendTagVarint(buf, 4, uint64(m.Checksum))
	return buf, nil
}

// Size reports the encoded length, used both by Marshal to preallocate
// and by callers that need to know a message's wire size up front.
func (m *TableRoot) Size() int {
	n := tagStringSize(1, m.Name)
	n += tagVarintSize(2, zigzag(m.Rev))
	n += tagVarintSize(3, zigzag(m.Count))
	n += tagVarintSize(4, uint64(m.Checksum))
	return n
}

// Unmarshal implements the gogo/protobuf Unmarshaler fast path.
func (m *TableRoot) Unmarshal(data []byte) error {
	m.Reset()
	for len(data) > 0 {
		fieldNum, wireType, n, err := readTag(data)
		if err != nil {
			return err
		}
		data = data[n:]

		switch fieldNum {
		case 1:
			v, n, err := readBytes(data, wireType)
			if err != nil {
				return err
			}
			m.Name = string(v)
			data = data[n:]
		case 2:
			v, n, err := readVarint(data, wireType)
			if err != nil {
				return err
			}
			m.Rev = unzigzag(v)
			data = data[n:]
		case 3:
			v, n, err := readVarint(data, wireType)
			if err != nil {
				return err
			}
			m.Count = unzigzag(v)
			data = data[n:]
		case 4:
			v, n, err := readVarint(data, wireType)
			if err != nil {
				return err
			}
			m.Checksum = uint32(v)
			data = data[n:]
		default:
			n, err := skipField(data, wireType)
			if err != nil {
				return err
			}
			data = data[n:]
		}
	}
	return nil
}

// --- minimal protobuf wire-format helpers ---
//
// This package hand-implements the small slice of the wire format
// TableRoot needs (varint and length-delimited fields only) rather than
// depending on protoc output, since the .proto source these types
// correspond to was not part of the retrieved sources (see DESIGN.md).

const (
	wireVarint = 0
	wireBytes  = 2
)

func zigzag(v int64) uint64   { return uint64(v<<1) ^ uint64(v>>63) }
func unzigzag(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

func appendTagVarint(buf []byte, field int, v uint64) []byte {
	buf = appendVarint(buf, uint64(field)<<3|wireVarint)
	return appendVarint(buf, v)
}

func appendTagString(buf []byte, field int, s string) []byte {
	buf = appendVarint(buf, uint64(field)<<3|wireBytes)
	buf = appendVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func tagVarintSize(field int, v uint64) int {
	return varintSize(uint64(field)<<3|wireVarint) + varintSize(v)
}

func tagStringSize(field int, s string) int {
	return varintSize(uint64(field)<<3|wireBytes) + varintSize(uint64(len(s))) + len(s)
}

func varintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

func readTag(data []byte) (field int, wireType int, n int, err error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, 0, 0, errors.New("pb: malformed tag")
	}
	return int(v >> 3), int(v & 7), n, nil
}

func readVarint(data []byte, wireType int) (uint64, int, error) {
	if wireType != wireVarint {
		return 0, 0, errors.New("pb: unexpected wire type for varint field")
	}
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, 0, errors.New("pb: malformed varint")
	}
	return v, n, nil
}

func readBytes(data []byte, wireType int) ([]byte, int, error) {
	if wireType != wireBytes {
		return nil, 0, errors.New("pb: unexpected wire type for bytes field")
	}
	l, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, 0, errors.New("pb: malformed length")
	}
	end := n + int(l)
	if end > len(data) {
		return nil, 0, io.ErrUnexpectedEOF
	}
	return data[n:end], end, nil
}

func skipField(data []byte, wireType int) (int, error) {
	switch wireType {
	case wireVarint:
		_, n := binary.Uvarint(data)
		if n <= 0 {
			return 0, errors.New("pb: malformed varint while skipping")
		}
		return n, nil
	case wireBytes:
		l, n := binary.Uvarint(data)
		if n <= 0 {
			return 0, errors.New("pb: malformed length while skipping")
		}
		end := n + int(l)
		if end > len(data) {
			return 0, io.ErrUnexpectedEOF
		}
		return end, nil
	default:
		return 0, errors.New("pb: unsupported wire type")
	}
}

func protoString(m *TableRoot) string {
	return "TableRoot{" + m.Name + "}"
}
