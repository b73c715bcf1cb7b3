package packet

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortPacket is reported by Reader.Err after any read ran past the end of
// the payload.
var ErrShortPacket = errors.New("packet: read past end of payload")

// ErrVarIntTooLong is reported when a VarInt does not terminate in 5 bytes.
var ErrVarIntTooLong = errors.New("packet: varint too long")

// Reader reads protocol 47 fields from a frame payload. The leading VarInt
// packet ID is consumed by NewReader.
//
// Like the field readers of most packet libraries, a short read yields the
// zero value; the first failure is kept and surfaced by Err.
type Reader struct {
	data []byte
	off  int
	id   int32
	err  error
}

func NewReader(data []byte) *Reader {
	r := &Reader{data: data}
	r.id = r.ReadVarInt()
	return r
}

// ID returns the packet ID read from the front of the payload.
func (r *Reader) ID() int32 {
	return r.id
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.off = len(r.data)
		r.fail(ErrShortPacket)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadVarInt reads a variable-length int32.
func (r *Reader) ReadVarInt() int32 {
	var result uint32
	for i := 0; i < 5; i++ {
		b := r.take(1)
		if b == nil {
			return 0
		}
		result |= uint32(b[0]&0x7F) << (7 * i)
		if b[0]&0x80 == 0 {
			return int32(result)
		}
	}
	r.fail(ErrVarIntTooLong)
	return 0
}

// ReadVarLong reads a variable-length int64.
func (r *Reader) ReadVarLong() int64 {
	var result uint64
	for i := 0; i < 10; i++ {
		b := r.take(1)
		if b == nil {
			return 0
		}
		result |= uint64(b[0]&0x7F) << (7 * i)
		if b[0]&0x80 == 0 {
			return int64(result)
		}
	}
	r.fail(ErrVarIntTooLong)
	return 0
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadInt16() int16 {
	return int16(r.ReadUint16())
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *Reader) ReadInt32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *Reader) ReadInt64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(uint32(r.ReadInt32()))
}

func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(uint64(r.ReadInt64()))
}

// ReadString reads a length-prefixed UTF-8 string of at most maxBytes bytes.
func (r *Reader) ReadString(maxBytes int) string {
	n := int(r.ReadVarInt())
	if n > maxBytes {
		r.fail(errors.New("packet: string longer than allowed"))
		r.off = len(r.data)
		return ""
	}
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadMetadata decodes an entity metadata list up to its 0x7F terminator.
// Only the scalar types are supported; anything else stops decoding with an
// error.
func (r *Reader) ReadMetadata() *Metadata {
	m := NewMetadata()
	for {
		header := r.ReadUint8()
		if r.err != nil || header == metadataEnd {
			return m
		}
		index := header & 0x1F
		switch MetaType(header >> 5) {
		case MetaByte:
			m.SetByte(index, r.ReadUint8())
		case MetaShort:
			m.SetShort(index, r.ReadInt16())
		case MetaInt:
			m.SetInt(index, r.ReadInt32())
		case MetaFloat:
			m.SetFloat(index, r.ReadFloat32())
		case MetaString:
			m.SetString(index, r.ReadString(maxStringBytes))
		default:
			r.fail(errors.New("packet: unsupported metadata type"))
			return m
		}
	}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
