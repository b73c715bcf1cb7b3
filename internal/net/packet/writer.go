package packet

import (
	"encoding/binary"
	"math"
)

// Writer builds a protocol 47 packet body: VarInt packet ID followed by the
// fields. All fixed-size numbers are big-endian; strings are VarInt-length
// prefixed UTF-8.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func NewWriterWithID(id int32) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteVarInt(id)
	return w
}

// WriteVarInt writes a 1-5 byte variable-length int32.
func (w *Writer) WriteVarInt(v int32) {
	var b [5]byte
	n := PutVarInt(b[:], v)
	w.buf = append(w.buf, b[:n]...)
}

// WriteVarLong writes a 1-10 byte variable-length int64.
func (w *Writer) WriteVarLong(v int64) {
	u := uint64(v)
	for u&^0x7F != 0 {
		w.buf = append(w.buf, byte(u&0x7F)|0x80)
		u >>= 7
	}
	w.buf = append(w.buf, byte(u))
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteInt8(v int8) {
	w.buf = append(w.buf, byte(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) WriteInt16(v int16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString writes a VarInt byte length followed by the raw UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WritePosition packs a block position into one int64 (26/12/26 bits).
func (w *Writer) WritePosition(x, y, z int32) {
	v := (int64(x&0x3FFFFFF) << 38) | (int64(y&0xFFF) << 26) | int64(z&0x3FFFFFF)
	w.WriteInt64(v)
}

// WriteAngle writes a rotation in degrees as a 1/256th-of-a-turn step.
func (w *Writer) WriteAngle(deg float32) {
	w.buf = append(w.buf, byte(int32(deg*256/360)))
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the packet body (ID + fields), without the frame length.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current body length.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutVarInt encodes v into buf and returns the number of bytes used.
// buf must hold at least 5 bytes.
func PutVarInt(buf []byte, v int32) int {
	u := uint32(v)
	n := 0
	for u&^0x7F != 0 {
		buf[n] = byte(u&0x7F) | 0x80
		n++
		u >>= 7
	}
	buf[n] = byte(u)
	return n + 1
}

// VarIntSize returns the encoded size of v.
func VarIntSize(v int32) int {
	u := uint32(v)
	size := 1
	for u&^0x7F != 0 {
		size++
		u >>= 7
	}
	return size
}
