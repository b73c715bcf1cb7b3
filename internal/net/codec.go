package net

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/witherbar/server/internal/net/packet"
)

// MaxFrameSize is the largest payload accepted from a client: the biggest
// length a 3-byte VarInt can express.
const MaxFrameSize = 2097151

// ReadFrame reads one uncompressed protocol 47 frame from r.
// Wire format: [VarInt: payload length][payload = VarInt packet ID + fields].
func ReadFrame(r io.ByteReader) ([]byte, error) {
	length, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	if length <= 0 || length > MaxFrameSize {
		return nil, fmt.Errorf("invalid frame length: %d", length)
	}

	payload := make([]byte, length)
	for i := range payload {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read frame payload (%d bytes): %w", length, err)
		}
		payload[i] = b
	}
	return payload, nil
}

// WriteFrame writes one frame to w as a single Write call.
func WriteFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 0, packet.VarIntSize(int32(len(data)))+len(data))
	var lenBuf [5]byte
	n := packet.PutVarInt(lenBuf[:], int32(len(data)))
	buf = append(buf, lenBuf[:n]...)
	buf = append(buf, data...)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func readVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, packet.ErrVarIntTooLong
}

// newFrameReader wraps a connection so ReadFrame does not issue one syscall
// per byte.
func newFrameReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, 4096)
}

// EncodeCompressed wraps a packet in the body of a compressed-format frame:
// [VarInt: uncompressed length, 0 if sent raw][packet, zlib-deflated when
// it is at least threshold bytes].
func EncodeCompressed(data []byte, threshold int) ([]byte, error) {
	var lenBuf [5]byte
	if len(data) < threshold {
		n := packet.PutVarInt(lenBuf[:], 0)
		return append(lenBuf[:n:n], data...), nil
	}

	n := packet.PutVarInt(lenBuf[:], int32(len(data)))
	var body bytes.Buffer
	body.Write(lenBuf[:n])
	zw := zlib.NewWriter(&body)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate packet: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate packet: %w", err)
	}
	return body.Bytes(), nil
}

// DecodeCompressed unwraps the body of a compressed-format frame. A deflated
// packet must declare at least threshold bytes and inflate to exactly the
// declared length.
func DecodeCompressed(body []byte, threshold int) ([]byte, error) {
	br := bytes.NewReader(body)
	dataLen, err := readVarInt(br)
	if err != nil {
		return nil, fmt.Errorf("read data length: %w", err)
	}
	rest := body[len(body)-br.Len():]
	if dataLen == 0 {
		return rest, nil
	}
	if dataLen < int32(threshold) || dataLen > MaxFrameSize {
		return nil, fmt.Errorf("invalid data length: %d", dataLen)
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("inflate packet: %w", err)
	}
	defer zr.Close()

	data := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, data); err != nil {
		return nil, fmt.Errorf("inflate packet (%d bytes): %w", dataLen, err)
	}
	if n, _ := zr.Read(make([]byte, 1)); n != 0 {
		return nil, fmt.Errorf("inflated packet exceeds %d bytes", dataLen)
	}
	return data, nil
}
