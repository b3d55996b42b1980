package pngicon

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	ChunkTypeIHDR = "IHDR"
	ChunkTypeIDAT = "IDAT"
	ChunkTypeIEND = "IEND"
)

const (
	headerLength = 13
	maxDimension = 1<<31 - 1
)

const (
	bitDepth8          uint8 = 8
	colorTypeTrueColor uint8 = 2
	filterNone         uint8 = 0
)

// Signature is the 8-byte magic sequence every PNG stream starts with.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Chunk is a single PNG chunk. Length and CRC are always derived from Type and Data.
type Chunk struct {
	Type string
	Data []byte
}

func newChunk(typ string, data []byte) *Chunk {
	return &Chunk{Type: typ, Data: data}
}

func (c *Chunk) Length() uint32 {
	return uint32(len(c.Data))
}

// CRC returns the CRC-32 (IEEE) of the chunk type followed by its payload.
func (c *Chunk) CRC() uint32 {
	h := crc32.NewIEEE()
	_, _ = h.Write([]byte(c.Type))
	_, _ = h.Write(c.Data)
	return h.Sum32()
}

// Bytes serializes the chunk as length + type + payload + crc.
func (c *Chunk) Bytes() []byte {
	b := make([]byte, 0, 12+len(c.Data))
	b = binary.BigEndian.AppendUint32(b, c.Length())
	b = append(b, c.Type...)
	b = append(b, c.Data...)
	b = binary.BigEndian.AppendUint32(b, c.CRC())
	return b
}

func (c *Chunk) String() string {
	return fmt.Sprintf("%s(length=%d crc=%08x)", c.Type, c.Length(), c.CRC())
}

// Header is the IHDR payload.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

func newHeader(size int) *Header {
	return &Header{
		Width:     uint32(size),
		Height:    uint32(size),
		BitDepth:  bitDepth8,
		ColorType: colorTypeTrueColor,
	}
}

func (h *Header) Bytes() []byte {
	b := make([]byte, 0, headerLength)
	b = binary.BigEndian.AppendUint32(b, h.Width)
	b = binary.BigEndian.AppendUint32(b, h.Height)
	return append(b, h.BitDepth, h.ColorType, h.CompressionMethod, h.FilterMethod, h.InterlaceMethod)
}

func (h *Header) Chunk() *Chunk {
	return newChunk(ChunkTypeIHDR, h.Bytes())
}

func parseHeader(b []byte) (*Header, error) {
	if len(b) != headerLength {
		return nil, fmt.Errorf("IHDR payload must be %d bytes, got %d", headerLength, len(b))
	}
	return &Header{
		Width:             binary.BigEndian.Uint32(b[0:4]),
		Height:            binary.BigEndian.Uint32(b[4:8]),
		BitDepth:          b[8],
		ColorType:         b[9],
		CompressionMethod: b[10],
		FilterMethod:      b[11],
		InterlaceMethod:   b[12],
	}, nil
}
