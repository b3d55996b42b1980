package pngicon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/corona10/goimagehash"
	"github.com/k1LoW/errors"
	"github.com/klauspost/compress/zlib"
)

// Report describes a verified icon.
type Report struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Chunks []ChunkEntry `json:"chunks"`
}

type ChunkEntry struct {
	Type   string `json:"type"`
	Length uint32 `json:"length"`
	CRC    uint32 `json:"crc"`
}

// ReadChunks splits a PNG stream into chunks, checking the signature, every length field
// and every stored CRC.
func ReadChunks(b []byte) (_ []*Chunk, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		return nil, ErrInvalidSignature
	}
	var chunks []*Chunk
	rest := b[len(Signature):]
	for len(rest) > 0 {
		if len(rest) < 12 {
			return nil, fmt.Errorf("%w: %d trailing bytes after %d chunks", ErrTruncated, len(rest), len(chunks))
		}
		length := binary.BigEndian.Uint32(rest[0:4])
		if uint64(length) > uint64(len(rest)-12) {
			return nil, fmt.Errorf("%w: chunk %q declares %d bytes, %d available", ErrTruncated, rest[4:8], length, len(rest)-12)
		}
		c := newChunk(string(rest[4:8]), rest[8:8+length])
		stored := binary.BigEndian.Uint32(rest[8+length : 12+length])
		if got := c.CRC(); got != stored {
			return nil, fmt.Errorf("%w: chunk %s stored %08x, computed %08x", ErrChecksumMismatch, c.Type, stored, got)
		}
		chunks = append(chunks, c)
		rest = rest[12+length:]
	}
	return chunks, nil
}

// Verify checks that b is an icon produced by this package.
// When size is not positive the size is taken from the IHDR chunk.
func Verify(b []byte, size int) (_ *Report, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	chunks, err := ReadChunks(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	if err := verifyLayout(chunks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	h, err := parseHeader(chunks[0].Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	if size <= 0 {
		size = int(h.Width)
	}
	if err := validateSize(size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	if want := newHeader(size); *h != *want {
		return nil, fmt.Errorf("%w: header %+v, want %+v", ErrInvalidIcon, *h, *want)
	}
	if err := verifyScanlines(chunks[1].Data, size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	if err := verifyPixels(b, size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	r := &Report{Width: size, Height: size}
	for _, c := range chunks {
		r.Chunks = append(r.Chunks, ChunkEntry{Type: c.Type, Length: c.Length(), CRC: c.CRC()})
	}
	return r, nil
}

func verifyLayout(chunks []*Chunk) error {
	if len(chunks) != 3 {
		types := make([]string, 0, len(chunks))
		for _, c := range chunks {
			types = append(types, c.Type)
		}
		return fmt.Errorf("want chunks [IHDR IDAT IEND], got %v", types)
	}
	for i, typ := range []string{ChunkTypeIHDR, ChunkTypeIDAT, ChunkTypeIEND} {
		if chunks[i].Type != typ {
			return fmt.Errorf("chunk %d is %s, want %s", i, chunks[i].Type, typ)
		}
	}
	if chunks[2].Length() != 0 {
		return fmt.Errorf("IEND payload must be empty, got %d bytes", chunks[2].Length())
	}
	return nil
}

func verifyScanlines(idat []byte, size int) error {
	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return fmt.Errorf("failed to read IDAT: %w", err)
	}
	defer zr.Close()
	stride := 1 + 3*size
	// One byte past the expected length is enough to report an oversized stream.
	raw, err := io.ReadAll(io.LimitReader(zr, int64(size*stride)+1))
	if err != nil {
		return fmt.Errorf("failed to read IDAT: %w", err)
	}
	if len(raw) != size*stride {
		return fmt.Errorf("raw image data is %d bytes, want %d", len(raw), size*stride)
	}
	for y := range size {
		if f := raw[y*stride]; f != filterNone {
			return fmt.Errorf("row %d uses filter %d, want %d", y, f, filterNone)
		}
	}
	return nil
}

func verifyPixels(b []byte, size int) error {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != size || bounds.Dy() != size {
		return fmt.Errorf("decoded image is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), size, size)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA); c != Color {
				return fmt.Errorf("pixel (%d,%d) is %v, want %v", x, y, c, Color)
			}
		}
	}
	return nil
}

// Equivalent reports whether two icons have the same content: identical checksums,
// or the same dimensions and a perceptual hash distance below the threshold.
func Equivalent(a, b []byte) (_ bool, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if crc32.ChecksumIEEE(a) == crc32.ChecksumIEEE(b) {
		return true, nil
	}
	ai, _, err := image.Decode(bytes.NewReader(a))
	if err != nil {
		return false, fmt.Errorf("failed to decode image: %w", err)
	}
	bi, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return false, fmt.Errorf("failed to decode image: %w", err)
	}
	if ai.Bounds().Size() != bi.Bounds().Size() {
		return false, nil
	}
	aHash, err := goimagehash.PerceptionHash(ai)
	if err != nil {
		return false, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	bHash, err := goimagehash.PerceptionHash(bi)
	if err != nil {
		return false, fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	distance, err := aHash.Distance(bHash)
	if err != nil {
		return false, err
	}
	return distance < 5, nil // threshold for similarity
}
