package pngicon

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/k1LoW/errors"
	"github.com/klauspost/compress/zlib"
)

// Color is the fill color of every generated icon (Material Green 500).
var Color = color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}

type Encoder struct {
	level  int
	logger *slog.Logger
}

type Option func(*Encoder) error

// WithCompressionLevel sets the zlib level of the IDAT stream.
// The level only changes the output size, never the decoded pixels.
func WithCompressionLevel(level int) Option {
	return func(e *Encoder) error {
		if level < zlib.HuffmanOnly || level > zlib.BestCompression {
			return fmt.Errorf("invalid compression level: %d, must be between %d and %d", level, zlib.HuffmanOnly, zlib.BestCompression)
		}
		e.level = level
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// New creates a new Encoder.
func New(opts ...Option) (_ *Encoder, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	e := &Encoder{
		level:  zlib.DefaultCompression,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Encode encodes a size x size solid color icon using the default compression level.
func Encode(size int) ([]byte, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	return e.Encode(size)
}

// EncodeIcon encodes a size x size solid color icon and writes it to path.
func EncodeIcon(size int, path string) error {
	e, err := New()
	if err != nil {
		return err
	}
	return e.EncodeIcon(size, path)
}

// Encode returns the complete PNG byte stream of a size x size icon.
func (e *Encoder) Encode(size int) (_ []byte, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if err := validateSize(size); err != nil {
		return nil, err
	}
	idat, err := e.compress(scanlines(size))
	if err != nil {
		return nil, err
	}
	chunks := []*Chunk{
		newHeader(size).Chunk(),
		newChunk(ChunkTypeIDAT, idat),
		newChunk(ChunkTypeIEND, nil),
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(Signature)+12*len(chunks)+headerLength+len(idat)))
	buf.Write(Signature[:])
	for _, c := range chunks {
		buf.Write(c.Bytes())
	}
	return buf.Bytes(), nil
}

// EncodeIcon writes a size x size icon to path, replacing any existing file.
// Parent directories are not created.
func (e *Encoder) EncodeIcon(size int, path string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	_, err = e.writeIcon(size, path)
	return err
}

// writeIcon encodes and writes the icon, returning the number of bytes written.
func (e *Encoder) writeIcon(size int, path string) (int, error) {
	b, err := e.Encode(size)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrWriteIcon, path, err)
	}
	e.logger.Debug("wrote icon", slog.String("path", path), slog.Int("size", size), slog.Int("bytes", len(b)))
	return len(b), nil
}

func (e *Encoder) compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, e.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress scanlines: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress scanlines: %w", err)
	}
	return buf.Bytes(), nil
}

func validateSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d, must be positive", ErrInvalidSize, size)
	}
	if size > maxDimension || size > (math.MaxInt-1)/3 || size > math.MaxInt/(1+3*size) {
		return fmt.Errorf("%w: %d, too large", ErrInvalidSize, size)
	}
	return nil
}

// scanlines returns the raw (unfiltered) image data: every row is a filter byte
// followed by size RGB triples of Color.
func scanlines(size int) []byte {
	stride := 1 + 3*size
	raw := make([]byte, size*stride)
	for y := range size {
		row := raw[y*stride : (y+1)*stride]
		row[0] = filterNone
		for x := range size {
			p := row[1+3*x:]
			p[0], p[1], p[2] = Color.R, Color.G, Color.B
		}
	}
	return raw
}
