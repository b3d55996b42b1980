package pngicon

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
)

func TestReadChunks(t *testing.T) {
	b, err := Encode(16)
	if err != nil {
		t.Fatal(err)
	}
	flipped := bytes.Clone(b)
	flipped[len(flipped)-13] ^= 0xff // last byte of the IDAT crc
	overstated := bytes.Clone(b)
	overstated[8] = 0x7f // IHDR length

	tests := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{"valid", b, nil},
		{"empty", nil, ErrInvalidSignature},
		{"not png", []byte("GIF89a........"), ErrInvalidSignature},
		{"signature only", Signature[:], nil},
		{"truncated", b[:len(b)-3], ErrTruncated},
		{"corrupted crc", flipped, ErrChecksumMismatch},
		{"overstated length", overstated, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadChunks(tt.in)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ReadChunks() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadChunks() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	b, err := Encode(16)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Verify(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Width != 16 || r.Height != 16 {
		t.Errorf("got %dx%d, want 16x16", r.Width, r.Height)
	}
	var types []string
	for _, c := range r.Chunks {
		types = append(types, c.Type)
	}
	if diff := cmp.Diff([]string{"IHDR", "IDAT", "IEND"}, types); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
	if r.Chunks[0].Length != 13 || r.Chunks[2].Length != 0 || r.Chunks[2].CRC != 0xae426082 {
		t.Errorf("unexpected chunk table: %+v", r.Chunks)
	}

	if _, err := Verify(b, 32); !errors.Is(err, ErrInvalidIcon) {
		t.Errorf("Verify(b, 32) error = %v, want ErrInvalidIcon", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	b, err := Encode(4)
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := ReadChunks(b)
	if err != nil {
		t.Fatal(err)
	}
	ihdr, idat, iend := chunks[0], chunks[1], chunks[2]

	tests := []struct {
		name   string
		chunks []*Chunk
		want   string
	}{
		{
			"extra chunk",
			[]*Chunk{ihdr, idat, newChunk("tEXt", []byte("Comment\x00green")), iend},
			"want chunks [IHDR IDAT IEND]",
		},
		{
			"missing IEND",
			[]*Chunk{ihdr, idat, newChunk(ChunkTypeIDAT, nil)},
			"chunk 2 is IDAT, want IEND",
		},
		{
			"non-empty IEND",
			[]*Chunk{ihdr, idat, newChunk(ChunkTypeIEND, []byte{0})},
			"IEND payload must be empty",
		},
		{
			"rgba header",
			[]*Chunk{newChunk(ChunkTypeIHDR, append(ihdr.Data[:9:9], 6, 0, 0, 0)), idat, iend},
			"header",
		},
		{
			"filtered scanlines",
			[]*Chunk{ihdr, newChunk(ChunkTypeIDAT, compressRows(t, 4, 1, Color.R, Color.G, Color.B)), iend},
			"row 0 uses filter 1",
		},
		{
			"oversized scanlines",
			[]*Chunk{ihdr, newChunk(ChunkTypeIDAT, compressRows(t, 64, 0, Color.R, Color.G, Color.B)), iend},
			"raw image data is 53 bytes, want 52",
		},
		{
			"wrong color",
			[]*Chunk{ihdr, newChunk(ChunkTypeIDAT, compressRows(t, 4, 0, 0xff, 0x00, 0x00)), iend},
			"pixel (0,0)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bytes.NewBuffer(bytes.Clone(Signature[:]))
			for _, c := range tt.chunks {
				in.Write(c.Bytes())
			}
			_, err := Verify(in.Bytes(), 4)
			if !errors.Is(err, ErrInvalidIcon) {
				t.Fatalf("Verify() error = %v, want ErrInvalidIcon", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestEquivalent(t *testing.T) {
	fast, err := New(WithCompressionLevel(zlib.BestSpeed))
	if err != nil {
		t.Fatal(err)
	}
	best, err := New(WithCompressionLevel(zlib.BestCompression))
	if err != nil {
		t.Fatal(err)
	}
	a, err := fast.Encode(128)
	if err != nil {
		t.Fatal(err)
	}
	b, err := best.Encode(128)
	if err != nil {
		t.Fatal(err)
	}
	c, err := best.Encode(48)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		a, b    []byte
		want    bool
		wantErr bool
	}{
		{"same bytes", a, a, true, false},
		{"different compression level", a, b, true, false},
		{"different size", a, c, false, false},
		{"broken", a, []byte("broken"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equivalent(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Equivalent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Equivalent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReference(t *testing.T) {
	globalCache = &cache{}
	t.Cleanup(func() { globalCache = &cache{} })

	e, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loadReferenceCache(32, zlib.DefaultCompression); ok {
		t.Fatal("cache should be empty")
	}
	b, err := e.Reference(32)
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := loadReferenceCache(32, zlib.DefaultCompression)
	if !ok {
		t.Fatal("reference was not cached")
	}
	if !bytes.Equal(b, cached) {
		t.Error("cached reference differs")
	}
	if _, err := e.Reference(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Reference(-1) error = %v, want ErrInvalidSize", err)
	}
}

func compressRows(t *testing.T, size int, filter, r, g, b byte) []byte {
	t.Helper()
	row := []byte{filter}
	for range size {
		row = append(row, r, g, b)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(bytes.Repeat(row, size)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
