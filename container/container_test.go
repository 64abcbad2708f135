package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mapscrawl/scrawl"
	"golang.org/x/image/riff"
)

func TestContainer_EmbedExtractTransparency(t *testing.T) {
	drawing := []byte{0x11, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	file, err := Embed(drawing, "regular-main-branch", nil)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	got, name, err := Extract(file)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !bytes.Equal(got, drawing) {
		t.Errorf("extracted buffer differs from the embedded one")
	}
	if name != "regular-main-branch" {
		t.Errorf("map name = %q, want %q", name, "regular-main-branch")
	}
}

func TestContainer_FileIsWellFormedRIFF(t *testing.T) {
	file, err := Embed([]byte{1, 2, 3}, "m", nil)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if !bytes.HasPrefix(file, []byte("RIFF")) {
		t.Fatalf("file should start with the RIFF tag")
	}
	if string(file[8:12]) != "WEBP" {
		t.Fatalf("form type = %q, want WEBP", file[8:12])
	}
	size := binary.LittleEndian.Uint32(file[4:8])
	if int(size) != len(file)-8 {
		t.Errorf("RIFF size field = %d, want %d", size, len(file)-8)
	}
	if len(file)%2 != 0 {
		t.Errorf("a RIFF file is always even-sized, got %d bytes", len(file))
	}
}

func TestContainer_OddPayloadIsPadded(t *testing.T) {
	odd := []byte{1, 2, 3, 4, 5}
	file, err := Embed(odd, "x", nil)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	got, name, err := Extract(file)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !bytes.Equal(got, odd) {
		t.Errorf("padding must not leak into the payload, got %v", got)
	}
	if name != "x" {
		t.Errorf("map name = %q, want %q", name, "x")
	}
}

func TestContainer_ReEmbedStripsPreviousDrawing(t *testing.T) {
	first, err := Embed([]byte{0xaa, 0xbb}, "old", nil)
	if err != nil {
		t.Fatalf("first embed failed: %v", err)
	}
	second, err := Embed([]byte{0xcc, 0xdd, 0xee}, "new", first)
	if err != nil {
		t.Fatalf("second embed failed: %v", err)
	}

	got, name, err := Extract(second)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0xcc, 0xdd, 0xee}) || name != "new" {
		t.Errorf("got %v %q, want the second drawing", got, name)
	}

	chunks, err := readChunks(second)
	if err != nil {
		t.Fatalf("reading chunks back failed: %v", err)
	}
	var drawings, pixels int
	for _, c := range chunks {
		switch c.id {
		case fccNOIT:
			drawings++
		case fccVP8:
			pixels++
		}
	}
	if drawings != 1 {
		t.Errorf("re-embedding should leave exactly one drawing chunk, got %d", drawings)
	}
	if pixels != 1 {
		t.Errorf("the base pixel chunk should be preserved, got %d", pixels)
	}
}

func TestContainer_ForeignChunksAreKept(t *testing.T) {
	base := buildWebP(chunk{riffTag("EXIF"), []byte{9, 9, 9}})
	file, err := Embed([]byte{1}, "m", base)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	chunks, err := readChunks(file)
	if err != nil {
		t.Fatalf("reading chunks back failed: %v", err)
	}
	found := false
	for _, c := range chunks {
		if c.id == riffTag("EXIF") && bytes.Equal(c.data, []byte{9, 9, 9}) {
			found = true
		}
	}
	if !found {
		t.Errorf("the base file's foreign chunks should survive the embed")
	}
}

func TestContainer_MissingDrawingReportsNoDrawing(t *testing.T) {
	plain := buildWebP()
	if _, _, err := Extract(plain); !errors.Is(err, ErrNoDrawing) {
		t.Errorf("a plain image should report ErrNoDrawing, got %v", err)
	}
}

func TestContainer_NonWebPInputs(t *testing.T) {
	if _, _, err := Extract([]byte("not an image at all")); !errors.Is(err, ErrNotWebP) {
		t.Errorf("garbage should report ErrNotWebP, got %v", err)
	}

	avi := buildWebP()
	copy(avi[8:12], "AVI ")
	if _, _, err := Extract(avi); !errors.Is(err, ErrNotWebP) {
		t.Errorf("a foreign RIFF form should report ErrNotWebP, got %v", err)
	}

	if _, err := Embed([]byte{1}, "m", []byte("bogus base")); !errors.Is(err, ErrNotWebP) {
		t.Errorf("a bogus base image should report ErrNotWebP, got %v", err)
	}
}

func TestContainer_EncodedDrawingTransparency(t *testing.T) {
	d := &scrawl.Drawing{
		MapName: "regular-main-branch",
		Shapes: []scrawl.Shape{
			{Type: scrawl.ShapePoint, Pos: []float64{100, 200}, Color: "#ffffff"},
			{Type: scrawl.ShapeRect, Pos: []float64{0, 0, 50, 50}, Color: "#ef4444", Filled: true},
		},
	}
	buf, err := scrawl.Encode(d)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	file, err := Embed(buf, d.MapName, nil)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	got, _, err := Extract(file)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Errorf("the chunk path must be byte-transparent")
	}
	back, err := scrawl.Decode(got)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(back.Shapes) != 2 {
		t.Errorf("shape count = %d, want 2", len(back.Shapes))
	}
}

func riffTag(s string) riff.FourCC {
	var t riff.FourCC
	copy(t[:], s)
	return t
}

// buildWebP assembles a syntactically valid WebP from the built-in pixel
// chunk plus any extra chunks.
func buildWebP(extra ...chunk) []byte {
	chunks := append([]chunk{{fccVP8, pixelChunk}}, extra...)
	size := 4
	for _, c := range chunks {
		size += chunkHeaderSize + len(c.data) + len(c.data)&1
	}
	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	writeU32(buf, uint32(size))
	buf.WriteString("WEBP")
	for _, c := range chunks {
		buf.Write(c.id[:])
		writeU32(buf, uint32(len(c.data)))
		buf.Write(c.data)
		if len(c.data)&1 == 1 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}
