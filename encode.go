package scrawl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

// Wire layout constants. The flags byte holds the format version in its
// low three bits, a reserved bit and the coordinate class in bits 4-5.
const (
	formatVersion = 1
	headerSize    = 12

	flagVersionMask = 0x07
	flagReserved    = 0x08
	flagClassShift  = 4
)

var (
	ErrEmptyDrawing   = errors.New("scrawl: drawing has no shapes")
	ErrTooManyShapes  = errors.New("scrawl: drawing exceeds 255 shapes")
	ErrMapNameTooLong = errors.New("scrawl: map name exceeds 255 bytes")
)

// Encode serializes a drawing into the compact binary form. The result
// is byte-exact for geometry and color; stroke widths and font sizes are
// quantized to the nearest table entry. Drawings with no shapes, more
// than 255 shapes or an over-long map name are rejected with a sentinel
// error so the caller can fall back to the JSON interchange path.
func Encode(d *Drawing) ([]byte, error) {
	n := len(d.Shapes)
	if n == 0 {
		return nil, ErrEmptyDrawing
	}
	if n > MaxShapes {
		return nil, ErrTooManyShapes
	}
	name := []byte(d.MapName)
	if len(name) > MaxNameBytes {
		return nil, ErrMapNameTooLong
	}

	box, cls := planBounds(d.Shapes)

	buf := new(bytes.Buffer)
	buf.WriteByte(byte(formatVersion) | byte(cls)<<flagClassShift)
	buf.WriteByte(1) // scale, reserved for future lossy variants
	writeI32(buf, int32(box.xMin))
	writeI32(buf, int32(box.yMin))
	buf.WriteByte(byte(len(name)))
	buf.Write(name)
	buf.WriteByte(byte(n))

	// Style table: 2 bits per shape, four shapes per byte, low bits
	// first. A text shape's slot holds its font-size index, any other
	// shape's slot its stroke-width index.
	var packed byte
	for i, s := range d.Shapes {
		packed |= byte(styleIndex(s, d.DefaultStroke)) << ((i % 4) * 2)
		if i%4 == 3 {
			buf.WriteByte(packed)
			packed = 0
		}
	}
	if n%4 != 0 {
		buf.WriteByte(packed)
	}

	w := &coordWriter{buf: buf, cls: cls, ox: box.xMin, oy: box.yMin}
	for _, s := range d.Shapes {
		encodeShape(w, s)
	}
	return buf.Bytes(), nil
}

// styleIndex picks the 2-bit style table slot value for a shape.
func styleIndex(s Shape, defaultStroke float64) int {
	if s.Type == ShapeText {
		size := s.FontSize
		if size <= 0 {
			size = FontSizes[1]
		}
		return nearestIndex(FontSizes, size)
	}
	width := s.StrokeWidth
	if width <= 0 {
		width = defaultStroke
	}
	if width <= 0 {
		width = StrokeWidths[0]
	}
	return nearestIndex(StrokeWidths, width)
}

// coordWriter emits absolute coordinates relative to the drawing origin
// using the planned coordinate class.
type coordWriter struct {
	buf    *bytes.Buffer
	cls    coordClass
	ox, oy int64
}

func (w *coordWriter) xy(x, y float64) {
	w.coord(x, w.ox)
	w.coord(y, w.oy)
}

func (w *coordWriter) coord(v float64, origin int64) {
	q := quantize(v) - origin
	switch w.cls {
	case coord8:
		w.buf.WriteByte(byte(q))
	case coord16:
		writeU16(w.buf, uint16(q))
	default:
		writeI32(w.buf, int32(q))
	}
}

func encodeShape(w *coordWriter, s Shape) {
	ci := paletteIndex(s.Color)
	head := byte(s.Type)<<4 | byte(ci)<<1
	if s.Filled {
		head |= 1
	}
	w.buf.WriteByte(head)
	if ci == paletteEscape {
		if r, g, b, ok := parseHexColor(s.Color); ok {
			w.buf.WriteByte(1)
			w.buf.Write([]byte{r, g, b})
		} else {
			w.buf.WriteByte(0)
		}
	}

	switch s.Type {
	case ShapePoint:
		w.xy(s.Pos[0], s.Pos[1])
	case ShapeCircle:
		w.xy(s.Pos[0], s.Pos[1])
		// The rim point cx+r is stored absolute; the decoder recovers
		// the radius by subtraction.
		w.coord(s.Pos[0]+s.Pos[2], w.ox)
	case ShapeLine, ShapeArrowLine:
		w.xy(s.Pos[0], s.Pos[1])
		w.xy(s.Pos[2], s.Pos[3])
	case ShapeRect, ShapeEllipse:
		w.xy(s.Pos[0], s.Pos[1])
		w.coord(s.Pos[0]+s.Pos[2], w.ox)
		w.coord(s.Pos[1]+s.Pos[3], w.oy)
	case ShapePath, ShapeClosedPath, ShapePolygon:
		encodePolyline(w, s.Pos)
	case ShapeText:
		w.xy(s.Pos[0], s.Pos[1])
		label := truncateUTF8([]byte(s.Text), MaxTextBytes)
		w.buf.WriteByte(byte(len(label)))
		w.buf.Write(label)
	}
}

// encodePolyline stores the first vertex absolute and every following
// vertex as a signed delta from its predecessor. Hand-drawn paths move
// in small steps, so deltas almost always fit one byte; a single scan
// decides whether the whole shape needs the 2-byte form.
func encodePolyline(w *coordWriter, pos []float64) {
	n := len(pos) / 2
	xs := make([]int64, n)
	ys := make([]int64, n)
	for i := 0; i < n; i++ {
		xs[i] = quantize(pos[2*i])
		ys[i] = quantize(pos[2*i+1])
	}

	wide := false
	for i := 1; i < n; i++ {
		dx, dy := xs[i]-xs[i-1], ys[i]-ys[i-1]
		if dx < math.MinInt8 || dx > math.MaxInt8 || dy < math.MinInt8 || dy > math.MaxInt8 {
			wide = true
			break
		}
	}

	var flag byte
	if wide {
		flag = 1
	}
	w.buf.WriteByte(flag)
	writeU16(w.buf, uint16(n))
	if n == 0 {
		return
	}
	w.xy(pos[0], pos[1])
	for i := 1; i < n; i++ {
		dx, dy := xs[i]-xs[i-1], ys[i]-ys[i-1]
		if wide {
			writeU16(w.buf, uint16(int16(dx)))
			writeU16(w.buf, uint16(int16(dy)))
		} else {
			w.buf.WriteByte(byte(int8(dx)))
			w.buf.WriteByte(byte(int8(dy)))
		}
	}
}

// truncateUTF8 cuts b to at most limit bytes, backing off to a rune
// boundary so the stored bytes stay valid UTF-8.
func truncateUTF8(b []byte, limit int) []byte {
	if len(b) <= limit {
		return b
	}
	b = b[:limit]
	for len(b) > 0 && !utf8.Valid(b) {
		b = b[:len(b)-1]
	}
	return b
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var t [2]byte
	binary.LittleEndian.PutUint16(t[:], v)
	buf.Write(t[:])
}

func writeI32(buf *bytes.Buffer, v int32) {
	var t [4]byte
	binary.LittleEndian.PutUint32(t[:], uint32(v))
	buf.Write(t[:])
}
