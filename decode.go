package scrawl

import (
	"encoding/binary"
	"errors"
)

var (
	ErrShortBuffer        = errors.New("scrawl: buffer too short")
	ErrUnsupportedVersion = errors.New("scrawl: unsupported format version")
)

// Decode parses a binary buffer back into a drawing. Buffers shorter
// than the fixed header or declaring an unknown version are rejected
// with a sentinel error. A buffer cut off mid-record is not an error:
// decoding stops at the cut and every shape fully parsed before it is
// returned, together with the global fields already read. Shape
// identifiers are regenerated; they are not part of the wire format.
func Decode(buf []byte) (*Drawing, error) {
	if len(buf) < headerSize {
		return nil, ErrShortBuffer
	}
	flags := buf[0]
	version := int(flags & flagVersionMask)
	if version > formatVersion || flags&flagReserved != 0 {
		return nil, ErrUnsupportedVersion
	}
	cls := coordClass(flags >> flagClassShift & 0x03)
	if cls > coord32 {
		return nil, ErrUnsupportedVersion
	}

	r := &coordReader{buf: buf, off: 1, cls: cls}
	r.scale = int64(r.next())
	if r.scale == 0 {
		r.scale = 1
	}
	r.ox = int64(r.i32())
	r.oy = int64(r.i32())
	nameLen := int(r.next())
	name := r.take(nameLen)
	count := int(r.next())

	d := &Drawing{MapName: string(name)}
	if r.short {
		return d, nil
	}

	styles := r.take((count + 3) / 4)
	if r.short {
		return d, nil
	}
	for i := 0; i < count; i++ {
		style := styles[i/4] >> ((i % 4) * 2) & 0x03
		s, ok := decodeShape(r, version, style)
		if !ok {
			break
		}
		d.Shapes = append(d.Shapes, s)
	}
	return d, nil
}

// coordReader consumes the buffer sequentially. Running past the end
// sets short and makes every further read yield zero values, so a
// truncated record is detected once, after the fact, and discarded
// whole.
type coordReader struct {
	buf    []byte
	off    int
	short  bool
	cls    coordClass
	scale  int64
	ox, oy int64
}

func (r *coordReader) next() byte {
	if r.off >= len(r.buf) {
		r.short = true
		return 0
	}
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *coordReader) take(n int) []byte {
	if r.off+n > len(r.buf) {
		r.short = true
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *coordReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *coordReader) i16() int16 {
	return int16(r.u16())
}

func (r *coordReader) i32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// raw reads one origin-relative quantized coordinate.
func (r *coordReader) raw() int64 {
	switch r.cls {
	case coord8:
		return int64(r.next())
	case coord16:
		return int64(r.u16())
	default:
		return int64(r.i32())
	}
}

func (r *coordReader) coordX() float64 {
	return float64(r.raw()*r.scale + r.ox)
}

func (r *coordReader) coordY() float64 {
	return float64(r.raw()*r.scale + r.oy)
}

// points reads n absolute coordinate pairs. The slice always has length
// 2n even on truncation, so callers can index before checking short.
func (r *coordReader) points(n int) []float64 {
	pos := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		pos[2*i] = r.coordX()
		pos[2*i+1] = r.coordY()
	}
	return pos
}

func decodeShape(r *coordReader, version int, style byte) (Shape, bool) {
	head := r.next()
	typ := ShapeType(head >> 4)
	if r.short || typ >= numShapeTypes {
		return Shape{}, false
	}
	colorIdx := head >> 1 & 0x07
	s := Shape{
		ID:     newShapeID(),
		Type:   typ,
		Filled: head&1 != 0,
	}
	if s.Filled {
		s.FillAlpha = DefaultFillAlpha
	}
	if colorIdx == paletteEscape {
		if r.next() == 1 {
			rgb := r.take(3)
			if r.short {
				return Shape{}, false
			}
			s.Color = hexColor(rgb[0], rgb[1], rgb[2])
		} else {
			s.Color = DefaultColor
		}
	} else {
		s.Color = Palette[colorIdx]
	}
	if typ == ShapeText {
		s.FontSize = FontSizes[style]
	} else {
		s.StrokeWidth = StrokeWidths[style]
	}

	switch typ {
	case ShapePoint:
		s.Pos = r.points(1)
	case ShapeCircle:
		s.Pos = r.points(1)
		s.Pos = append(s.Pos, r.coordX()-s.Pos[0])
	case ShapeLine, ShapeArrowLine:
		s.Pos = r.points(2)
	case ShapeRect, ShapeEllipse:
		s.Pos = r.points(1)
		s.Pos = append(s.Pos, r.coordX()-s.Pos[0])
		s.Pos = append(s.Pos, r.coordY()-s.Pos[1])
	case ShapePath, ShapeClosedPath, ShapePolygon:
		s.Pos = decodePolyline(r, version)
	case ShapeText:
		s.Pos = r.points(1)
		s.Text = string(r.take(int(r.next())))
	}
	if r.short {
		return Shape{}, false
	}
	return s, true
}

// decodePolyline reads the vertex list framing, which is the only part
// of the format that changed between versions: version 0 packs the wide
// flag and a 7-bit vertex count into a single byte, version 1 spends a
// flag byte plus a 2-byte little-endian count.
func decodePolyline(r *coordReader, version int) []float64 {
	var wide bool
	var n int
	if version == 0 {
		b := r.next()
		wide = b&0x80 != 0
		n = int(b & 0x7f)
	} else {
		wide = r.next()&1 != 0
		n = int(r.u16())
	}
	if n == 0 || r.short {
		return nil
	}

	pos := make([]float64, 0, 2*n)
	qx, qy := r.raw(), r.raw()
	pos = append(pos, float64(qx*r.scale+r.ox), float64(qy*r.scale+r.oy))
	for i := 1; i < n; i++ {
		var dx, dy int64
		if wide {
			dx, dy = int64(r.i16()), int64(r.i16())
		} else {
			dx, dy = int64(int8(r.next())), int64(int8(r.next()))
		}
		qx += dx
		qy += dy
		pos = append(pos, float64(qx*r.scale+r.ox), float64(qy*r.scale+r.oy))
	}
	return pos
}
