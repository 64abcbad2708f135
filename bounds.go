package scrawl

import (
	"math"

	"github.com/mapscrawl/scrawl/utils"
)

// coordClass is the byte width used for every absolute coordinate of a
// drawing, picked once per encode from the drawing's bounding box.
type coordClass uint8

const (
	coord8  coordClass = iota // 1-byte unsigned, span up to 255
	coord16                   // 2-byte unsigned, span up to 65535
	coord32                   // 4-byte signed, full world range
)

type bounds struct {
	xMin, yMin, xMax, yMax int64
}

// planBounds scans every absolute coordinate the encoder will emit and
// returns the bounding box plus the cheapest lossless coordinate class.
// The scan covers derived points too (circle rim, rect far corner), so
// the chosen class can always represent them. Empty input degenerates
// to a zero box.
func planBounds(shapes []Shape) (bounds, coordClass) {
	var b bounds
	first := true
	visit := func(x, y float64) {
		xi, yi := quantize(x), quantize(y)
		if first {
			b = bounds{xi, yi, xi, yi}
			first = false
			return
		}
		b.xMin = utils.Min(b.xMin, xi)
		b.yMin = utils.Min(b.yMin, yi)
		b.xMax = utils.Max(b.xMax, xi)
		b.yMax = utils.Max(b.yMax, yi)
	}

	for _, s := range shapes {
		walkPoints(s, visit)
	}

	span := utils.Max(utils.Max(b.xMax-b.xMin, b.yMax-b.yMin), 1)
	switch {
	case span <= math.MaxUint8:
		return b, coord8
	case span <= math.MaxUint16:
		return b, coord16
	default:
		return b, coord32
	}
}

// walkPoints feeds every absolute point a shape serializes to the visit
// function, in wire order.
func walkPoints(s Shape, visit func(x, y float64)) {
	pos := s.Pos
	switch s.Type {
	case ShapeCircle:
		if len(pos) < 3 {
			return
		}
		visit(pos[0], pos[1])
		visit(pos[0]+pos[2], pos[1])
	case ShapeRect, ShapeEllipse:
		if len(pos) < 4 {
			return
		}
		visit(pos[0], pos[1])
		visit(pos[0]+pos[2], pos[1]+pos[3])
	default:
		for i := 0; i+1 < len(pos); i += 2 {
			visit(pos[i], pos[i+1])
		}
	}
}

// quantize maps a world coordinate onto the integer grid the format
// stores. Always floor, so encode and decode agree on exact values.
func quantize(v float64) int64 {
	return int64(math.Floor(v))
}
