package scrawl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mapscrawl/scrawl/utils"
)

// ShapeType identifies one drawable primitive kind. The numeric values
// are the 4-bit codes written on the wire and must never be reordered.
type ShapeType uint8

const (
	ShapePoint ShapeType = iota
	ShapeCircle
	ShapeLine
	ShapeArrowLine
	ShapeRect
	ShapeEllipse
	ShapePath
	ShapeClosedPath
	ShapePolygon
	ShapeText

	numShapeTypes
)

var shapeNames = [numShapeTypes]string{
	"point", "circle", "line", "arrow_line", "rect",
	"ellipse", "path", "closed_path", "polygon", "text",
}

// String returns the interchange name of the shape type.
func (t ShapeType) String() string {
	if t < numShapeTypes {
		return shapeNames[t]
	}
	return fmt.Sprintf("shape(%d)", uint8(t))
}

// ParseShapeType resolves an interchange name back to its type code.
func ParseShapeType(name string) (ShapeType, error) {
	for i, n := range shapeNames {
		if n == name {
			return ShapeType(i), nil
		}
	}
	return 0, fmt.Errorf("scrawl: unknown shape type %q", name)
}

// MarshalJSON writes the shape type under its interchange name.
func (t ShapeType) MarshalJSON() ([]byte, error) {
	if t >= numShapeTypes {
		return nil, fmt.Errorf("scrawl: invalid shape type code %d", uint8(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON reads the shape type from its interchange name.
func (t *ShapeType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseShapeType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Shape is one drawable primitive. Pos is a flat coordinate list whose
// length depends on Type: point=2, circle=3 (cx, cy, r), line and
// rect-like shapes=4, polylines an even length of at least 4. Keeping
// Pos arity consistent with Type is the producer's responsibility.
type Shape struct {
	ID          string    `json:"id,omitempty"`
	Type        ShapeType `json:"type"`
	Pos         []float64 `json:"pos"`
	Color       string    `json:"color"`
	Filled      bool      `json:"filled,omitempty"`
	FillAlpha   float64   `json:"fillAlpha,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	Text        string    `json:"text,omitempty"`
}

// Drawing is the complete ordered set of shapes for one map, together
// with the map identifier and the session's ambient stroke width. Each
// encode or decode call treats it as an immutable snapshot.
type Drawing struct {
	MapName       string  `json:"mapName"`
	Shapes        []Shape `json:"shapes"`
	DefaultStroke float64 `json:"defaultStroke,omitempty"`
}

// Hard ceilings of the binary format.
const (
	MaxShapes    = 255
	MaxNameBytes = 255
	MaxTextBytes = 255
)

// Palette is the tool's fixed color table, addressed by a 3-bit index.
// Index 7 is not a color: it flags that an arbitrary RGB triple follows
// on the wire.
var Palette = [7]string{
	"#000000", "#ffffff", "#ef4444", "#3b82f6",
	"#22c55e", "#eab308", "#a855f7",
}

const paletteEscape = 7

// DefaultColor is assigned when an escaped color carries no RGB payload.
const DefaultColor = "#ef4444"

// StrokeWidths and FontSizes hold the UI's discrete sizes, addressed by
// a 2-bit index. Quantizing to the nearest entry is intentionally lossy:
// the tool never produces values outside these tables.
var (
	StrokeWidths = [4]float64{2, 5, 10, 15}
	FontSizes    = [4]float64{12, 16, 24, 36}
)

// DefaultFillAlpha is the fill opacity assigned to filled shapes on
// decode. The wire format carries only the filled bit.
const DefaultFillAlpha = 0.2

// nearestIndex picks the table entry closest to v, ties going to the
// lower entry.
func nearestIndex(table [4]float64, v float64) int {
	best := 0
	for i := 1; i < len(table); i++ {
		if utils.Abs(table[i]-v) < utils.Abs(table[best]-v) {
			best = i
		}
	}
	return best
}

// paletteIndex returns the 3-bit palette code for a color, or the escape
// code when the color is not one of the fixed entries.
func paletteIndex(color string) int {
	c := strings.ToLower(color)
	for i, p := range Palette {
		if c == p {
			return i
		}
	}
	return paletteEscape
}

// parseHexColor reads a "#rrggbb" string into its RGB components.
func parseHexColor(s string) (r, g, b uint8, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	var v [6]uint8
	for i := 0; i < 6; i++ {
		c := s[i+1]
		switch {
		case c >= '0' && c <= '9':
			v[i] = c - '0'
		case c >= 'a' && c <= 'f':
			v[i] = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v[i] = c - 'A' + 10
		default:
			return 0, 0, 0, false
		}
	}
	return v[0]<<4 | v[1], v[2]<<4 | v[3], v[4]<<4 | v[5], true
}

// hexColor formats RGB components as a "#rrggbb" string.
func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// newShapeID mints a fresh identifier. Identifiers are session-local and
// never serialized; every decode regenerates them.
func newShapeID() string {
	return uuid.NewString()
}
