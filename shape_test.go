package scrawl

import (
	"encoding/json"
	"testing"
)

func TestShape_TypeNamesShouldRoundTrip(t *testing.T) {
	for typ := ShapePoint; typ < numShapeTypes; typ++ {
		parsed, err := ParseShapeType(typ.String())
		if err != nil {
			t.Fatalf("parsing %q back failed: %v", typ.String(), err)
		}
		if parsed != typ {
			t.Errorf("type %d round-tripped as %d", typ, parsed)
		}
	}
	if _, err := ParseShapeType("scribble"); err == nil {
		t.Errorf("unknown type name should have been rejected")
	}
}

func TestShape_JSONInterchange(t *testing.T) {
	in := Shape{Type: ShapeArrowLine, Pos: []float64{1, 2, 3, 4}, Color: "#000000"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out Shape
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Type != ShapeArrowLine {
		t.Errorf("expected arrow_line back, got %v", out.Type)
	}
}

func TestQuantize_NearestIndex(t *testing.T) {
	testCases := []struct {
		name  string
		table [4]float64
		value float64
		want  int
	}{
		{"stroke width 7 snaps down to 5", StrokeWidths, 7, 1},
		{"exact entry", StrokeWidths, 10, 2},
		{"below the table", StrokeWidths, 0.5, 0},
		{"above the table", StrokeWidths, 100, 3},
		{"tie goes to the lower entry", FontSizes, 20, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nearestIndex(tc.table, tc.value); got != tc.want {
				t.Errorf("nearestIndex(%v, %v) = %d, want %d", tc.table, tc.value, got, tc.want)
			}
		})
	}
}

func TestQuantize_PaletteIndex(t *testing.T) {
	if got := paletteIndex("#ffffff"); got != 1 {
		t.Errorf("white should map to slot 1, got %d", got)
	}
	if got := paletteIndex("#EF4444"); got != 2 {
		t.Errorf("palette match should be case insensitive, got %d", got)
	}
	if got := paletteIndex("#123456"); got != paletteEscape {
		t.Errorf("foreign color should map to the escape slot, got %d", got)
	}
}

func TestQuantize_HexColor(t *testing.T) {
	r, g, b, ok := parseHexColor("#1a2B3c")
	if !ok || r != 0x1a || g != 0x2b || b != 0x3c {
		t.Errorf("parseHexColor = %02x %02x %02x %v", r, g, b, ok)
	}
	if hexColor(r, g, b) != "#1a2b3c" {
		t.Errorf("hexColor should normalize to lower case")
	}
	for _, bad := range []string{"", "#fff", "1a2b3c7", "#1a2b3g"} {
		if _, _, _, ok := parseHexColor(bad); ok {
			t.Errorf("parseHexColor(%q) should fail", bad)
		}
	}
}
