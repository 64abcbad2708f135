package scrawl

import "testing"

func TestBounds_EmptyInputShouldDegenerate(t *testing.T) {
	box, cls := planBounds(nil)
	if box != (bounds{}) {
		t.Errorf("empty input should give a zero box, got %+v", box)
	}
	if cls != coord8 {
		t.Errorf("empty input should give the smallest class, got %d", cls)
	}
}

func TestBounds_SpanDecidesCoordinateClass(t *testing.T) {
	twoPoints := func(far float64) []Shape {
		return []Shape{
			{Type: ShapePoint, Pos: []float64{0, 0}},
			{Type: ShapePoint, Pos: []float64{far, 0}},
		}
	}
	testCases := []struct {
		name   string
		shapes []Shape
		want   coordClass
	}{
		{"255 apart fits one byte", twoPoints(255), coord8},
		{"256 apart needs two bytes", twoPoints(256), coord16},
		{"65535 apart still two bytes", twoPoints(65535), coord16},
		{"beyond 65535 needs four bytes", twoPoints(70000), coord32},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, cls := planBounds(tc.shapes); cls != tc.want {
				t.Errorf("got class %d, want %d", cls, tc.want)
			}
		})
	}
}

func TestBounds_ShouldCoverDerivedPoints(t *testing.T) {
	// A rect's far corner and a circle's rim are written as absolute
	// coordinates, so they must widen the box even though they are not
	// raw Pos pairs.
	shapes := []Shape{
		{Type: ShapeRect, Pos: []float64{0, 0, 300, 10}},
	}
	box, cls := planBounds(shapes)
	if box.xMax != 300 {
		t.Errorf("rect far corner should extend xMax to 300, got %d", box.xMax)
	}
	if cls != coord16 {
		t.Errorf("span 300 should need two bytes, got class %d", cls)
	}

	shapes = []Shape{
		{Type: ShapeCircle, Pos: []float64{100, 100, 200}},
	}
	box, _ = planBounds(shapes)
	if box.xMax != 300 {
		t.Errorf("circle rim should extend xMax to 300, got %d", box.xMax)
	}
}

func TestBounds_OriginAbsorbsMinimum(t *testing.T) {
	shapes := []Shape{
		{Type: ShapePoint, Pos: []float64{1000, 2000}},
		{Type: ShapePoint, Pos: []float64{1100, 2050}},
	}
	box, cls := planBounds(shapes)
	if cls != coord8 {
		t.Errorf("a spatially local drawing should fit one byte, got class %d", cls)
	}
	if box.xMin != 1000 || box.yMin != 2000 {
		t.Errorf("origin should sit at the minimum, got (%d, %d)", box.xMin, box.yMin)
	}
}
