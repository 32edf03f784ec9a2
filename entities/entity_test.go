package entities

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/cad/core"
)

func parse(t *testing.T, dxf string) Entity {
	t.Helper()
	scanner := core.NewScanner(strings.NewReader(dxf))
	require.True(t, scanner.Next())
	ent := Create(scanner.LastTag.AsString())
	require.NotNil(t, ent, "未注册的实体: %s", scanner.LastTag.Value)
	require.True(t, scanner.Next())
	parser, ok := ent.(Parser)
	require.True(t, ok)
	require.NoError(t, parser.Parse(scanner))
	return ent
}

func TestParse_Line(t *testing.T) {
	ent := parse(t, "0\nLINE\n5\n2F\n8\nWALL\n62\n1\n10\n1.5\n20\n2\n11\n10\n21\n-4\n0\nENDSEC\n")
	line, ok := ent.(*Line)
	require.True(t, ok)
	assert.Equal(t, "WALL", line.Layer())
	assert.Equal(t, "2F", line.Metadata["handle"])
	assert.Equal(t, "#FF0000", line.Style.StrokeColor)
	assert.Equal(t, core.Pt(1.5, 2), line.Start)
	assert.Equal(t, core.Pt(10, -4), line.End)
	assert.True(t, line.Selectable())
}

func TestParse_ArcAndEllipse(t *testing.T) {
	arc := parse(t, "0\nARC\n10\n0\n20\n0\n40\n2\n50\n0\n51\n90\n0\nEOF\n").(*Arc)
	assert.InDelta(t, math.Pi/2, arc.EndAngle, 1e-12)
	assert.InDelta(t, math.Pi, arc.Length(), 1e-12)
	assert.InDelta(t, 2, arc.BBox().Max.X, 1e-12)
	assert.InDelta(t, 0, arc.BBox().Min.X, 1e-12)

	ellipse := parse(t, "0\nELLIPSE\n10\n1\n20\n1\n11\n0\n21\n4\n40\n0.5\n0\nEOF\n").(*Ellipse)
	assert.InDelta(t, 4, ellipse.RadiusX, 1e-12)
	assert.InDelta(t, 2, ellipse.RadiusY, 1e-12)
	assert.InDelta(t, math.Pi/2, ellipse.Rotation, 1e-12)
	q := ellipse.Quadrants()
	require.Len(t, q, 4)
	assert.InDelta(t, 5, q[0].Y, 1e-9)
	assert.InDelta(t, -1, q[1].X, 1e-9)
}

func TestParse_Polyline(t *testing.T) {
	pl := parse(t, "0\nLWPOLYLINE\n70\n1\n10\n0\n20\n0\n10\n4\n20\n0\n10\n4\n20\n3\n0\nEOF\n").(*Polyline)
	assert.True(t, pl.Closed)
	require.Len(t, pl.Points, 3)
	assert.Len(t, pl.Segments(), 3)
	assert.InDelta(t, 12, pl.Length(), 1e-12)
}

func TestClone_IsDeep(t *testing.T) {
	pl := NewPolyline([]core.Point{core.Pt(0, 0), core.Pt(1, 1)}, false)
	pl.Metadata = map[string]string{"k": "v"}
	c := pl.Clone().(*Polyline)
	c.Points[0] = core.Pt(9, 9)
	c.Metadata["k"] = "x"
	assert.Equal(t, core.Pt(0, 0), pl.Points[0])
	assert.Equal(t, "v", pl.Metadata["k"])
}

func TestApply(t *testing.T) {
	line := NewLine(core.Pt(0, 0), core.Pt(1, 0))
	require.NoError(t, Apply(line, Fields{"end": core.Pt(5, 0), "layer": "AXIS"}))
	assert.Equal(t, core.Pt(5, 0), line.End)
	assert.Equal(t, "AXIS", line.LayerName)

	// 出错时保持不变
	err := Apply(line, Fields{"start": core.Pt(2, 2), "radius": 3.0})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, core.Pt(0, 0), line.Start)

	err = Apply(line, Fields{"start": "1,1"})
	assert.ErrorIs(t, err, ErrFieldType)

	circle := NewCircle(core.Pt(0, 0), 1)
	require.NoError(t, Apply(circle, Fields{"radius": 4.0, "visible": false}))
	assert.Equal(t, 4.0, circle.Radius)
	assert.False(t, circle.Selectable())
}

func TestValidate(t *testing.T) {
	c := NewCircle(core.Pt(0, 0), -1)
	c.ID = "c1"
	assert.ErrorIs(t, Validate(c), ErrInvalid)

	c.Radius = 0 // 退化但合法
	assert.NoError(t, Validate(c))

	r := NewRectangle(core.Pt(0, 0), 2, -3)
	r.ID = "r1"
	assert.ErrorIs(t, Validate(r), ErrInvalid)

	l := NewLine(core.Pt(math.NaN(), 0), core.Pt(1, 1))
	l.ID = "l1"
	assert.ErrorIs(t, Validate(l), ErrInvalid)

	missingID := NewLine(core.Pt(0, 0), core.Pt(1, 1))
	assert.ErrorIs(t, Validate(missingID), ErrInvalid)

	p := NewPolygon(core.Pt(0, 0), 1, 2)
	p.ID = "p1"
	assert.ErrorIs(t, Validate(p), ErrInvalid)
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		length float64
		area   float64
		hasA   bool
	}{
		{"line", NewLine(core.Pt(0, 0), core.Pt(3, 4)), 5, 0, false},
		{"circle", NewCircle(core.Pt(0, 0), 1), 2 * math.Pi, math.Pi, true},
		{"rectangle", NewRectangle(core.Pt(0, 0), 2, 3), 10, 6, true},
		{"open polyline", NewPolyline([]core.Point{core.Pt(0, 0), core.Pt(2, 0), core.Pt(2, 2)}, false), 4, 0, false},
		{"closed polyline", NewPolyline([]core.Point{core.Pt(0, 0), core.Pt(2, 0), core.Pt(2, 2)}, true), 4 + math.Sqrt(8), 2, true},
		{"hatch", NewHatch([]core.Point{core.Pt(0, 0), core.Pt(1, 0), core.Pt(1, 1), core.Pt(0, 1)}, "SOLID"), 4, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := Length(tt.entity)
			assert.True(t, ok)
			assert.InDelta(t, tt.length, l, 1e-9)
			a, ok := Area(tt.entity)
			assert.Equal(t, tt.hasA, ok)
			assert.InDelta(t, tt.area, a, 1e-9)
		})
	}

	_, ok := Radius(NewLine(core.Pt(0, 0), core.Pt(1, 1)))
	assert.False(t, ok)
	r, ok := Radius(NewArc(core.Pt(0, 0), 3, 0, 1))
	assert.True(t, ok)
	assert.Equal(t, 3.0, r)

	p, ok := ReferencePoint(NewRectangle(core.Pt(0, 0), 4, 2))
	assert.True(t, ok)
	assert.Equal(t, core.Pt(2, 1), p)
	_, ok = ReferencePoint(NewPolyline(nil, false))
	assert.False(t, ok)
}

func TestSpline_Sample(t *testing.T) {
	s := NewSpline([]core.Point{core.Pt(0, 0), core.Pt(1, 2), core.Pt(3, 2), core.Pt(4, 0)}, 3)
	points := s.Sample(10)
	require.Len(t, points, 11)
	assert.InDelta(t, 0, points[0].X, 1e-12)
	assert.InDelta(t, 4, points[10].X, 1e-12)
	// 三次 Bézier 在 t=0.5 处
	assert.InDelta(t, 2, points[5].X, 1e-9)
	assert.InDelta(t, 1.5, points[5].Y, 1e-9)

	linear := NewSpline([]core.Point{core.Pt(0, 0), core.Pt(2, 0), core.Pt(2, 2)}, 1)
	l, ok := Length(linear)
	assert.True(t, ok)
	assert.InDelta(t, 4, l, 1e-9)
}

func TestPath_Flatten(t *testing.T) {
	p := NewPath(
		PathSegment{Op: MoveTo, Points: []core.Point{core.Pt(0, 0)}},
		PathSegment{Op: LineTo, Points: []core.Point{core.Pt(4, 0)}},
		PathSegment{Op: LineTo, Points: []core.Point{core.Pt(4, 3)}},
		PathSegment{Op: ClosePath},
		PathSegment{Op: MoveTo, Points: []core.Point{core.Pt(10, 0)}},
		PathSegment{Op: QuadTo, Points: []core.Point{core.Pt(11, 1), core.Pt(12, 0)}},
	)
	subpaths, closed := p.Flatten()
	require.Len(t, subpaths, 2)
	assert.Equal(t, []bool{true, false}, closed)
	assert.Len(t, subpaths[1], curveSteps+1)

	l, ok := Length(p)
	assert.True(t, ok)
	assert.Greater(t, l, 12.0)
}

func TestAnnotation_BBox(t *testing.T) {
	a := NewText(core.Pt(10, 10), "AB", 13)
	w, h := a.TextExtent()
	assert.Equal(t, 14.0, w) // 7 像素/字
	assert.Equal(t, 13.0, h)
	box := a.BBox()
	assert.Equal(t, core.Pt(10, 10), box.Min)
	assert.InDelta(t, 24, box.Max.X, 1e-9)

	tol := &Annotation{Kind: AnnotationTolerance, Text: "10", Upper: 0.1, Lower: 0.05}
	assert.Equal(t, "10 +0.10/-0.05", tol.DisplayText())
}
