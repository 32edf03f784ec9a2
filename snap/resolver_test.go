package snap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

func withID[T entities.Entity](id string, e T) T {
	e.Base().ID = id
	return e
}

func resolver(zoom float64, list ...entities.Entity) *Resolver {
	s := DefaultSettings()
	s.Zoom = zoom
	r := NewResolver(s)
	r.SetEntities(list)
	return r
}

func find(candidates []Candidate, category Category) (Candidate, bool) {
	for _, c := range candidates {
		if c.Category == category {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestResolver_Threshold(t *testing.T) {
	assert.Equal(t, 10.0, resolver(1).Threshold())
	assert.Equal(t, 2.5, resolver(4).Threshold())
	assert.Equal(t, 10.0, resolver(0).Threshold(), "缩放非法时按 1 处理")
	assert.Equal(t, 10.0, resolver(-3).Threshold())
}

func TestResolver_TieKeepsCategoryOrder(t *testing.T) {
	// 端点 (2,0) 与中点 (1,0) 到光标距离相同
	pl := withID("p", entities.NewPolyline([]core.Point{core.Pt(0, 0), core.Pt(2, 0)}, false))
	r := resolver(1, pl)

	c, ok := r.FindBestSnapPoint(core.Pt(1.5, 1), nil)
	require.True(t, ok)
	assert.Equal(t, Endpoint, c.Category)
	assert.Equal(t, core.Pt(2, 0), c.Point)
	assert.Equal(t, "p", c.EntityID)
	assert.Equal(t, "端点", c.Label)
}

func TestResolver_LineLineIntersection(t *testing.T) {
	a := withID("a", entities.NewPolyline([]core.Point{core.Pt(0, 0), core.Pt(12, 0)}, false))
	b := withID("b", entities.NewPolyline([]core.Point{core.Pt(5, -5), core.Pt(5, 7)}, false))
	r := resolver(10, a, b)

	c, ok := r.FindBestSnapPoint(core.Pt(5.2, 0.2), nil)
	require.True(t, ok)
	assert.Equal(t, Intersection, c.Category)
	assert.InDelta(t, 5, c.Point.X, 1e-9)
	assert.InDelta(t, 0, c.Point.Y, 1e-9)
	assert.Equal(t, "a,b", c.EntityID)
}

func TestResolver_LineArcIntersection(t *testing.T) {
	p := withID("p", entities.NewPolyline([]core.Point{core.Pt(10, 0), core.Pt(30, 0)}, false))
	arc := withID("c", entities.NewArc(core.Pt(20, 1), 3, 3*math.Pi/2, math.Pi/2))
	r := resolver(10, p, arc)

	c, ok := r.FindBestSnapPoint(core.Pt(22.9, 0.1), nil)
	require.True(t, ok)
	assert.Equal(t, Intersection, c.Category)
	assert.InDelta(t, 20+math.Sqrt(8), c.Point.X, 1e-9)
	assert.Equal(t, "p,c", c.EntityID)

	// 弧扫过范围之外的交点不算
	_, ok = r.FindBestSnapPoint(core.Pt(20-math.Sqrt(8), 0), nil)
	assert.False(t, ok)
}

func TestResolver_CircleCircleIntersection(t *testing.T) {
	a := withID("a", entities.NewCircle(core.Pt(0, 0), 5))
	b := withID("b", entities.NewCircle(core.Pt(8, 0), 5))
	r := resolver(10, a, b)

	c, ok := find(r.Candidates(core.Pt(4.2, 3.1), nil), Intersection)
	require.True(t, ok)
	assert.InDelta(t, 4, c.Point.X, 1e-9)
	assert.InDelta(t, 3, c.Point.Y, 1e-9)
	assert.Equal(t, "a,b", c.EntityID)

	c, ok = find(r.Candidates(core.Pt(3.9, -3.1), nil), Intersection)
	require.True(t, ok)
	assert.InDelta(t, -3, c.Point.Y, 1e-9)

	// 与最近点同距时交点优先
	c, ok = r.FindBestSnapPoint(core.Pt(4, 3), nil)
	require.True(t, ok)
	assert.Equal(t, Intersection, c.Category)
}

func TestResolver_Quadrant(t *testing.T) {
	tests := []struct {
		name   string
		entity entities.Entity
		cursor core.Point
		want   core.Point
	}{
		{"circle", entities.NewCircle(core.Pt(0, 0), 5), core.Pt(0.2, 5.3), core.Pt(0, 5)},
		{"circle left", entities.NewCircle(core.Pt(1, 1), 2), core.Pt(-1.2, 1.1), core.Pt(-1, 1)},
		{"rotated ellipse", entities.NewEllipse(core.Pt(0, 0), 4, 2, math.Pi/2), core.Pt(0.1, 4.2), core.Pt(0, 4)},
		{"rotated ellipse minor", entities.NewEllipse(core.Pt(0, 0), 4, 2, math.Pi/2), core.Pt(-2.1, 0.2), core.Pt(-2, 0)},
		{"full arc", entities.NewArc(core.Pt(0, 0), 5, 0, 2*math.Pi), core.Pt(0, 5.5), core.Pt(0, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolver(1, withID("e", tt.entity))
			c, ok := find(r.Candidates(tt.cursor, nil), Quadrant)
			require.True(t, ok)
			assert.InDelta(t, tt.want.X, c.Point.X, 1e-9)
			assert.InDelta(t, tt.want.Y, c.Point.Y, 1e-9)
			assert.Equal(t, "e", c.EntityID)
		})
	}
}

// 起止角重合的圆弧按整圆处理
func TestResolver_FullArc(t *testing.T) {
	arc := withID("a", entities.NewArc(core.Pt(0, 0), 5, 0, 2*math.Pi))
	box := arc.BBox()
	assert.InDelta(t, -5, box.Min.X, 1e-9)
	assert.InDelta(t, -5, box.Min.Y, 1e-9)
	assert.InDelta(t, 5, box.Max.X, 1e-9)
	assert.InDelta(t, 5, box.Max.Y, 1e-9)

	r := resolver(1, arc)
	c, ok := r.FindBestSnapPoint(core.Pt(0, 5.5), nil)
	require.True(t, ok)
	assert.Equal(t, Quadrant, c.Category)
	assert.InDelta(t, 0.5, c.Distance, 1e-9)
}

func TestResolver_TangentNeedsReference(t *testing.T) {
	circle := withID("c", entities.NewCircle(core.Pt(0, 0), 5))
	r := resolver(2, circle)
	cursor := core.Pt(2.6, 4.2)

	_, ok := find(r.Candidates(cursor, nil), Tangent)
	assert.False(t, ok)

	ref := core.Pt(10, 0)
	c, ok := find(r.Candidates(cursor, &ref), Tangent)
	require.True(t, ok)
	assert.InDelta(t, 2.5, c.Point.X, 1e-9)
	assert.InDelta(t, math.Sqrt(18.75), c.Point.Y, 1e-9)
	assert.InDelta(t, math.Sqrt(75), c.Point.Distance(ref), 1e-9)
}

func TestResolver_PerpendicularClamped(t *testing.T) {
	line := withID("l", entities.NewLine(core.Pt(0, 0), core.Pt(10, 0)))
	r := resolver(2, line)

	ref := core.Pt(3, 5)
	c, ok := find(r.Candidates(core.Pt(3.2, 0.3), &ref), Perpendicular)
	require.True(t, ok)
	assert.InDelta(t, 3, c.Point.X, 1e-12)
	assert.InDelta(t, 0, c.Point.Y, 1e-12)

	ref = core.Pt(-4, 5)
	c, ok = find(r.Candidates(core.Pt(0.5, 0.5), &ref), Perpendicular)
	require.True(t, ok)
	assert.Equal(t, core.Pt(0, 0), c.Point)
}

func TestResolver_Degenerate(t *testing.T) {
	line := withID("l", entities.NewLine(core.Pt(1, 1), core.Pt(1, 1)))
	circle := withID("c", entities.NewCircle(core.Pt(1, 1), 0))
	r := resolver(1, line, circle)

	ref := core.Pt(5, 5)
	candidates := r.Candidates(core.Pt(1.5, 1), &ref)
	for _, category := range []Category{Midpoint, Quadrant, Nearest, Tangent, Perpendicular, Intersection} {
		_, ok := find(candidates, category)
		assert.False(t, ok, category.String())
	}

	c, ok := r.FindBestSnapPoint(core.Pt(1.5, 1), &ref)
	require.True(t, ok)
	assert.Equal(t, Endpoint, c.Category, "端点与圆心同距，端点优先")
}

func TestResolver_Grid(t *testing.T) {
	s := DefaultSettings()
	s.GridEnabled = true
	s.SnappingEnabled = false
	r := NewResolver(s)
	r.SetEntities([]entities.Entity{withID("l", entities.NewLine(core.Pt(12, 19), core.Pt(30, 19)))})

	c, ok := r.FindBestSnapPoint(core.Pt(12, 19), nil)
	require.True(t, ok)
	assert.Equal(t, Grid, c.Category)
	assert.Equal(t, core.Pt(10, 20), c.Point)
	assert.Empty(t, c.EntityID)

	// 关闭实体吸附后只剩网格候选
	candidates := r.Candidates(core.Pt(12, 19), nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, Grid, candidates[0].Category)

	s.GridEnabled = false
	r.SetSettings(s)
	_, ok = r.FindBestSnapPoint(core.Pt(12, 19), nil)
	assert.False(t, ok)
}

func TestResolver_SkipsHiddenAndLocked(t *testing.T) {
	hidden := withID("h", entities.NewLine(core.Pt(0, 0), core.Pt(1, 0)))
	hidden.Visible = false
	locked := withID("k", entities.NewLine(core.Pt(0, 0), core.Pt(0, 1)))
	locked.Locked = true
	r := resolver(1, hidden, locked)

	_, ok := r.FindBestSnapPoint(core.Pt(0, 0), nil)
	assert.False(t, ok)
}

func TestResolver_OutOfRange(t *testing.T) {
	r := resolver(1, withID("l", entities.NewLine(core.Pt(0, 0), core.Pt(1, 0))))
	_, ok := r.FindBestSnapPoint(core.Pt(100, 100), nil)
	assert.False(t, ok)
	_, ok = r.FindBestSnapPoint(core.Pt(math.NaN(), 0), nil)
	assert.False(t, ok)
}
