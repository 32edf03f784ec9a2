package snap

import (
	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/geom"
)

// primitive 求交用的基本图元：线段或圆(圆弧带角度范围)
type primitive struct {
	segment bool
	a, b    core.Point

	center     core.Point
	radius     float64
	arc        bool
	start, end float64
}

func (p primitive) accepts(q core.Point) bool {
	return !p.arc || geom.AngleInSweep(geom.Angle(p.center, q), p.start, p.end)
}

// decompose 把实体拆成基本图元，退化的部分直接丢弃
func decompose(e entities.Entity) []primitive {
	var (
		out      []primitive
		segments [][2]core.Point
	)
	switch e := e.(type) {
	case *entities.Line:
		segments = [][2]core.Point{{e.Start, e.End}}
	case *entities.Rectangle:
		c := e.Corners()
		segments = [][2]core.Point{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
	case *entities.Polyline:
		segments = e.Segments()
	case *entities.Polygon:
		segments = e.Segments()
	case *entities.Circle:
		if e.Radius > 0 {
			out = append(out, primitive{center: e.Center, radius: e.Radius})
		}
	case *entities.Arc:
		if e.Radius > 0 {
			out = append(out, primitive{center: e.Center, radius: e.Radius, arc: true, start: e.StartAngle, end: e.EndAngle})
		}
	}

	for _, s := range segments {
		if s[0] != s[1] {
			out = append(out, primitive{segment: true, a: s[0], b: s[1]})
		}
	}
	return out
}

// intersections 两组图元之间的全部交点
func intersections(first, second []primitive) []core.Point {
	var out []core.Point
	for _, p := range first {
		for _, q := range second {
			var points []core.Point
			switch {
			case p.segment && q.segment:
				if x, ok := geom.LineLineIntersection(p.a, p.b, q.a, q.b); ok {
					points = []core.Point{x}
				}
			case p.segment:
				points = geom.LineCircleIntersection(p.a, p.b, q.center, q.radius)
			case q.segment:
				points = geom.LineCircleIntersection(q.a, q.b, p.center, p.radius)
			default:
				points = geom.CircleCircleIntersection(p.center, p.radius, q.center, q.radius)
			}
			for _, x := range points {
				if p.accepts(x) && q.accepts(x) {
					out = append(out, x)
				}
			}
		}
	}
	return out
}
