package snap

import (
	"math"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/geom"
)

// points 计算单个实体在某个类别下的全部吸附点，ref 为 nil 时切点与垂足无结果
func points(e entities.Entity, category Category, cursor core.Point, ref *core.Point) []core.Point {
	switch category {
	case Endpoint:
		return endpoints(e)
	case Midpoint:
		return midpoints(e)
	case Center:
		return centers(e)
	case Quadrant:
		return quadrants(e)
	case Tangent:
		return tangents(e, *ref)
	case Perpendicular:
		return perpendiculars(e, *ref)
	case Nearest:
		return nearest(e, cursor)
	}
	return nil
}

func endpoints(e entities.Entity) []core.Point {
	switch e := e.(type) {
	case *entities.Line:
		return []core.Point{e.Start, e.End}
	case *entities.Polyline:
		if len(e.Points) == 0 {
			return nil
		}
		return []core.Point{e.Points[0], e.Points[len(e.Points)-1]}
	case *entities.Rectangle:
		return e.Corners()
	case *entities.Arc:
		if e.Radius <= 0 {
			return nil
		}
		return []core.Point{e.StartPoint(), e.EndPoint()}
	case *entities.Polygon:
		return e.Vertices()
	}
	return nil
}

func midpoints(e entities.Entity) []core.Point {
	var segments [][2]core.Point
	switch e := e.(type) {
	case *entities.Line:
		if e.Degenerate() {
			return nil
		}
		return []core.Point{e.Midpoint()}
	case *entities.Rectangle:
		corners := e.Corners()
		segments = [][2]core.Point{{corners[0], corners[1]}, {corners[1], corners[2]}, {corners[2], corners[3]}, {corners[3], corners[0]}}
	case *entities.Polyline:
		segments = e.Segments()
	case *entities.Polygon:
		segments = e.Segments()
	}

	var out []core.Point
	for _, s := range segments {
		out = append(out, geom.Midpoint(s[0], s[1]))
	}
	return out
}

func centers(e entities.Entity) []core.Point {
	switch e := e.(type) {
	case *entities.Circle:
		return []core.Point{e.Center}
	case *entities.Arc:
		return []core.Point{e.Center}
	case *entities.Ellipse:
		return []core.Point{e.Center}
	case *entities.Rectangle:
		return []core.Point{e.Center()}
	case *entities.Polygon:
		return []core.Point{e.Center}
	}
	return nil
}

func quadrants(e entities.Entity) []core.Point {
	switch e := e.(type) {
	case *entities.Circle:
		if e.Degenerate() {
			return nil
		}
		c, r := e.Center, e.Radius
		return []core.Point{
			{X: c.X + r, Y: c.Y}, {X: c.X, Y: c.Y + r},
			{X: c.X - r, Y: c.Y}, {X: c.X, Y: c.Y - r},
		}
	case *entities.Arc:
		if e.Radius <= 0 {
			return nil
		}
		var out []core.Point
		for i := range 4 {
			rad := float64(i) * math.Pi / 2
			if e.Contains(rad) {
				out = append(out, core.Point{X: e.Center.X + e.Radius*math.Cos(rad), Y: e.Center.Y + e.Radius*math.Sin(rad)})
			}
		}
		return out
	case *entities.Ellipse:
		if e.RadiusX <= 0 || e.RadiusY <= 0 {
			return nil
		}
		return e.Quadrants()
	}
	return nil
}

func tangents(e entities.Entity, ref core.Point) []core.Point {
	switch e := e.(type) {
	case *entities.Circle:
		return geom.TangentPoints(ref, e.Center, e.Radius)
	case *entities.Arc:
		var out []core.Point
		for _, p := range geom.TangentPoints(ref, e.Center, e.Radius) {
			if e.Contains(geom.Angle(e.Center, p)) {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func perpendiculars(e entities.Entity, ref core.Point) []core.Point {
	if l, ok := e.(*entities.Line); ok {
		if p, ok := geom.PerpendicularFoot(ref, l.Start, l.End); ok {
			return []core.Point{p}
		}
	}
	return nil
}

func nearest(e entities.Entity, cursor core.Point) []core.Point {
	switch e := e.(type) {
	case *entities.Line:
		if e.Degenerate() {
			return nil
		}
		return []core.Point{geom.ClosestPointOnSegment(cursor, e.Start, e.End)}
	case *entities.Circle:
		if e.Degenerate() {
			return nil
		}
		dir, ok := cursor.Sub(e.Center).Normalize()
		if !ok {
			return nil
		}
		return []core.Point{e.Center.Add(dir.Mul(e.Radius))}
	}
	return nil
}

// gridPoint 最近的网格交点
func gridPoint(cursor core.Point, size float64) (core.Point, bool) {
	if size <= 0 || !core.IsFinite(size) {
		return core.Point{}, false
	}
	p := core.Point{X: math.Round(cursor.X/size) * size, Y: math.Round(cursor.Y/size) * size}
	return p, p.IsFinite()
}
