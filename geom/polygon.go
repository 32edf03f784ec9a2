package geom

import (
	"math"

	"github.com/zooyer/cad/core"
)

// PolygonArea 鞋带公式求多边形面积(取绝对值)，少于 3 个点时为 0
func PolygonArea(points []core.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i := range points {
		j := (i + 1) % len(points)
		sum += points[i].Cross(points[j])
	}
	area := math.Abs(sum) / 2
	if !core.IsFinite(area) {
		return 0
	}
	return area
}

// PointInPolygon 射线法(奇偶规则)判断点是否在多边形内
func PointInPolygon(p core.Point, polygon []core.Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Centroid 多边形形心，面积为 0 时退化为顶点平均值
func Centroid(points []core.Point) (core.Point, bool) {
	if len(points) == 0 {
		return core.Point{}, false
	}
	var cx, cy, sum float64
	for i := range points {
		j := (i + 1) % len(points)
		cross := points[i].Cross(points[j])
		sum += cross
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}
	if sum == 0 {
		var avg core.Point
		for _, p := range points {
			avg = avg.Add(p)
		}
		return avg.Mul(1 / float64(len(points))), true
	}
	c := core.Point{X: cx / (3 * sum), Y: cy / (3 * sum)}
	return c, c.IsFinite()
}
