package geom

import (
	"math"

	"github.com/zooyer/cad/core"
)

// lineParams 用行列式法求两条无限直线的交点参数，平行(行列式为 0)时返回 false
func lineParams(a1, a2, b1, b2 core.Point) (t, u float64, ok bool) {
	da, db := a2.Sub(a1), b2.Sub(b1)
	den := da.Cross(db)
	if den == 0 {
		return 0, 0, false
	}
	w := b1.Sub(a1)
	t, u = w.Cross(db)/den, w.Cross(da)/den
	if !core.IsFinite(t) || !core.IsFinite(u) {
		return 0, 0, false
	}
	return t, u, true
}

func inUnit(t float64) bool {
	return t >= -core.Epsilon && t <= 1+core.Epsilon
}

// LineLineIntersection 线段 a1a2 与 b1b2 的交点。
// 平行或交点不在两条线段参数范围 [0,1] 内时无结果。
func LineLineIntersection(a1, a2, b1, b2 core.Point) (core.Point, bool) {
	t, u, ok := lineParams(a1, a2, b1, b2)
	if !ok || !inUnit(t) || !inUnit(u) {
		return core.Point{}, false
	}
	p := a1.Lerp(a2, t)
	if !p.IsFinite() {
		return core.Point{}, false
	}
	return p, true
}

// InfiniteLineIntersection 两条无限直线的交点，平行时无结果
func InfiniteLineIntersection(a1, a2, b1, b2 core.Point) (core.Point, bool) {
	t, _, ok := lineParams(a1, a2, b1, b2)
	if !ok {
		return core.Point{}, false
	}
	p := a1.Lerp(a2, t)
	return p, p.IsFinite()
}

// LineCircleIntersection 线段与圆的交点(0~2 个)，只保留参数 t∈[0,1] 的根
func LineCircleIntersection(p1, p2, center core.Point, r float64) []core.Point {
	d := p2.Sub(p1)
	a := d.Dot(d)
	if a == 0 || r <= 0 {
		return nil
	}

	f := p1.Sub(center)
	b := 2 * f.Dot(d)
	c := f.Dot(f) - r*r
	disc := b*b - 4*a*c
	// 相切时舍入误差可能让判别式略偏离 0
	if math.Abs(disc) <= 4*core.Epsilon*a*math.Max(1, r*r) {
		disc = 0
	}
	if disc < 0 {
		return nil
	}

	var points []core.Point
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if inUnit(t1) {
		points = append(points, p1.Lerp(p2, t1))
	}
	if disc > 0 && inUnit(t2) {
		points = append(points, p1.Lerp(p2, t2))
	}
	return finite(points)
}

// CircleCircleIntersection 两圆交点(0~2 个)。
// 相离、内含、同心或重合时没有有限结果，返回空。
func CircleCircleIntersection(c1 core.Point, r1 float64, c2 core.Point, r2 float64) []core.Point {
	if r1 <= 0 || r2 <= 0 {
		return nil
	}
	d := c1.Distance(c2)
	if d == 0 || d > r1+r2+core.Epsilon || d < math.Abs(r1-r2)-core.Epsilon {
		return nil
	}

	// 1. 两圆心连线上的弦中点
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h2 := r1*r1 - a*a
	dir := c2.Sub(c1).Mul(1 / d)
	base := c1.Add(dir.Mul(a))

	// 2. 相切：只有一个交点
	if h2 <= core.Epsilon*math.Max(1, r1*r1) {
		return finite([]core.Point{base})
	}

	// 3. 沿垂直方向偏移弦长的一半
	h := math.Sqrt(h2)
	off := dir.Perp().Mul(h)
	return finite([]core.Point{base.Add(off), base.Sub(off)})
}

// TangentPoints 从圆外一点作圆的切线，返回切点。
// 点在圆内无结果，点在圆上返回该点本身。
func TangentPoints(p, center core.Point, r float64) []core.Point {
	if r <= 0 {
		return nil
	}
	d := p.Distance(center)
	if core.Equal(d, r, core.Epsilon*math.Max(1, r)) {
		return []core.Point{p}
	}
	if d < r {
		return nil
	}

	a := r * r / d
	h := math.Sqrt(r*r - a*a)
	dir := p.Sub(center).Mul(1 / d)
	base := center.Add(dir.Mul(a))
	off := dir.Perp().Mul(h)
	return finite([]core.Point{base.Add(off), base.Sub(off)})
}
