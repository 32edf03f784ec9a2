// Package geom 提供二维几何计算的纯函数：距离、角度、求交、切点、倒角、偏移、
// 多边形面积与包含判断、折线简化等。
//
// 所有函数对退化输入（零长度线段、零半径圆、平行线等）都不会 panic，
// 也不会返回 NaN/Inf，而是返回 (零值, false) 或空切片表示“无结果”。
package geom

import (
	"math"

	"github.com/zooyer/cad/core"
)

// Distance 两点间距离
func Distance(a, b core.Point) float64 {
	return a.Distance(b)
}

// Angle 返回 a→b 方向的弧度，范围 (-π, π]
func Angle(a, b core.Point) float64 {
	rad := math.Atan2(b.Y-a.Y, b.X-a.X)
	if rad <= -math.Pi {
		rad = math.Pi
	}
	return rad
}

func Midpoint(a, b core.Point) core.Point {
	return a.Lerp(b, 0.5)
}

// NormalizeAngle 将弧度归一化到 [0, 2π)
func NormalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

// Sweep 从 start 逆时针扫到 end 的弧度，范围 (0, 2π]。
// 起止角重合(如 0 到 360 度)视为整圆
func Sweep(start, end float64) float64 {
	sweep := NormalizeAngle(end - start)
	if sweep <= core.Epsilon || sweep >= 2*math.Pi-core.Epsilon {
		return 2 * math.Pi
	}
	return sweep
}

// AngleInSweep 判断角度是否落在从 start 逆时针扫到 end 的圆弧内
func AngleInSweep(rad, start, end float64) bool {
	if Sweep(start, end) == 2*math.Pi {
		return true
	}
	rad, start, end = NormalizeAngle(rad), NormalizeAngle(start), NormalizeAngle(end)
	if start <= end {
		return rad >= start-core.Epsilon && rad <= end+core.Epsilon
	}
	return rad >= start-core.Epsilon || rad <= end+core.Epsilon
}

// ClosestPointOnSegment 点在线段上的投影，参数被限制在 [0,1]。
// 线段退化为一点时返回该点。
func ClosestPointOnSegment(p, a, b core.Point) core.Point {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Lerp(b, t)
}

// PerpendicularFoot 从 p 向线段 ab 作垂线的垂足(限制在线段上)，线段退化时无结果
func PerpendicularFoot(p, a, b core.Point) (core.Point, bool) {
	if a == b {
		return core.Point{}, false
	}
	return ClosestPointOnSegment(p, a, b), true
}

// DistanceToSegment 点到线段的最短距离
func DistanceToSegment(p, a, b core.Point) float64 {
	return p.Distance(ClosestPointOnSegment(p, a, b))
}

// PointOnSegment 判断点是否在线段上(容差 tol)
func PointOnSegment(p, a, b core.Point, tol float64) bool {
	return DistanceToSegment(p, a, b) <= tol
}

// PolylineLength 折线总长，closed 时包含首尾闭合段
func PolylineLength(points []core.Point, closed bool) float64 {
	var length float64
	for i := 1; i < len(points); i++ {
		length += points[i-1].Distance(points[i])
	}
	if closed && len(points) > 2 {
		length += points[len(points)-1].Distance(points[0])
	}
	return length
}

// RegularPolygon 生成正多边形顶点，rotation 为弧度
func RegularPolygon(center core.Point, radius float64, sides int, rotation float64) []core.Point {
	if sides < 3 || radius <= 0 {
		return nil
	}
	points := make([]core.Point, 0, sides)
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		rad := rotation + step*float64(i)
		points = append(points, core.Point{
			X: center.X + radius*math.Cos(rad),
			Y: center.Y + radius*math.Sin(rad),
		})
	}
	return points
}

// EllipsePoint 椭圆参数方程上的点，rotation 为长轴相对 X 轴的弧度
func EllipsePoint(center core.Point, rx, ry, rotation, t float64) core.Point {
	local := core.Point{X: rx * math.Cos(t), Y: ry * math.Sin(t)}
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	return core.Point{
		X: center.X + local.X*cos - local.Y*sin,
		Y: center.Y + local.X*sin + local.Y*cos,
	}
}

func finite(points []core.Point) []core.Point {
	out := points[:0]
	for _, p := range points {
		if p.IsFinite() {
			out = append(out, p)
		}
	}
	return out
}
