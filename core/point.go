package core

import "math"

// Point 代表二维平面上的一个点，按值传递
type Point struct {
	X, Y float64
}

// Pt 创建一个点
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross 二维叉积(标量)
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Normalize 返回单位向量，零向量返回 false
func (p Point) Normalize() (Point, bool) {
	l := p.Length()
	if l == 0 || !IsFinite(l) {
		return Point{}, false
	}
	return Point{X: p.X / l, Y: p.Y / l}, true
}

// Perp 逆时针旋转 90°
func (p Point) Perp() Point {
	return Point{X: -p.Y, Y: p.X}
}

// Lerp 线性插值，t=0 返回 p，t=1 返回 q
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

func (p Point) IsFinite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// Equal 按容差比较两个点
func (p Point) Equal(q Point, epsilon float64) bool {
	return Equal(p.X, q.X, epsilon) && Equal(p.Y, q.Y, epsilon)
}
