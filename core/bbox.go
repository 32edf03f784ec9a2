package core

import "math"

// BBox 代表包围盒
type BBox struct {
	Min, Max Point
}

// EmptyBBox 返回一个空包围盒，Extend 任意点后变为有效
func EmptyBBox() BBox {
	return BBox{
		Min: Point{X: math.MaxFloat64, Y: math.MaxFloat64},
		Max: Point{X: -math.MaxFloat64, Y: -math.MaxFloat64},
	}
}

// BBoxOf 计算一组点的包围盒
func BBoxOf(points ...Point) BBox {
	box := EmptyBBox()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

func (b BBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

func (b BBox) Extend(p Point) BBox {
	return BBox{
		Min: Point{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y)},
		Max: Point{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y)},
	}
}

func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

func (b BBox) Width() float64 {
	return b.Max.X - b.Min.X
}

func (b BBox) Height() float64 {
	return b.Max.Y - b.Min.Y
}

func (b BBox) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Contains 点是否在包围盒内(含边界)
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Expand 四周外扩 gap
func (b BBox) Expand(gap float64) BBox {
	return BBox{
		Min: Point{X: b.Min.X - gap, Y: b.Min.Y - gap},
		Max: Point{X: b.Max.X + gap, Y: b.Max.Y + gap},
	}
}
