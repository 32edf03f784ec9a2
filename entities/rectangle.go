package entities

import "github.com/zooyer/cad/core"

// Rectangle 轴对齐矩形，Corner 为左下角
type Rectangle struct {
	BaseEntity
	Corner core.Point
	Width  float64 `validate:"gte=0"`
	Height float64 `validate:"gte=0"`
}

func NewRectangle(corner core.Point, width, height float64) *Rectangle {
	return &Rectangle{BaseEntity: NewBase("0"), Corner: corner, Width: width, Height: height}
}

func (*Rectangle) entity() {}

func (r *Rectangle) Type() Kind { return KindRectangle }

// Corners 逆时针四个角点，从 Corner 开始
func (r *Rectangle) Corners() []core.Point {
	return []core.Point{
		r.Corner,
		{X: r.Corner.X + r.Width, Y: r.Corner.Y},
		{X: r.Corner.X + r.Width, Y: r.Corner.Y + r.Height},
		{X: r.Corner.X, Y: r.Corner.Y + r.Height},
	}
}

func (r *Rectangle) Center() core.Point {
	return core.Point{X: r.Corner.X + r.Width/2, Y: r.Corner.Y + r.Height/2}
}

func (r *Rectangle) Area() float64 {
	return r.Width * r.Height
}

func (r *Rectangle) BBox() core.BBox {
	return core.BBoxOf(r.Corners()...)
}

func (r *Rectangle) Clone() Entity {
	n := *r
	n.BaseEntity = r.BaseEntity.clone()
	return &n
}
