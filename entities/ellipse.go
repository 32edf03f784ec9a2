package entities

import (
	"math"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// Ellipse 椭圆，Rotation 为 X 半轴相对世界 X 轴的弧度
type Ellipse struct {
	BaseEntity
	Center   core.Point
	RadiusX  float64 `validate:"gte=0"`
	RadiusY  float64 `validate:"gte=0"`
	Rotation float64
}

func init() {
	Register("ELLIPSE", func() Entity { return &Ellipse{BaseEntity: NewBase("0")} })
}

func NewEllipse(center core.Point, rx, ry, rotation float64) *Ellipse {
	return &Ellipse{BaseEntity: NewBase("0"), Center: center, RadiusX: rx, RadiusY: ry, Rotation: rotation}
}

func (*Ellipse) entity() {}

func (e *Ellipse) Type() Kind { return KindEllipse }

// Parse DXF 用长轴端点(相对圆心)与短长轴比例描述椭圆
func (e *Ellipse) Parse(s *core.Scanner) error {
	var (
		major core.Point
		ratio = 1.0
	)
	for {
		t := s.LastTag
		if !e.parseCommon(t) {
			switch t.Code {
			case 10:
				e.Center.X = t.AsFloat()
			case 20:
				e.Center.Y = t.AsFloat()
			case 11:
				major.X = t.AsFloat()
			case 21:
				major.Y = t.AsFloat()
			case 40:
				ratio = math.Abs(t.AsFloat())
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}

	e.RadiusX = major.Length()
	e.RadiusY = e.RadiusX * ratio
	e.Rotation = math.Atan2(major.Y, major.X)
	return nil
}

// Quadrants 旋转后的四个象限点：+X、+Y、-X、-Y 半轴端点
func (e *Ellipse) Quadrants() []core.Point {
	points := make([]core.Point, 0, 4)
	for i := 0; i < 4; i++ {
		points = append(points, geom.EllipsePoint(e.Center, e.RadiusX, e.RadiusY, e.Rotation, float64(i)*math.Pi/2))
	}
	return points
}

func (e *Ellipse) Area() float64 {
	return math.Pi * e.RadiusX * e.RadiusY
}

func (e *Ellipse) BBox() core.BBox {
	cos, sin := math.Cos(e.Rotation), math.Sin(e.Rotation)
	hw := math.Hypot(e.RadiusX*cos, e.RadiusY*sin)
	hh := math.Hypot(e.RadiusX*sin, e.RadiusY*cos)
	return core.BBox{
		Min: core.Point{X: e.Center.X - hw, Y: e.Center.Y - hh},
		Max: core.Point{X: e.Center.X + hw, Y: e.Center.Y + hh},
	}
}

func (e *Ellipse) Clone() Entity {
	n := *e
	n.BaseEntity = e.BaseEntity.clone()
	return &n
}
