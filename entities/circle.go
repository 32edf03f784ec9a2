package entities

import (
	"math"

	"github.com/zooyer/cad/core"
)

type Circle struct {
	BaseEntity
	Center core.Point
	Radius float64 `validate:"gte=0"`
}

func init() {
	Register("CIRCLE", func() Entity { return &Circle{BaseEntity: NewBase("0")} })
}

func NewCircle(center core.Point, radius float64) *Circle {
	return &Circle{BaseEntity: NewBase("0"), Center: center, Radius: radius}
}

func (*Circle) entity() {}

func (c *Circle) Type() Kind { return KindCircle }

func (c *Circle) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		if !c.parseCommon(t) {
			switch t.Code {
			case 10:
				c.Center.X = t.AsFloat()
			case 20:
				c.Center.Y = t.AsFloat()
			case 40:
				c.Radius = math.Abs(t.AsFloat())
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (c *Circle) BBox() core.BBox {
	r := core.Point{X: c.Radius, Y: c.Radius}
	return core.BBox{Min: c.Center.Sub(r), Max: c.Center.Add(r)}
}

func (c *Circle) Clone() Entity {
	n := *c
	n.BaseEntity = c.BaseEntity.clone()
	return &n
}

func (c *Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

func (c *Circle) Degenerate() bool {
	return c.Radius <= 0
}
