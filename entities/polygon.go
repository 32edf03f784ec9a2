package entities

import (
	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// Polygon 正多边形，Radius 为外接圆半径，Rotation 为首个顶点的弧度
type Polygon struct {
	BaseEntity
	Center   core.Point
	Radius   float64 `validate:"gte=0"`
	Sides    int     `validate:"gte=3"`
	Rotation float64
}

func NewPolygon(center core.Point, radius float64, sides int) *Polygon {
	return &Polygon{BaseEntity: NewBase("0"), Center: center, Radius: radius, Sides: sides}
}

func (*Polygon) entity() {}

func (p *Polygon) Type() Kind { return KindPolygon }

func (p *Polygon) Vertices() []core.Point {
	return geom.RegularPolygon(p.Center, p.Radius, p.Sides, p.Rotation)
}

func (p *Polygon) Segments() [][2]core.Point {
	return segmentsOf(p.Vertices(), true)
}

func (p *Polygon) Area() float64 {
	return geom.PolygonArea(p.Vertices())
}

func (p *Polygon) BBox() core.BBox {
	vertices := p.Vertices()
	if len(vertices) == 0 {
		return core.BBox{Min: p.Center, Max: p.Center}
	}
	return core.BBoxOf(vertices...)
}

func (p *Polygon) Clone() Entity {
	n := *p
	n.BaseEntity = p.BaseEntity.clone()
	return &n
}
