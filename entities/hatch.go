package entities

import (
	"slices"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// Hatch 填充，边界为单一闭合多边形
type Hatch struct {
	BaseEntity
	Boundary []core.Point
	Pattern  string // SOLID、ANSI31 等
	Scale    float64 `validate:"gte=0"`
	Angle    float64
}

func NewHatch(boundary []core.Point, pattern string) *Hatch {
	return &Hatch{BaseEntity: NewBase("0"), Boundary: boundary, Pattern: pattern, Scale: 1}
}

func (*Hatch) entity() {}

func (h *Hatch) Type() Kind { return KindHatch }

func (h *Hatch) Area() float64 {
	return geom.PolygonArea(h.Boundary)
}

func (h *Hatch) Contains(p core.Point) bool {
	return geom.PointInPolygon(p, h.Boundary)
}

func (h *Hatch) BBox() core.BBox {
	if len(h.Boundary) == 0 {
		return core.BBox{}
	}
	return core.BBoxOf(h.Boundary...)
}

func (h *Hatch) Clone() Entity {
	n := *h
	n.BaseEntity = h.BaseEntity.clone()
	n.Boundary = slices.Clone(h.Boundary)
	return &n
}
