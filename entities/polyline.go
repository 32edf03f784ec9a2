package entities

import (
	"slices"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

type Polyline struct {
	BaseEntity
	Points []core.Point
	Closed bool
}

func init() {
	Register("LWPOLYLINE", func() Entity { return &Polyline{BaseEntity: NewBase("0")} })
}

func NewPolyline(points []core.Point, closed bool) *Polyline {
	return &Polyline{BaseEntity: NewBase("0"), Points: points, Closed: closed}
}

func (*Polyline) entity() {}

func (l *Polyline) Type() Kind { return KindPolyline }

func (l *Polyline) Parse(s *core.Scanner) error {
	var x float64
	for {
		t := s.LastTag
		if !l.parseCommon(t) {
			switch t.Code {
			case 10:
				x = t.AsFloat()
			case 20:
				l.Points = append(l.Points, core.Point{X: x, Y: t.AsFloat()})
			case 70:
				l.Closed = t.AsInt()&1 == 1
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Segments 依次返回每一段(closed 时包含闭合段)
func (l *Polyline) Segments() [][2]core.Point {
	return segmentsOf(l.Points, l.Closed)
}

func (l *Polyline) Length() float64 {
	return geom.PolylineLength(l.Points, l.Closed)
}

func (l *Polyline) BBox() core.BBox {
	if len(l.Points) == 0 {
		return core.BBox{}
	}
	return core.BBoxOf(l.Points...)
}

func (l *Polyline) Clone() Entity {
	n := *l
	n.BaseEntity = l.BaseEntity.clone()
	n.Points = slices.Clone(l.Points)
	return &n
}

func segmentsOf(points []core.Point, closed bool) [][2]core.Point {
	if len(points) < 2 {
		return nil
	}
	segs := make([][2]core.Point, 0, len(points))
	for i := 1; i < len(points); i++ {
		segs = append(segs, [2]core.Point{points[i-1], points[i]})
	}
	if closed && len(points) > 2 {
		segs = append(segs, [2]core.Point{points[len(points)-1], points[0]})
	}
	return segs
}
