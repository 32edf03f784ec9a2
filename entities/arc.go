package entities

import (
	"math"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// Arc 圆弧，从 StartAngle 逆时针到 EndAngle，角度为弧度
type Arc struct {
	BaseEntity
	Center     core.Point
	Radius     float64 `validate:"gte=0"`
	StartAngle float64
	EndAngle   float64
}

func init() {
	Register("ARC", func() Entity { return &Arc{BaseEntity: NewBase("0")} })
}

func NewArc(center core.Point, radius, start, end float64) *Arc {
	return &Arc{BaseEntity: NewBase("0"), Center: center, Radius: radius, StartAngle: start, EndAngle: end}
}

func (*Arc) entity() {}

func (a *Arc) Type() Kind { return KindArc }

func (a *Arc) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		if !a.parseCommon(t) {
			switch t.Code {
			case 10:
				a.Center.X = t.AsFloat()
			case 20:
				a.Center.Y = t.AsFloat()
			case 40:
				a.Radius = math.Abs(t.AsFloat())
			case 50: // DXF 中是角度制
				a.StartAngle = t.AsFloat() * math.Pi / 180
			case 51:
				a.EndAngle = t.AsFloat() * math.Pi / 180
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (a *Arc) StartPoint() core.Point {
	return a.pointAt(a.StartAngle)
}

func (a *Arc) EndPoint() core.Point {
	return a.pointAt(a.EndAngle)
}

func (a *Arc) pointAt(rad float64) core.Point {
	return core.Point{X: a.Center.X + a.Radius*math.Cos(rad), Y: a.Center.Y + a.Radius*math.Sin(rad)}
}

// Contains 角度是否落在圆弧扫过的范围内
func (a *Arc) Contains(rad float64) bool {
	return geom.AngleInSweep(rad, a.StartAngle, a.EndAngle)
}

// Sweep 扫过的弧度，范围 (0, 2π]
func (a *Arc) Sweep() float64 {
	return geom.Sweep(a.StartAngle, a.EndAngle)
}

func (a *Arc) Length() float64 {
	return a.Radius * a.Sweep()
}

// BBox 端点加上扫过的象限点
func (a *Arc) BBox() core.BBox {
	box := core.BBoxOf(a.StartPoint(), a.EndPoint())
	for i := 0; i < 4; i++ {
		rad := float64(i) * math.Pi / 2
		if a.Contains(rad) {
			box = box.Extend(a.pointAt(rad))
		}
	}
	return box
}

func (a *Arc) Clone() Entity {
	n := *a
	n.BaseEntity = a.BaseEntity.clone()
	return &n
}
