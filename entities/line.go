package entities

import (
	"github.com/zooyer/cad/core"
)

type Line struct {
	BaseEntity
	Start, End core.Point
}

func init() {
	Register("LINE", func() Entity { return &Line{BaseEntity: NewBase("0")} })
}

// NewLine 创建线段，id 在插入图纸时分配
func NewLine(start, end core.Point) *Line {
	return &Line{BaseEntity: NewBase("0"), Start: start, End: end}
}

func (*Line) entity() {}

func (l *Line) Type() Kind { return KindLine }

func (l *Line) Parse(s *core.Scanner) error {
	for {
		t := s.LastTag
		if !l.parseCommon(t) {
			switch t.Code {
			case 10:
				l.Start.X = t.AsFloat()
			case 20:
				l.Start.Y = t.AsFloat()
			case 11:
				l.End.X = t.AsFloat()
			case 21:
				l.End.Y = t.AsFloat()
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

func (l *Line) BBox() core.BBox {
	return core.BBoxOf(l.Start, l.End)
}

func (l *Line) Clone() Entity {
	c := *l
	c.BaseEntity = l.BaseEntity.clone()
	return &c
}

func (l *Line) Length() float64 {
	return l.Start.Distance(l.End)
}

func (l *Line) Midpoint() core.Point {
	return l.Start.Lerp(l.End, 0.5)
}

// Degenerate 零长度线段
func (l *Line) Degenerate() bool {
	return l.Start == l.End
}
