package entities

import (
	"slices"

	"github.com/zooyer/cad/core"
)

type PathOp int

const (
	MoveTo  PathOp = iota // 1 个点
	LineTo                // 1 个点
	QuadTo                // 控制点 + 终点
	CubicTo               // 2 个控制点 + 终点
	ClosePath
)

// curveSteps 曲线展平时每段的采样数
const curveSteps = 16

type PathSegment struct {
	Op     PathOp
	Points []core.Point
}

// Path 由 MoveTo/LineTo/QuadTo/CubicTo/ClosePath 组成的自由路径
type Path struct {
	BaseEntity
	Segments []PathSegment
}

func NewPath(segments ...PathSegment) *Path {
	return &Path{BaseEntity: NewBase("0"), Segments: segments}
}

func (*Path) entity() {}

func (p *Path) Type() Kind { return KindPath }

// Flatten 把路径展平为若干条折线，每个子路径一条
func (p *Path) Flatten() (subpaths [][]core.Point, closed []bool) {
	var (
		current []core.Point
		pen     core.Point
	)
	flush := func(isClosed bool) {
		if len(current) > 1 {
			subpaths = append(subpaths, current)
			closed = append(closed, isClosed)
		}
		current = nil
	}

	for _, seg := range p.Segments {
		switch seg.Op {
		case MoveTo:
			if len(seg.Points) < 1 {
				continue
			}
			flush(false)
			pen = seg.Points[0]
			current = []core.Point{pen}
		case LineTo:
			if len(seg.Points) < 1 {
				continue
			}
			if len(current) == 0 {
				current = []core.Point{pen}
			}
			pen = seg.Points[0]
			current = append(current, pen)
		case QuadTo:
			if len(seg.Points) < 2 {
				continue
			}
			if len(current) == 0 {
				current = []core.Point{pen}
			}
			p0, c, end := pen, seg.Points[0], seg.Points[1]
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				current = append(current, p0.Lerp(c, t).Lerp(c.Lerp(end, t), t))
			}
			pen = end
		case CubicTo:
			if len(seg.Points) < 3 {
				continue
			}
			if len(current) == 0 {
				current = []core.Point{pen}
			}
			p0, c1, c2, end := pen, seg.Points[0], seg.Points[1], seg.Points[2]
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				a, b, c := p0.Lerp(c1, t), c1.Lerp(c2, t), c2.Lerp(end, t)
				current = append(current, a.Lerp(b, t).Lerp(b.Lerp(c, t), t))
			}
			pen = end
		case ClosePath:
			if len(current) > 0 {
				pen = current[0]
			}
			flush(true)
		}
	}
	flush(false)
	return subpaths, closed
}

func (p *Path) BBox() core.BBox {
	box := core.EmptyBBox()
	for _, seg := range p.Segments {
		for _, pt := range seg.Points {
			box = box.Extend(pt)
		}
	}
	if box.IsEmpty() {
		return core.BBox{}
	}
	return box
}

func (p *Path) Clone() Entity {
	n := *p
	n.BaseEntity = p.BaseEntity.clone()
	n.Segments = make([]PathSegment, len(p.Segments))
	for i, seg := range p.Segments {
		n.Segments[i] = PathSegment{Op: seg.Op, Points: slices.Clone(seg.Points)}
	}
	return &n
}
