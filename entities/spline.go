package entities

import (
	"slices"

	"github.com/zooyer/cad/core"
)

// Spline 夹紧的均匀 B 样条
type Spline struct {
	BaseEntity
	ControlPoints []core.Point
	Degree        int `validate:"gte=1"`
	Closed        bool
}

func init() {
	Register("SPLINE", func() Entity { return &Spline{BaseEntity: NewBase("0"), Degree: 3} })
}

func NewSpline(controlPoints []core.Point, degree int) *Spline {
	return &Spline{BaseEntity: NewBase("0"), ControlPoints: controlPoints, Degree: degree}
}

func (*Spline) entity() {}

func (s *Spline) Type() Kind { return KindSpline }

func (s *Spline) Parse(scanner *core.Scanner) error {
	var x float64
	for {
		t := scanner.LastTag
		if !s.parseCommon(t) {
			switch t.Code {
			case 10:
				x = t.AsFloat()
			case 20:
				s.ControlPoints = append(s.ControlPoints, core.Point{X: x, Y: t.AsFloat()})
			case 70:
				s.Closed = t.AsInt()&1 == 1
			case 71:
				s.Degree = t.AsInt()
			}
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}
	return nil
}

// Sample 在参数 [0,1] 上均匀取 n+1 个点(de Boor 算法)
func (s *Spline) Sample(n int) []core.Point {
	cp := s.ControlPoints
	if s.Closed && len(cp) > 2 {
		cp = append(slices.Clone(cp), cp[0])
	}
	if len(cp) < 2 || n < 1 {
		return slices.Clone(cp)
	}

	p := min(max(s.Degree, 1), len(cp)-1)
	knots := clampedKnots(len(cp), p)
	points := make([]core.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, deBoor(cp, knots, p, float64(i)/float64(n)))
	}
	return points
}

func (s *Spline) BBox() core.BBox {
	// 控制多边形的凸包包含整条曲线
	if len(s.ControlPoints) == 0 {
		return core.BBox{}
	}
	return core.BBoxOf(s.ControlPoints...)
}

func (s *Spline) Clone() Entity {
	n := *s
	n.BaseEntity = s.BaseEntity.clone()
	n.ControlPoints = slices.Clone(s.ControlPoints)
	return &n
}

func clampedKnots(n, p int) []float64 {
	knots := make([]float64, n+p+1)
	inner := n - p
	for i := range knots {
		switch {
		case i <= p:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-p) / float64(inner)
		}
	}
	return knots
}

func deBoor(cp []core.Point, knots []float64, p int, u float64) core.Point {
	// 1. 找到 u 所在的节点区间
	k := p
	for k < len(cp)-1 && u >= knots[k+1] {
		k++
	}

	// 2. 逐层插值
	d := make([]core.Point, p+1)
	for j := 0; j <= p; j++ {
		d[j] = cp[j+k-p]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			den := knots[j+1+k-r] - knots[j+k-p]
			alpha := 0.0
			if den != 0 {
				alpha = (u - knots[j+k-p]) / den
			}
			d[j] = d[j-1].Lerp(d[j], alpha)
		}
	}
	return d[p]
}
