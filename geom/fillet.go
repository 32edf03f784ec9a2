package geom

import (
	"math"

	"github.com/zooyer/cad/core"
)

// parallelTolerance 两段夹角与 0 或 π 的差小于该值视为平行
const parallelTolerance = 1e-10

// FilletResult 圆角结果，角度为弧度
type FilletResult struct {
	Center     core.Point
	StartAngle float64
	EndAngle   float64
	StartPoint core.Point // 在 p2→p1 段上的切点
	EndPoint   core.Point // 在 p2→p3 段上的切点
}

// ChamferResult 倒角结果
type ChamferResult struct {
	StartPoint core.Point
	EndPoint   core.Point
}

// cornerDirs 返回拐点 p2 处指向 p1、p3 的单位向量及夹角
func cornerDirs(p1, p2, p3 core.Point) (v1, v2 core.Point, theta float64, ok bool) {
	var ok1, ok2 bool
	if v1, ok1 = p1.Sub(p2).Normalize(); !ok1 {
		return
	}
	if v2, ok2 = p3.Sub(p2).Normalize(); !ok2 {
		return
	}
	cos := math.Max(-1, math.Min(1, v1.Dot(v2)))
	theta = math.Acos(cos)
	if theta < parallelTolerance || math.Pi-theta < parallelTolerance {
		return v1, v2, theta, false
	}
	return v1, v2, theta, true
}

// Fillet 在 p1-p2-p3 的拐角 p2 处构造半径为 radius 的圆角。
// 两段平行/反向平行或有零长度段时无结果。
func Fillet(p1, p2, p3 core.Point, radius float64) (FilletResult, bool) {
	if radius <= 0 {
		return FilletResult{}, false
	}
	v1, v2, theta, ok := cornerDirs(p1, p2, p3)
	if !ok {
		return FilletResult{}, false
	}

	// 1. 切点到拐点的距离
	tangentDist := radius / math.Tan(theta/2)

	// 2. 圆心在角平分线上
	bisector, ok := v1.Add(v2).Normalize()
	if !ok {
		return FilletResult{}, false
	}
	center := p2.Add(bisector.Mul(radius / math.Sin(theta/2)))

	start := p2.Add(v1.Mul(tangentDist))
	end := p2.Add(v2.Mul(tangentDist))
	result := FilletResult{
		Center:     center,
		StartAngle: Angle(center, start),
		EndAngle:   Angle(center, end),
		StartPoint: start,
		EndPoint:   end,
	}
	if !center.IsFinite() || !start.IsFinite() || !end.IsFinite() {
		return FilletResult{}, false
	}
	return result, true
}

// Chamfer 在拐角 p2 处沿两段分别截取 d1、d2 构造倒角
func Chamfer(p1, p2, p3 core.Point, d1, d2 float64) (ChamferResult, bool) {
	if d1 <= 0 || d2 <= 0 {
		return ChamferResult{}, false
	}
	v1, v2, _, ok := cornerDirs(p1, p2, p3)
	if !ok {
		return ChamferResult{}, false
	}
	if d1 > p1.Distance(p2) || d2 > p3.Distance(p2) {
		return ChamferResult{}, false
	}
	return ChamferResult{
		StartPoint: p2.Add(v1.Mul(d1)),
		EndPoint:   p2.Add(v2.Mul(d2)),
	}, true
}
