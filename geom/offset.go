package geom

import "github.com/zooyer/cad/core"

// OffsetSegment 线段沿左法线方向平移 distance(负值向右)，零长度线段无结果
func OffsetSegment(a, b core.Point, distance float64) (core.Point, core.Point, bool) {
	dir, ok := b.Sub(a).Normalize()
	if !ok {
		return core.Point{}, core.Point{}, false
	}
	n := dir.Perp().Mul(distance)
	return a.Add(n), b.Add(n), true
}

// dedupe 去掉相邻的重复点，closed 时也去掉与首点重复的尾点
func dedupe(points []core.Point, closed bool) []core.Point {
	out := make([]core.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// OffsetPolyline 逐段沿法线偏移，相邻偏移段取直线交点拼接。
// 相邻段平行求不出交点时，直接使用前一段偏移后的端点(有损，但不报错)。
func OffsetPolyline(points []core.Point, distance float64, closed bool) []core.Point {
	pts := dedupe(points, closed)
	if len(pts) < 2 {
		return nil
	}

	// 1. 计算每一段的偏移线段
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	type segment struct{ a, b core.Point }
	segs := make([]segment, 0, n)
	for i := 0; i < n; i++ {
		a, b, ok := OffsetSegment(pts[i], pts[(i+1)%len(pts)], distance)
		if !ok {
			continue
		}
		segs = append(segs, segment{a, b})
	}
	if len(segs) == 0 {
		return nil
	}

	join := func(prev, next segment) core.Point {
		if p, ok := InfiniteLineIntersection(prev.a, prev.b, next.a, next.b); ok {
			return p
		}
		return prev.b
	}

	// 2. 拼接相邻段
	result := make([]core.Point, 0, len(segs)+1)
	if closed {
		for i := range segs {
			prev := segs[(i-1+len(segs))%len(segs)]
			result = append(result, join(prev, segs[i]))
		}
		return result
	}

	result = append(result, segs[0].a)
	for i := 1; i < len(segs); i++ {
		result = append(result, join(segs[i-1], segs[i]))
	}
	return append(result, segs[len(segs)-1].b)
}
