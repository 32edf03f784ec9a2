package geom

import "github.com/zooyer/cad/core"

// SimplifyPolyline Douglas-Peucker 折线简化。
// 距离相同时取下标最小的点，保证同样的输入顺序得到同样的结果。
func SimplifyPolyline(points []core.Point, epsilon float64) []core.Point {
	if len(points) < 3 {
		return append([]core.Point(nil), points...)
	}

	keep := make([]bool, len(points))
	keep[0], keep[len(points)-1] = true, true

	// 用显式栈代替递归，避免长折线爆栈
	type span struct{ first, last int }
	stack := []span{{0, len(points) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		index, maxDist := -1, -1.0
		for i := s.first + 1; i < s.last; i++ {
			d := DistanceToSegment(points[i], points[s.first], points[s.last])
			if d > maxDist {
				index, maxDist = i, d
			}
		}
		if index < 0 || maxDist <= epsilon {
			continue
		}
		keep[index] = true
		stack = append(stack, span{index, s.last}, span{s.first, index})
	}

	result := make([]core.Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			result = append(result, p)
		}
	}
	return result
}
