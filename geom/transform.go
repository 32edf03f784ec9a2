package geom

import (
	"math"

	"github.com/zooyer/cad/core"
)

// Transform 缩放 -> 旋转 -> 平移 的仿射变换，Rotation 为角度制(与 DXF 一致)
type Transform struct {
	Translate core.Point
	Rotation  float64
	Scale     core.Point
}

// Identity 单位变换
func Identity() Transform {
	return Transform{Scale: core.Point{X: 1, Y: 1}}
}

// Apply 将局部坐标点变换到父级/世界坐标
func (t Transform) Apply(p core.Point) core.Point {
	rad := t.Rotation * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)

	// 1. 缩放
	tx, ty := p.X*t.Scale.X, p.Y*t.Scale.Y

	// 2. 旋转
	rx := tx*cos - ty*sin
	ry := tx*sin + ty*cos

	// 3. 平移
	return core.Point{X: rx + t.Translate.X, Y: ry + t.Translate.Y}
}

// Combine 嵌套块变换：child 先在自身坐标系变换，再经过 t 变换。
// 非均匀缩放与旋转叠加时结果是近似值。
func (t Transform) Combine(child Transform) Transform {
	return Transform{
		Rotation:  t.Rotation + child.Rotation,
		Scale:     core.Point{X: t.Scale.X * child.Scale.X, Y: t.Scale.Y * child.Scale.Y},
		Translate: t.Apply(child.Translate),
	}
}

// ApplyBBox 变换包围盒的四个角点后重新求包围盒
func (t Transform) ApplyBBox(local core.BBox) core.BBox {
	if local.IsEmpty() {
		return local
	}
	return core.BBoxOf(
		t.Apply(local.Min),
		t.Apply(core.Point{X: local.Max.X, Y: local.Min.Y}),
		t.Apply(local.Max),
		t.Apply(core.Point{X: local.Min.X, Y: local.Max.Y}),
	)
}

// MergeBoxes 反复合并间距不超过 gap 的包围盒，直到没有可合并的为止
func MergeBoxes(boxes []core.BBox, gap float64) []core.BBox {
	if len(boxes) < 2 {
		return boxes
	}

	for {
		changed := false
		var merged []core.BBox
		visited := make([]bool, len(boxes))
		for i := 0; i < len(boxes); i++ {
			if visited[i] {
				continue
			}
			curr := boxes[i]
			visited[i] = true
			for j := i + 1; j < len(boxes); j++ {
				if !visited[j] && !IsSeparate(curr, boxes[j], gap) {
					curr = curr.Union(boxes[j])
					visited[j], changed = true, true
				}
			}
			merged = append(merged, curr)
		}
		boxes = merged
		if !changed {
			break
		}
	}

	return boxes
}

// IsSeparate 判断两个 BBox 是否完全分离
func IsSeparate(a, b core.BBox, gap float64) bool {
	return a.Max.X+gap < b.Min.X || a.Min.X-gap > b.Max.X ||
		a.Max.Y+gap < b.Min.Y || a.Min.Y-gap > b.Max.Y
}
