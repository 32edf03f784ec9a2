// Package snap 在光标附近寻找最合适的吸附点。
//
// 每个类别最多给出一个候选(该类别内距离最近的点)，
// 再在所有类别之间取距离最小者；距离相同时按 Category 的声明顺序，靠前的优先。
package snap

import "github.com/zooyer/cad/core"

// Category 吸附类别，声明顺序即平局时的优先级
type Category int

const (
	Endpoint Category = iota
	Midpoint
	Center
	Quadrant
	Intersection
	Tangent
	Perpendicular
	Nearest
	Grid
)

// Categories 全部类别，按优先级排列
var Categories = []Category{
	Endpoint, Midpoint, Center, Quadrant, Intersection, Tangent, Perpendicular, Nearest, Grid,
}

var names = [...]string{"endpoint", "midpoint", "center", "quadrant", "intersection", "tangent", "perpendicular", "nearest", "grid"}

var labels = [...]string{"端点", "中点", "圆心", "象限点", "交点", "切点", "垂足", "最近点", "网格"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

// Label 面向用户的类别名称
func (c Category) Label() string {
	if c < 0 || int(c) >= len(labels) {
		return ""
	}
	return labels[c]
}

// entityBased 需要实体才能产生候选的类别(网格以外的全部)
func (c Category) entityBased() bool {
	return c != Grid
}

// needsReference 切点与垂足需要参考点
func (c Category) needsReference() bool {
	return c == Tangent || c == Perpendicular
}

// Candidate 吸附候选。交点的 EntityID 是两个实体 id 用逗号连接
type Candidate struct {
	Point    core.Point
	Category Category
	Distance float64
	EntityID string
	Label    string
}
