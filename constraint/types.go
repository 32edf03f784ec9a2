// Package constraint 几何约束：记录实体之间的约束，并由单遍求解器给出
// 使约束成立所需的字段更新。更新由宿主整体应用(全部或全不)。
package constraint

import (
	"slices"
	"time"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

type Type string

const (
	Coincident    Type = "coincident"    // 第二个实体的起点与第一个实体的终点重合
	Horizontal    Type = "horizontal"    // 直线水平
	Vertical      Type = "vertical"      // 直线竖直
	Parallel      Type = "parallel"      // 两直线平行
	Perpendicular Type = "perpendicular" // 两直线垂直
	Equal         Type = "equal"         // 两直线等长或两圆等半径
	Fixed         Type = "fixed"         // 实体保持在创建时的位置
	Distance      Type = "distance"      // 两实体参考点距离为 Value
	Radius        Type = "radius"        // 半径为 Value
	Concentric    Type = "concentric"    // 两实体中心重合
)

// Tolerance 约束已成立的判定阈值
const Tolerance = 1e-6

// Params 创建约束的参数
type Params struct {
	Type      Type
	EntityIDs []string
	Value     float64 // distance、radius 使用
}

type Constraint struct {
	ID        string
	Type      Type
	EntityIDs []string
	Value     float64
	Anchor    core.Point // fixed 记录的位置
	Active    bool
	Created   time.Time
}

func (c *Constraint) clone() Constraint {
	n := *c
	n.EntityIDs = slices.Clone(c.EntityIDs)
	return n
}

// Solution 一条约束的求解结果。Satisfied 为 false 时 Updates 为空，
// 为 true 且约束本来就成立时 Updates 也为空。
type Solution struct {
	ConstraintID string
	Satisfied    bool
	Updates      map[string]entities.Fields
}

// Lookup 按 id 查找实体，由宿主提供
type Lookup func(id string) (entities.Entity, bool)
