package assoc

import (
	"fmt"
	"math"

	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/formula"
	"github.com/zooyer/cad/geom"
)

// CalculateLinear 前两个实体参考点之间的距离
func CalculateLinear(list []entities.Entity) (float64, bool) {
	if len(list) < 2 || list[0] == nil || list[1] == nil {
		return 0, false
	}
	a, ok1 := entities.ReferencePoint(list[0])
	b, ok2 := entities.ReferencePoint(list[1])
	if !ok1 || !ok2 {
		return 0, false
	}
	return finite(geom.Distance(a, b))
}

// CalculateAngular 两条直线方向的夹角，角度制，范围 [0,180]
func CalculateAngular(list []entities.Entity) (float64, bool) {
	if len(list) < 2 {
		return 0, false
	}
	l1, ok1 := list[0].(*entities.Line)
	l2, ok2 := list[1].(*entities.Line)
	if !ok1 || !ok2 || l1.Degenerate() || l2.Degenerate() {
		return 0, false
	}

	a1 := geom.Angle(l1.Start, l1.End) * 180 / math.Pi
	a2 := geom.Angle(l2.Start, l2.End) * 180 / math.Pi
	diff := math.Mod(math.Abs(a1-a2), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return finite(diff)
}

// CalculateRadial 第一个圆/圆弧的半径
func CalculateRadial(list []entities.Entity) (float64, bool) {
	if len(list) < 1 || list[0] == nil {
		return 0, false
	}
	r, ok := entities.Radius(list[0])
	if !ok {
		return 0, false
	}
	return finite(r)
}

// CalculateArea 第一个封闭图形的面积
func CalculateArea(list []entities.Entity) (float64, bool) {
	if len(list) < 1 || list[0] == nil {
		return 0, false
	}
	a, ok := entities.Area(list[0])
	if !ok {
		return 0, false
	}
	return finite(a)
}

// CalculateCustom 以 entityN.length/radius/diameter/area(N 从 1 开始)为变量求值公式
func CalculateCustom(expr string, list []entities.Entity) (float64, error) {
	vars := formula.Vars{}
	for i, e := range list {
		entityVars(vars, i+1, e)
	}
	return formula.Eval(expr, vars)
}

// entityVars 写入第 n 个实体可用的变量，实体不支持的量不写入
func entityVars(vars formula.Vars, n int, e entities.Entity) {
	if e == nil {
		return
	}
	prefix := fmt.Sprintf("entity%d.", n)
	if v, ok := entities.Length(e); ok {
		vars[prefix+"length"] = v
	}
	if r, ok := entities.Radius(e); ok {
		vars[prefix+"radius"] = r
		vars[prefix+"diameter"] = 2 * r
	}
	if a, ok := entities.Area(e); ok {
		vars[prefix+"area"] = a
	}
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
