package constraint

import (
	"math"
	"slices"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/geom"
)

// compatible 检查约束类型与实体类型、数量是否匹配
func compatible(p Params, list []entities.Entity) bool {
	n := len(list)
	all := func(fn func(entities.Entity) bool) bool {
		return !slices.ContainsFunc(list, func(e entities.Entity) bool { return !fn(e) })
	}

	switch p.Type {
	case Horizontal, Vertical:
		return n == 1 && all(isLine)
	case Parallel, Perpendicular:
		return n == 2 && all(isLine)
	case Equal:
		return n == 2 && (all(isLine) || all(isRound))
	case Fixed:
		return n == 1 && all(movable)
	case Coincident:
		return n == 2 && all(movable)
	case Distance:
		return n == 2 && p.Value >= 0 && core.IsFinite(p.Value) && all(hasReference)
	case Radius:
		return n == 1 && p.Value > 0 && core.IsFinite(p.Value) && all(hasRadius)
	case Concentric:
		return n == 2 && all(hasCenter)
	}
	return false
}

func isLine(e entities.Entity) bool {
	_, ok := e.(*entities.Line)
	return ok
}

func isRound(e entities.Entity) bool {
	switch e.(type) {
	case *entities.Circle, *entities.Arc:
		return true
	}
	return false
}

func hasReference(e entities.Entity) bool {
	_, ok := entities.ReferencePoint(e)
	return ok
}

func hasRadius(e entities.Entity) bool {
	_, ok := entities.Radius(e)
	return ok
}

func hasCenter(e entities.Entity) bool {
	_, ok := center(e)
	return ok
}

func movable(e entities.Entity) bool {
	_, ok := tail(e)
	return ok
}

func center(e entities.Entity) (core.Point, bool) {
	switch v := e.(type) {
	case *entities.Circle:
		return v.Center, true
	case *entities.Arc:
		return v.Center, true
	case *entities.Ellipse:
		return v.Center, true
	case *entities.Polygon:
		return v.Center, true
	}
	return core.Point{}, false
}

// tail 实体的起始定位点：直线起点、多段线首点、矩形角点，其余取中心
func tail(e entities.Entity) (core.Point, bool) {
	switch v := e.(type) {
	case *entities.Line:
		return v.Start, true
	case *entities.Polyline:
		if len(v.Points) == 0 {
			return core.Point{}, false
		}
		return v.Points[0], true
	case *entities.Rectangle:
		return v.Corner, true
	}
	return center(e)
}

// head 实体的末端定位点：直线终点、多段线末点，其余同 tail
func head(e entities.Entity) (core.Point, bool) {
	switch v := e.(type) {
	case *entities.Line:
		return v.End, true
	case *entities.Polyline:
		if len(v.Points) == 0 {
			return core.Point{}, false
		}
		return v.Points[len(v.Points)-1], true
	}
	return tail(e)
}

// translate 平移整个实体所需的字段更新
func translate(e entities.Entity, d core.Point) (entities.Fields, bool) {
	move := func(points []core.Point) []core.Point {
		out := make([]core.Point, len(points))
		for i, p := range points {
			out[i] = p.Add(d)
		}
		return out
	}

	switch v := e.(type) {
	case *entities.Line:
		return entities.Fields{"start": v.Start.Add(d), "end": v.End.Add(d)}, true
	case *entities.Circle, *entities.Arc, *entities.Ellipse, *entities.Polygon:
		c, _ := center(e)
		return entities.Fields{"center": c.Add(d)}, true
	case *entities.Rectangle:
		return entities.Fields{"corner": v.Corner.Add(d)}, true
	case *entities.Polyline:
		return entities.Fields{"points": move(v.Points)}, true
	}
	return nil, false
}

// lineTo 以中点为轴把直线转到 dir 方向(保持长度)，dir 取与原方向夹角较小的一侧
func lineTo(l *entities.Line, dir core.Point) entities.Fields {
	cur := l.End.Sub(l.Start)
	if cur.Dot(dir) < 0 {
		dir = dir.Mul(-1)
	}
	if math.Abs(cur.Cross(dir)) <= Tolerance {
		return nil
	}
	half := dir.Mul(l.Length() / 2)
	mid := l.Midpoint()
	return entities.Fields{"start": mid.Sub(half), "end": mid.Add(half)}
}

func direction(l *entities.Line) (core.Point, bool) {
	return l.End.Sub(l.Start).Normalize()
}

// solve 计算单条约束。返回的 Fields 为空表示约束已成立，ok 为 false 表示无法满足
func solve(c *Constraint, list []entities.Entity) (map[string]entities.Fields, bool) {
	updates := map[string]entities.Fields{}
	set := func(id string, f entities.Fields) {
		if len(f) > 0 {
			updates[id] = f
		}
	}

	switch c.Type {
	case Horizontal, Vertical:
		l := list[0].(*entities.Line)
		if l.Degenerate() {
			return nil, false
		}
		dir := core.Pt(1, 0)
		if c.Type == Vertical {
			dir = core.Pt(0, 1)
		}
		set(c.EntityIDs[0], lineTo(l, dir))

	case Parallel, Perpendicular:
		a, b := list[0].(*entities.Line), list[1].(*entities.Line)
		dir, ok := direction(a)
		if !ok || b.Degenerate() {
			return nil, false
		}
		if c.Type == Perpendicular {
			dir = dir.Perp()
		}
		set(c.EntityIDs[1], lineTo(b, dir))

	case Equal:
		switch a := list[0].(type) {
		case *entities.Line:
			b := list[1].(*entities.Line)
			dir, ok := direction(b)
			if !ok || a.Degenerate() {
				return nil, false
			}
			if !core.Equal(a.Length(), b.Length(), Tolerance) {
				set(c.EntityIDs[1], entities.Fields{"end": b.Start.Add(dir.Mul(a.Length()))})
			}
		default:
			ra, _ := entities.Radius(list[0])
			rb, _ := entities.Radius(list[1])
			if !core.Equal(ra, rb, Tolerance) {
				set(c.EntityIDs[1], entities.Fields{"radius": ra})
			}
		}

	case Fixed:
		p, ok := tail(list[0])
		if !ok {
			return nil, false
		}
		if !p.Equal(c.Anchor, Tolerance) {
			f, ok := translate(list[0], c.Anchor.Sub(p))
			if !ok {
				return nil, false
			}
			set(c.EntityIDs[0], f)
		}

	case Coincident:
		target, ok1 := head(list[0])
		p, ok2 := tail(list[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		if p.Equal(target, Tolerance) {
			break
		}
		// 直线和多段线只移动起点，其余整体平移
		switch v := list[1].(type) {
		case *entities.Line:
			set(c.EntityIDs[1], entities.Fields{"start": target})
		case *entities.Polyline:
			points := slices.Clone(v.Points)
			points[0] = target
			set(c.EntityIDs[1], entities.Fields{"points": points})
		default:
			f, ok := translate(v, target.Sub(p))
			if !ok {
				return nil, false
			}
			set(c.EntityIDs[1], f)
		}

	case Distance:
		a, ok1 := entities.ReferencePoint(list[0])
		b, ok2 := entities.ReferencePoint(list[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		if core.Equal(geom.Distance(a, b), c.Value, Tolerance) {
			break
		}
		dir, ok := b.Sub(a).Normalize()
		if !ok {
			// 参考点重合时方向不确定
			return nil, false
		}
		f, ok := translate(list[1], a.Add(dir.Mul(c.Value)).Sub(b))
		if !ok {
			return nil, false
		}
		set(c.EntityIDs[1], f)

	case Radius:
		r, _ := entities.Radius(list[0])
		if !core.Equal(r, c.Value, Tolerance) {
			set(c.EntityIDs[0], entities.Fields{"radius": c.Value})
		}

	case Concentric:
		a, _ := center(list[0])
		b, _ := center(list[1])
		if !a.Equal(b, Tolerance) {
			set(c.EntityIDs[1], entities.Fields{"center": a})
		}

	default:
		return nil, false
	}

	for _, f := range updates {
		for _, v := range f {
			if p, ok := v.(core.Point); ok && !p.IsFinite() {
				return nil, false
			}
		}
	}
	return updates, true
}
