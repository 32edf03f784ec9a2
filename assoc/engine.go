package assoc

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/formula"
)

type listener struct {
	id ListenerID
	fn Listener
}

type Engine struct {
	relationships map[string]*Relationship
	relOrder      []string // 创建顺序，重算按此顺序进行
	dependencies  map[string]*Dependency
	depOrder      []string

	// 宿主最近一次 UpdateData 提供的快照
	entities   map[string]entities.Entity
	dimensions map[string]*entities.Dimension

	listeners    []listener
	nextListener ListenerID

	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{
		relationships: make(map[string]*Relationship),
		dependencies:  make(map[string]*Dependency),
		entities:      make(map[string]entities.Entity),
		dimensions:    make(map[string]*entities.Dimension),
		now:           time.Now,
	}
}

// CreateRelationship 保存关联关系，不立即重算(下一次 UpdateData 或 UpdateDimension 时生效)
func (e *Engine) CreateRelationship(dimensionID string, entityIDs []string, typ RelationshipType, expr string) (string, error) {
	if dimensionID == "" {
		return "", ErrMissingDimension
	}
	if !typ.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}

	now := e.now()
	r := &Relationship{
		ID:          uuid.NewString(),
		DimensionID: dimensionID,
		EntityIDs:   slices.Clone(entityIDs),
		Type:        typ,
		Formula:     expr,
		Created:     now,
		Modified:    now,
	}
	e.relationships[r.ID] = r
	e.relOrder = append(e.relOrder, r.ID)
	return r.ID, nil
}

// SetParameters 替换 custom 公式可引用的命名参数
func (e *Engine) SetParameters(id string, params map[string]float64) bool {
	r, ok := e.relationships[id]
	if !ok {
		return false
	}
	r.Parameters = params
	r.Modified = e.now()
	return true
}

func (e *Engine) RemoveRelationship(id string) bool {
	if _, ok := e.relationships[id]; !ok {
		return false
	}
	delete(e.relationships, id)
	e.relOrder = slices.DeleteFunc(e.relOrder, func(s string) bool { return s == id })
	return true
}

// PruneRelationships 删除引用已全部失效(所有实体都不在快照中)或标注已不存在的关系，返回被删除的 id。
// 引擎不会自动调用，由宿主在删除实体时按需触发。
func (e *Engine) PruneRelationships() []string {
	var removed []string
	for _, id := range slices.Clone(e.relOrder) {
		r := e.relationships[id]
		_, hasDim := e.dimensions[r.DimensionID]
		if hasDim && slices.ContainsFunc(r.EntityIDs, e.exists) {
			continue
		}
		e.RemoveRelationship(id)
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		core.Logger().Debug("assoc: pruned relationships", "count", len(removed))
	}
	return removed
}

func (e *Engine) exists(id string) bool {
	if _, ok := e.entities[id]; ok {
		return true
	}
	_, ok := e.dimensions[id]
	return ok
}

func (e *Engine) Relationship(id string) (Relationship, bool) {
	r, ok := e.relationships[id]
	if !ok {
		return Relationship{}, false
	}
	return r.clone(), true
}

// GetAllRelationships 全部关系的副本，按创建顺序
func (e *Engine) GetAllRelationships() []Relationship {
	out := make([]Relationship, 0, len(e.relOrder))
	for _, id := range e.relOrder {
		out = append(out, e.relationships[id].clone())
	}
	return out
}

// GetRelationshipsForEntity 引用了该实体的关系
func (e *Engine) GetRelationshipsForEntity(entityID string) []Relationship {
	var out []Relationship
	for _, id := range e.relOrder {
		if r := e.relationships[id]; slices.Contains(r.EntityIDs, entityID) {
			out = append(out, r.clone())
		}
	}
	return out
}

// AddDependency 添加或替换 dep.DependentID 的依赖
func (e *Engine) AddDependency(dep Dependency) error {
	if dep.DependentID == "" {
		return ErrMissingDimension
	}
	if _, ok := e.dependencies[dep.DependentID]; !ok {
		e.depOrder = append(e.depOrder, dep.DependentID)
	}
	dep.IndependentIDs = slices.Clone(dep.IndependentIDs)
	e.dependencies[dep.DependentID] = &dep
	return nil
}

func (e *Engine) RemoveDependency(dependentID string) bool {
	if _, ok := e.dependencies[dependentID]; !ok {
		return false
	}
	delete(e.dependencies, dependentID)
	e.depOrder = slices.DeleteFunc(e.depOrder, func(s string) bool { return s == dependentID })
	return true
}

func (e *Engine) Dependencies() []Dependency {
	out := make([]Dependency, 0, len(e.depOrder))
	for _, id := range e.depOrder {
		dep := *e.dependencies[id]
		dep.IndependentIDs = slices.Clone(dep.IndependentIDs)
		out = append(out, dep)
	}
	return out
}

// AddUpdateListener 注册监听，事件按发生顺序同步回调。监听中不能再调用引擎。
func (e *Engine) AddUpdateListener(fn Listener) ListenerID {
	e.nextListener++
	e.listeners = append(e.listeners, listener{id: e.nextListener, fn: fn})
	return e.nextListener
}

func (e *Engine) RemoveUpdateListener(id ListenerID) bool {
	n := len(e.listeners)
	e.listeners = slices.DeleteFunc(e.listeners, func(l listener) bool { return l.id == id })
	return len(e.listeners) != n
}

func (e *Engine) notify(events []UpdateEvent) {
	for _, ev := range events {
		updateEventTotal.WithLabelValues(string(ev.Source)).Inc()
		for _, l := range e.listeners {
			l.fn(ev)
		}
	}
}

// UpdateData 整体替换快照并重算全部关系，然后把变化沿依赖传递。
// 同样的数据连续调用两次，第二次不产生事件。
func (e *Engine) UpdateData(list []entities.Entity, dims []*entities.Dimension) []UpdateEvent {
	start := time.Now()
	defer func() {
		recomputeDuration.Observe(time.Since(start).Seconds())
	}()

	e.entities = make(map[string]entities.Entity, len(list))
	for _, ent := range list {
		e.entities[ent.Base().ID] = ent
	}
	e.dimensions = make(map[string]*entities.Dimension, len(dims))
	for _, d := range dims {
		e.dimensions[d.ID] = d
	}

	// 1. 全量重算，按创建顺序
	var (
		events  []UpdateEvent
		changed []string
	)
	for _, id := range e.relOrder {
		r := e.relationships[id]
		dim, ok := e.dimensions[r.DimensionID]
		if !ok {
			continue
		}
		v, ok := e.calculate(r)
		if !ok {
			continue
		}
		if ev, ok := e.write(dim, v, SourceCalculation, false); ok {
			events = append(events, ev)
			changed = append(changed, dim.ID)
		}
	}

	// 2. 传递到依赖这些标注的标注
	events = append(events, e.propagate(changed, make(map[string]bool))...)

	core.Logger().Debug("assoc: recomputed", "relationships", len(e.relOrder), "events", len(events))
	e.notify(events)
	return events
}

// UpdateDimension 写入标注的新值并传递给相关标注。
// 返回的第一个事件是本次写入，其后是传递产生的 calculation 事件。
func (e *Engine) UpdateDimension(dimensionID string, value float64, source Source) ([]UpdateEvent, error) {
	dim, ok := e.dimensions[dimensionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDimensionNotFound, dimensionID)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrInvalidValue
	}

	primary, _ := e.write(dim, value, source, true)
	events := []UpdateEvent{primary}
	events = append(events, e.propagate([]string{dimensionID}, map[string]bool{dimensionID: true})...)

	e.notify(events)
	return events, nil
}

// Calculate 按当前快照计算关系的值，引用失效或公式错误时返回 false
func (e *Engine) Calculate(id string) (float64, bool) {
	r, ok := e.relationships[id]
	if !ok {
		return 0, false
	}
	return e.calculate(r)
}

// propagate 广度优先传递变化。visited 中的标注本次不再更新，每个标注最多更新一次，
// 所以存在环时也会结束，环上的值留到下一次调用时继续收敛。
func (e *Engine) propagate(queue []string, visited map[string]bool) []UpdateEvent {
	var (
		events []UpdateEvent
		owned  map[string]bool
	)
	update := func(dim *entities.Dimension, v float64) {
		if ev, ok := e.write(dim, v, SourceCalculation, false); ok {
			events = append(events, ev)
			visited[dim.ID] = true
			queue = append(queue, dim.ID)
		}
	}

	for len(queue) > 0 {
		changed := queue[0]
		queue = queue[1:]

		// 1. 与变化相关联的实体：标注本身以及它所测量的实体
		linked := map[string]bool{changed: true}
		for _, id := range e.relOrder {
			if r := e.relationships[id]; r.DimensionID == changed {
				for _, eid := range r.EntityIDs {
					linked[eid] = true
				}
			}
		}

		// 2. 引用了这些实体的其他关系
		for _, id := range e.relOrder {
			r := e.relationships[id]
			if r.DimensionID == changed || visited[r.DimensionID] {
				continue
			}
			if !slices.ContainsFunc(r.EntityIDs, func(s string) bool { return linked[s] }) {
				continue
			}
			dim, ok := e.dimensions[r.DimensionID]
			if !ok {
				continue
			}
			if v, ok := e.calculate(r); ok {
				update(dim, v)
			}
		}

		// 3. 以公式依赖于该标注的标注，已由关联关系确定值的标注不受依赖影响
		for _, id := range e.depOrder {
			dep := e.dependencies[id]
			if dep.DependentID == changed || visited[dep.DependentID] || !slices.Contains(dep.IndependentIDs, changed) {
				continue
			}
			if owned == nil {
				owned = e.owned()
			}
			if owned[dep.DependentID] {
				continue
			}
			dim, ok := e.dimensions[dep.DependentID]
			if !ok {
				continue
			}
			if v, ok := e.evaluate(dep); ok {
				update(dim, v)
			}
		}
	}
	return events
}

// write 写入标注缓存。force 为 false 时，与缓存值相差不超过 Tolerance 则不写入
func (e *Engine) write(dim *entities.Dimension, v float64, source Source, force bool) (UpdateEvent, bool) {
	old := cachedValue(dim)
	next, ok := entities.ParseValue(entities.FormatValue(v))
	if !ok {
		return UpdateEvent{}, false
	}
	if !force && math.Abs(next-old) <= Tolerance {
		return UpdateEvent{}, false
	}

	dim.SetValue(v)
	dim.Modified = e.now()
	return UpdateEvent{
		DimensionID: dim.ID,
		OldValue:    old,
		NewValue:    next,
		Source:      source,
		Timestamp:   dim.Modified,
	}, true
}

// cachedValue 缓存文字中的数值，没有数值时视为 0
func cachedValue(dim *entities.Dimension) float64 {
	v, _ := dim.Value()
	return v
}

func (e *Engine) resolve(ids []string) []entities.Entity {
	list := make([]entities.Entity, len(ids))
	for i, id := range ids {
		list[i] = e.entities[id]
	}
	return list
}

// owned 有可计算的关联关系的标注，它们的值由几何决定
func (e *Engine) owned() map[string]bool {
	owned := make(map[string]bool)
	for _, id := range e.relOrder {
		r := e.relationships[id]
		if owned[r.DimensionID] {
			continue
		}
		if _, ok := e.dimensions[r.DimensionID]; !ok {
			continue
		}
		if _, ok := e.compute(r); ok {
			owned[r.DimensionID] = true
		}
	}
	return owned
}

func (e *Engine) calculate(r *Relationship) (float64, bool) {
	v, ok := e.compute(r)
	if !ok {
		unevaluableTotal.WithLabelValues(string(r.Type)).Inc()
	}
	return v, ok
}

func (e *Engine) compute(r *Relationship) (v float64, ok bool) {
	switch r.Type {
	case Linear:
		v, ok = CalculateLinear(e.resolve(r.EntityIDs))
	case Angular:
		v, ok = CalculateAngular(e.resolve(r.EntityIDs))
	case Radial:
		v, ok = CalculateRadial(e.resolve(r.EntityIDs))
	case Area:
		v, ok = CalculateArea(e.resolve(r.EntityIDs))
	case Custom:
		v, ok = e.custom(r)
	}
	return
}

// custom 实体提供 entityN.length/radius/diameter/area，被引用的标注提供 entityN.value，
// 关系参数按名字直接引用
func (e *Engine) custom(r *Relationship) (float64, bool) {
	vars := formula.Vars{}
	for name, v := range r.Parameters {
		vars[name] = v
	}
	for i, id := range r.EntityIDs {
		if ent, ok := e.entities[id]; ok {
			entityVars(vars, i+1, ent)
		} else if dim, ok := e.dimensions[id]; ok {
			if v, ok := dim.Value(); ok {
				vars[fmt.Sprintf("entity%d.value", i+1)] = v
			}
		}
	}

	v, err := formula.Eval(r.Formula, vars)
	if err != nil {
		core.Logger().Warn("assoc: custom formula failed", "relationship", r.ID, "formula", r.Formula, "error", err)
		return 0, false
	}
	return v, true
}

// evaluate 依赖公式，dimN 为第 N 个自变量标注的当前值
func (e *Engine) evaluate(dep *Dependency) (float64, bool) {
	vars := formula.Vars{}
	for i, id := range dep.IndependentIDs {
		if dim, ok := e.dimensions[id]; ok {
			if v, ok := dim.Value(); ok {
				vars[fmt.Sprintf("dim%d", i+1)] = v
			}
		}
	}

	v, err := formula.Eval(dep.Formula, vars)
	if err != nil {
		unevaluableTotal.WithLabelValues("dependency").Inc()
		core.Logger().Warn("assoc: dependency formula failed", "dependent", dep.DependentID, "formula", dep.Formula, "error", err)
		return 0, false
	}
	return v, true
}
