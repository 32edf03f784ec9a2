package constraint

import (
	"context"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

// Manager 保存约束并求解。与关联标注不同，约束不允许引用已删除的实体，
// 宿主删除实体时需要调用 RemoveForEntity。
type Manager struct {
	lookup      Lookup
	constraints map[string]*Constraint
	order       []string
	now         func() time.Time
}

func NewManager(lookup Lookup) *Manager {
	return &Manager{
		lookup:      lookup,
		constraints: make(map[string]*Constraint),
		now:         time.Now,
	}
}

func (m *Manager) resolve(ids []string) ([]entities.Entity, bool) {
	list := make([]entities.Entity, 0, len(ids))
	for _, id := range ids {
		e, ok := m.lookup(id)
		if !ok || e == nil {
			return nil, false
		}
		list = append(list, e)
	}
	return list, true
}

// Create 创建约束，实体不存在、重复或与类型不匹配时返回 false
func (m *Manager) Create(p Params) (string, bool) {
	for i, id := range p.EntityIDs {
		if slices.Contains(p.EntityIDs[:i], id) {
			return "", false
		}
	}
	list, ok := m.resolve(p.EntityIDs)
	if !ok || !compatible(p, list) {
		core.Logger().Debug("constraint: rejected", "type", p.Type, "entities", p.EntityIDs)
		return "", false
	}

	c := &Constraint{
		ID:        uuid.NewString(),
		Type:      p.Type,
		EntityIDs: slices.Clone(p.EntityIDs),
		Value:     p.Value,
		Active:    true,
		Created:   m.now(),
	}
	if p.Type == Fixed {
		c.Anchor, _ = tail(list[0])
	}

	m.constraints[c.ID] = c
	m.order = append(m.order, c.ID)
	return c.ID, true
}

func (m *Manager) Remove(id string) bool {
	if _, ok := m.constraints[id]; !ok {
		return false
	}
	delete(m.constraints, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return true
}

// Toggle 设置约束是否参与求解，active 为 nil 时取反
func (m *Manager) Toggle(id string, active *bool) bool {
	c, ok := m.constraints[id]
	if !ok {
		return false
	}
	if active == nil {
		c.Active = !c.Active
	} else {
		c.Active = *active
	}
	return true
}

func (m *Manager) Constraint(id string) (Constraint, bool) {
	c, ok := m.constraints[id]
	if !ok {
		return Constraint{}, false
	}
	return c.clone(), true
}

func (m *Manager) Constraints() []Constraint {
	out := make([]Constraint, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.constraints[id].clone())
	}
	return out
}

// ForEntity 引用了该实体的约束
func (m *Manager) ForEntity(entityID string) []Constraint {
	var out []Constraint
	for _, id := range m.order {
		if c := m.constraints[id]; slices.Contains(c.EntityIDs, entityID) {
			out = append(out, c.clone())
		}
	}
	return out
}

// RemoveForEntity 删除引用了该实体的全部约束，返回被删除的 id
func (m *Manager) RemoveForEntity(entityID string) []string {
	var removed []string
	for _, c := range m.ForEntity(entityID) {
		m.Remove(c.ID)
		removed = append(removed, c.ID)
	}
	return removed
}

// Solve 并行求解全部启用的约束，结果按创建顺序返回。
// 求解期间宿主不能修改实体。
func (m *Manager) Solve(ctx context.Context) ([]Solution, error) {
	start := time.Now()
	defer func() {
		solveDuration.Observe(time.Since(start).Seconds())
	}()

	var active []*Constraint
	for _, id := range m.order {
		if c := m.constraints[id]; c.Active {
			active = append(active, c)
		}
	}

	solutions := make([]Solution, len(active))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := Solution{ConstraintID: c.ID}
			if list, ok := m.resolve(c.EntityIDs); ok {
				s.Updates, s.Satisfied = solve(c, list)
			}
			solutions[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, s := range solutions {
		solutionTotal.WithLabelValues(satisfiedLabel(s.Satisfied)).Inc()
	}
	core.Logger().Debug("constraint: solved", "active", len(active))
	return solutions, nil
}

func satisfiedLabel(ok bool) string {
	if ok {
		return "satisfied"
	}
	return "unsatisfied"
}
