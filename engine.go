package cad

import (
	"context"
	"fmt"

	"github.com/zooyer/cad/assoc"
	"github.com/zooyer/cad/constraint"
	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/snap"
)

// FindBestSnapPoint 光标附近最合适的吸附点，ref 为切点、垂足使用的参考点
func (d *Document) FindBestSnapPoint(p core.Point, ref *core.Point) (snap.Candidate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolver.FindBestSnapPoint(p, ref)
}

func (d *Document) SnapSettings() snap.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolver.Settings()
}

func (d *Document) SetSnapSettings(s snap.Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolver.SetSettings(s)
}

// CreateRelationship 只保存关联关系，不立即重算，
// 标注的值在下一次修改文档或更新标注时刷新
func (d *Document) CreateRelationship(dimensionID string, entityIDs []string, typ assoc.RelationshipType, formula string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.dimensions.get(dimensionID); !ok {
		return "", fmt.Errorf("%w: dimension %s", ErrNotFound, dimensionID)
	}
	id, err := d.engine.CreateRelationship(dimensionID, entityIDs, typ, formula)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *Document) RemoveRelationship(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.RemoveRelationship(id)
}

// AddDependency 标注之间的公式依赖，在自变量标注被修改时生效
func (d *Document) AddDependency(dep assoc.Dependency) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.AddDependency(dep)
}

func (d *Document) RemoveDependency(dependentID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.RemoveDependency(dependentID)
}

func (d *Document) Relationships() []assoc.Relationship {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.GetAllRelationships()
}

func (d *Document) RelationshipsForEntity(id string) []assoc.Relationship {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.GetRelationshipsForEntity(id)
}

func (d *Document) AddUpdateListener(fn assoc.Listener) assoc.ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.AddUpdateListener(fn)
}

func (d *Document) RemoveUpdateListener(id assoc.ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.RemoveUpdateListener(id)
}

// CreateConstraint 实体不存在或类型不匹配时返回 false
func (d *Document) CreateConstraint(p constraint.Params) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.constraints.Create(p)
	if ok && d.autoSolve {
		d.geometryChanged()
	}
	return id, ok
}

func (d *Document) RemoveConstraint(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.constraints.Remove(id)
}

// ToggleConstraint active 为 nil 时取反
func (d *Document) ToggleConstraint(id string, active *bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.constraints.Toggle(id, active)
}

func (d *Document) Constraints() []constraint.Constraint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.constraints.Constraints()
}

func (d *Document) ConstraintsForEntity(id string) []constraint.Constraint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.constraints.ForEntity(id)
}

// SolveConstraints 求解并应用全部可满足的约束。所有更新要么全部生效，要么全部不生效。
func (d *Document) SolveConstraints(ctx context.Context) ([]constraint.Solution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	solutions, err := d.solve(ctx)
	if err != nil {
		return nil, err
	}
	d.refresh()
	return solutions, nil
}

// solve 求解后先在副本上应用全部更新并校验，全部通过后再写回
func (d *Document) solve(ctx context.Context) ([]constraint.Solution, error) {
	solutions, err := d.constraints.Solve(ctx)
	if err != nil {
		return nil, err
	}

	// 1. 副本上按求解顺序应用
	trials := map[string]entities.Entity{}
	var order []string
	for _, s := range solutions {
		if !s.Satisfied {
			continue
		}
		for id, fields := range s.Updates {
			trial, ok := trials[id]
			if !ok {
				e, ok := d.entities.get(id)
				if !ok {
					return nil, fmt.Errorf("%w: entity %s", ErrNotFound, id)
				}
				trial = e.Clone()
				trials[id] = trial
				order = append(order, id)
			}
			if err := entities.Apply(trial, fields); err != nil {
				return nil, fmt.Errorf("cad: constraint %s: %w", s.ConstraintID, err)
			}
		}
	}
	for _, id := range order {
		if err := entities.Validate(trials[id]); err != nil {
			return nil, fmt.Errorf("cad: constraint result for %s: %w", id, err)
		}
	}

	// 2. 全部通过，写回
	for _, s := range solutions {
		if !s.Satisfied {
			continue
		}
		for id, fields := range s.Updates {
			e, _ := d.entities.get(id)
			if err := entities.Apply(e, fields); err != nil {
				// 副本上已经成功，这里不会失败
				core.Logger().Error("cad: apply constraint update", "entity", id, "error", err)
			}
		}
	}
	return solutions, nil
}
