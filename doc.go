// Package cad 二维绘图核心。Document 持有实体、标注、注释，以及吸附、
// 关联标注、约束三个引擎各一个实例；所有修改都经由 Document 完成，
// 修改后关联标注按完整的实体集合重新计算。
package cad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/zooyer/cad/assoc"
	"github.com/zooyer/cad/config"
	"github.com/zooyer/cad/constraint"
	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/dxf"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/snap"
)

var (
	ErrNotFound    = errors.New("cad: not found")
	ErrDuplicateID = errors.New("cad: duplicate id")
)

// DeleteOptions 删除实体时的附加行为
type DeleteOptions struct {
	// PruneRelationships 同时删除引用全部失效的关联关系，默认保留(暂时无法计算)
	PruneRelationships bool
}

// store 按插入顺序保存带 id 的对象
type store[T any] struct {
	items map[string]T
	order []string
}

func newStore[T any]() store[T] {
	return store[T]{items: make(map[string]T)}
}

func (s *store[T]) get(id string) (T, bool) {
	v, ok := s.items[id]
	return v, ok
}

func (s *store[T]) put(id string, v T) {
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = v
}

func (s *store[T]) remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return true
}

func (s *store[T]) list() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Document 并发安全，所有方法串行执行。
// 更新监听在持锁期间回调，监听中不能再调用 Document。
type Document struct {
	mu sync.Mutex

	entities    store[entities.Entity]
	dimensions  store[*entities.Dimension]
	annotations store[*entities.Annotation]

	resolver    *snap.Resolver
	engine      *assoc.Engine
	constraints *constraint.Manager

	autoSolve bool
}

func New(settings config.Settings) *Document {
	d := &Document{
		entities:    newStore[entities.Entity](),
		dimensions:  newStore[*entities.Dimension](),
		annotations: newStore[*entities.Annotation](),
		resolver:    snap.NewResolver(settings.SnapSettings()),
		engine:      assoc.NewEngine(),
		autoSolve:   settings.AutoSolve,
	}
	d.constraints = constraint.NewManager(d.entities.get)
	return d
}

// refresh 用修改后的完整集合刷新吸附与关联标注
func (d *Document) refresh() []assoc.UpdateEvent {
	list := d.entities.list()
	d.resolver.SetEntities(list)
	return d.engine.UpdateData(list, d.dimensions.list())
}

// geometryChanged 几何修改后的刷新，开启自动求解时先应用约束
func (d *Document) geometryChanged() {
	if d.autoSolve && len(d.constraints.Constraints()) > 0 {
		if _, err := d.solve(context.Background()); err != nil {
			core.Logger().Warn("cad: auto solve failed", "error", err)
		}
	}
	d.refresh()
}

func assignID(b *entities.BaseEntity) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

func (d *Document) exists(id string) bool {
	_, e := d.entities.get(id)
	_, dim := d.dimensions.get(id)
	_, ann := d.annotations.get(id)
	return e || dim || ann
}

// AddEntity 添加实体，id 为空时自动分配
func (d *Document) AddEntity(e entities.Entity) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	base := e.Base()
	assignID(base)
	if d.exists(base.ID) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, base.ID)
	}
	if err := entities.Validate(e); err != nil {
		return "", err
	}

	d.entities.put(base.ID, e)
	d.geometryChanged()
	return base.ID, nil
}

// UpdateEntity 部分更新实体字段，校验失败时实体不变
func (d *Document) UpdateEntity(id string, fields entities.Fields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entities.get(id)
	if !ok {
		return fmt.Errorf("%w: entity %s", ErrNotFound, id)
	}

	// 1. 在副本上试改并校验
	trial := e.Clone()
	if err := entities.Apply(trial, fields); err != nil {
		return err
	}
	if err := entities.Validate(trial); err != nil {
		return err
	}

	// 2. 写回原对象，保持引用不变
	if err := entities.Apply(e, fields); err != nil {
		return err
	}
	d.geometryChanged()
	return nil
}

// DeleteEntity 删除实体以及引用它的约束。关联关系默认保留。
func (d *Document) DeleteEntity(id string, opts DeleteOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.entities.remove(id) {
		return fmt.Errorf("%w: entity %s", ErrNotFound, id)
	}
	if removed := d.constraints.RemoveForEntity(id); len(removed) > 0 {
		core.Logger().Debug("cad: removed constraints", "entity", id, "count", len(removed))
	}

	d.geometryChanged()
	if opts.PruneRelationships {
		d.engine.PruneRelationships()
	}
	return nil
}

func (d *Document) Entity(id string) (entities.Entity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entities.get(id)
}

// Entities 按添加顺序返回
func (d *Document) Entities() []entities.Entity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entities.list()
}

func (d *Document) AddDimension(dim *entities.Dimension) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	assignID(&dim.BaseEntity)
	if d.exists(dim.ID) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, dim.ID)
	}
	if err := entities.Validate(dim); err != nil {
		return "", err
	}

	d.dimensions.put(dim.ID, dim)
	d.refresh()
	return dim.ID, nil
}

// UpdateDimension 部分更新标注。"value" 视为用户编辑，会传递给依赖它的标注。
func (d *Document) UpdateDimension(id string, fields entities.Fields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dim, ok := d.dimensions.get(id)
	if !ok {
		return fmt.Errorf("%w: dimension %s", ErrNotFound, id)
	}

	rest := make(entities.Fields, len(fields))
	for k, v := range fields {
		if k != "value" {
			rest[k] = v
		}
	}
	trial := dim.Clone()
	if err := entities.ApplyDimension(trial, rest); err != nil {
		return err
	}
	if err := entities.Validate(trial); err != nil {
		return err
	}

	var value float64
	if raw, ok := fields["value"]; ok {
		if value, ok = raw.(float64); !ok {
			return fmt.Errorf("%w: value is %T", entities.ErrFieldType, raw)
		}
	}

	*dim = *trial
	d.refresh()
	if _, ok := fields["value"]; ok {
		if _, err := d.engine.UpdateDimension(id, value, assoc.SourceUser); err != nil {
			return err
		}
	}
	return nil
}

// SetDimensionValue 用户直接修改标注值
func (d *Document) SetDimensionValue(id string, value float64) ([]assoc.UpdateEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.dimensions.get(id); !ok {
		return nil, fmt.Errorf("%w: dimension %s", ErrNotFound, id)
	}
	return d.engine.UpdateDimension(id, value, assoc.SourceUser)
}

func (d *Document) DeleteDimension(id string, opts DeleteOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dimensions.remove(id) {
		return fmt.Errorf("%w: dimension %s", ErrNotFound, id)
	}
	d.refresh()
	if opts.PruneRelationships {
		d.engine.PruneRelationships()
	}
	return nil
}

func (d *Document) Dimension(id string) (*entities.Dimension, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dimensions.get(id)
}

func (d *Document) Dimensions() []*entities.Dimension {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dimensions.list()
}

func (d *Document) AddAnnotation(a *entities.Annotation) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	assignID(&a.BaseEntity)
	if d.exists(a.ID) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}
	if err := entities.Validate(a); err != nil {
		return "", err
	}

	d.annotations.put(a.ID, a)
	d.refresh()
	return a.ID, nil
}

func (d *Document) UpdateAnnotation(id string, fields entities.Fields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.annotations.get(id)
	if !ok {
		return fmt.Errorf("%w: annotation %s", ErrNotFound, id)
	}
	trial := a.Clone()
	if err := entities.ApplyAnnotation(trial, fields); err != nil {
		return err
	}
	if err := entities.Validate(trial); err != nil {
		return err
	}

	*a = *trial
	d.refresh()
	return nil
}

func (d *Document) DeleteAnnotation(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.annotations.remove(id) {
		return fmt.Errorf("%w: annotation %s", ErrNotFound, id)
	}
	d.refresh()
	return nil
}

func (d *Document) Annotation(id string) (*entities.Annotation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.annotations.get(id)
}

func (d *Document) Annotations() []*entities.Annotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.annotations.list()
}

// LoadDXF 导入 DXF，块引用展开为独立对象后加入文档，返回导入的对象数
func (d *Document) LoadDXF(r io.Reader) (int, error) {
	doc, err := dxf.Load(r)
	if err != nil {
		return 0, err
	}
	content := doc.Flatten()

	d.mu.Lock()
	defer d.mu.Unlock()

	// 与逐个添加相同的检查，不合法的对象记录日志后跳过
	accept := func(kind, id string, v any) bool {
		if d.exists(id) {
			core.Logger().Warn("cad: skip duplicate object", "type", kind, "id", id)
			return false
		}
		if err := entities.Validate(v); err != nil {
			core.Logger().Warn("cad: skip invalid object", "type", kind, "error", err)
			return false
		}
		return true
	}

	var count int
	for _, e := range content.Entities {
		if !accept(string(e.Type()), e.Base().ID, e) {
			continue
		}
		d.entities.put(e.Base().ID, e)
		count++
	}
	for _, dim := range content.Dimensions {
		if v, ok := doc.DimValue(dim); ok && dim.Text == "" {
			dim.SetValue(v)
		}
		if !accept("DIMENSION", dim.ID, dim) {
			continue
		}
		d.dimensions.put(dim.ID, dim)
		count++
	}
	for _, a := range content.Annotations {
		if !accept("ANNOTATION", a.ID, a) {
			continue
		}
		d.annotations.put(a.ID, a)
		count++
	}

	d.refresh()
	return count, nil
}
