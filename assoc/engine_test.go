package assoc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

func line(id string, x1, y1, x2, y2 float64) *entities.Line {
	l := entities.NewLine(core.Pt(x1, y1), core.Pt(x2, y2))
	l.ID = id
	return l
}

func dimension(id, text string) *entities.Dimension {
	d := entities.NewDimension(entities.DimLinear)
	d.ID = id
	d.Text = text
	return d
}

func newEngine() *Engine {
	e := NewEngine()
	e.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestCalculate(t *testing.T) {
	circle := entities.NewCircle(core.Pt(0, 0), 2)
	rect := entities.NewRectangle(core.Pt(0, 0), 4, 3)

	v, ok := CalculateLinear([]entities.Entity{line("a", 0, 0, 10, 0), circle})
	require.True(t, ok)
	assert.InDelta(t, 5, v, 1e-9)

	v, ok = CalculateAngular([]entities.Entity{line("a", 0, 0, 10, 0), line("b", 0, 0, 0, 10)})
	require.True(t, ok)
	assert.InDelta(t, 90, v, 1e-9)

	v, ok = CalculateAngular([]entities.Entity{line("a", 0, 0, 10, 0), line("b", 0, 0, -10, -1e-12)})
	require.True(t, ok)
	assert.InDelta(t, 180, v, 1e-6)

	v, ok = CalculateRadial([]entities.Entity{circle})
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = CalculateArea([]entities.Entity{rect})
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	v, err := CalculateCustom("entity1.diameter + entity2.area", []entities.Entity{circle, rect})
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)

	_, ok = CalculateLinear([]entities.Entity{line("a", 0, 0, 1, 0)})
	assert.False(t, ok)
	_, ok = CalculateAngular([]entities.Entity{line("a", 0, 0, 1, 0), line("b", 1, 1, 1, 1)})
	assert.False(t, ok, "退化直线")
	_, ok = CalculateRadial([]entities.Entity{rect})
	assert.False(t, ok)
	_, ok = CalculateLinear([]entities.Entity{nil, circle})
	assert.False(t, ok)
}

func TestEngine_CreateRelationship(t *testing.T) {
	e := newEngine()

	_, err := e.CreateRelationship("", []string{"a"}, Linear, "")
	assert.ErrorIs(t, err, ErrMissingDimension)
	_, err = e.CreateRelationship("d", []string{"a"}, "volume", "")
	assert.ErrorIs(t, err, ErrUnknownType)

	id1, err := e.CreateRelationship("d1", []string{"a", "b"}, Linear, "")
	require.NoError(t, err)
	id2, err := e.CreateRelationship("d2", []string{"b"}, Radial, "")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	all := e.GetAllRelationships()
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	assert.Equal(t, id2, all[1].ID)

	assert.Len(t, e.GetRelationshipsForEntity("b"), 2)
	assert.Len(t, e.GetRelationshipsForEntity("a"), 1)
	assert.Empty(t, e.GetRelationshipsForEntity("x"))

	// 返回的是副本
	all[0].EntityIDs[0] = "z"
	r, ok := e.Relationship(id1)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.EntityIDs)

	assert.True(t, e.RemoveRelationship(id1))
	assert.False(t, e.RemoveRelationship(id1))
	assert.Len(t, e.GetAllRelationships(), 1)
}

// 两条平行线中点距离 10，移动第二条线后重算为 20
func TestEngine_UpdateData_Recompute(t *testing.T) {
	e := newEngine()
	l1 := line("l1", 0, 0, 10, 0)
	l2 := line("l2", 0, 10, 10, 10)
	d := dimension("d", "10.00")

	_, err := e.CreateRelationship("d", []string{"l1", "l2"}, Linear, "")
	require.NoError(t, err)

	events := e.UpdateData([]entities.Entity{l1, l2}, []*entities.Dimension{d})
	assert.Empty(t, events, "值未变化")

	l2.Start, l2.End = core.Pt(0, 20), core.Pt(10, 20)
	events = e.UpdateData([]entities.Entity{l1, l2}, []*entities.Dimension{d})
	require.Len(t, events, 1)
	assert.Equal(t, "d", events[0].DimensionID)
	assert.Equal(t, 10.0, events[0].OldValue)
	assert.Equal(t, 20.0, events[0].NewValue)
	assert.Equal(t, SourceCalculation, events[0].Source)
	assert.Equal(t, "20.00", d.Text)
	assert.False(t, d.Modified.IsZero())

	// 同样的数据再调用一次不产生事件
	assert.Empty(t, e.UpdateData([]entities.Entity{l1, l2}, []*entities.Dimension{d}))
}

func TestEngine_UpdateData_WithinTolerance(t *testing.T) {
	e := newEngine()
	d := dimension("d", "10.00")
	_, err := e.CreateRelationship("d", []string{"l1", "l2"}, Linear, "")
	require.NoError(t, err)

	events := e.UpdateData([]entities.Entity{line("l1", 0, 0, 10, 0), line("l2", 0, 10.004, 10, 10.004)}, []*entities.Dimension{d})
	assert.Empty(t, events)
	assert.Equal(t, "10.00", d.Text)
}

func TestEngine_UpdateData_MissingCachedValue(t *testing.T) {
	e := newEngine()
	d := dimension("d", "")
	_, err := e.CreateRelationship("d", []string{"c"}, Radial, "")
	require.NoError(t, err)

	events := e.UpdateData([]entities.Entity{withID("c", entities.NewCircle(core.Pt(0, 0), 3))}, []*entities.Dimension{d})
	require.Len(t, events, 1)
	assert.Equal(t, 0.0, events[0].OldValue)
	assert.Equal(t, 3.0, events[0].NewValue)
}

// 被引用的实体删除后不报错，标注保留原值
func TestEngine_UpdateData_DeletedEntity(t *testing.T) {
	e := newEngine()
	d := dimension("d", "10.00")
	_, err := e.CreateRelationship("d", []string{"l1", "l2"}, Linear, "")
	require.NoError(t, err)

	var events []UpdateEvent
	assert.NotPanics(t, func() {
		events = e.UpdateData([]entities.Entity{line("l1", 0, 0, 10, 0)}, []*entities.Dimension{d})
	})
	assert.Empty(t, events)
	assert.Equal(t, "10.00", d.Text)
	assert.Len(t, e.GetAllRelationships(), 1, "关系保留")

	_, ok := e.Calculate(e.GetAllRelationships()[0].ID)
	assert.False(t, ok)
}

func TestEngine_PruneRelationships(t *testing.T) {
	e := newEngine()
	d1, d2 := dimension("d1", "1"), dimension("d2", "1")
	keep, err := e.CreateRelationship("d1", []string{"l1", "gone"}, Linear, "")
	require.NoError(t, err)
	drop, err := e.CreateRelationship("d2", []string{"gone"}, Radial, "")
	require.NoError(t, err)
	orphan, err := e.CreateRelationship("d3", []string{"l1"}, Linear, "")
	require.NoError(t, err)

	e.UpdateData([]entities.Entity{line("l1", 0, 0, 1, 0)}, []*entities.Dimension{d1, d2})
	removed := e.PruneRelationships()
	assert.ElementsMatch(t, []string{drop, orphan}, removed)

	all := e.GetAllRelationships()
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestEngine_InvalidFormula(t *testing.T) {
	e := newEngine()
	d := dimension("d", "5.00")
	_, err := e.CreateRelationship("d", []string{"l1"}, Custom, "entity1.length *")
	require.NoError(t, err)
	_, err = e.CreateRelationship("d", []string{"l1"}, Custom, "entity1.radius")
	require.NoError(t, err)

	events := e.UpdateData([]entities.Entity{line("l1", 0, 0, 10, 0)}, []*entities.Dimension{d})
	assert.Empty(t, events)
	assert.Equal(t, "5.00", d.Text)
}

func TestEngine_CustomFormula(t *testing.T) {
	e := newEngine()
	d := dimension("d", "")
	ref := dimension("ref", "4")
	id, err := e.CreateRelationship("d", []string{"l1", "ref"}, Custom, "entity1.length * k + entity2.value")
	require.NoError(t, err)
	require.True(t, e.SetParameters(id, map[string]float64{"k": 0.5}))

	events := e.UpdateData([]entities.Entity{line("l1", 0, 0, 10, 0)}, []*entities.Dimension{d, ref})
	require.Len(t, events, 1)
	assert.Equal(t, 9.0, events[0].NewValue)
	assert.Equal(t, "9.00", d.Text)
}

func TestEngine_UpdateDimension(t *testing.T) {
	e := newEngine()
	width, height, area := dimension("w", "2"), dimension("h", "3"), dimension("a", "6")
	require.NoError(t, e.AddDependency(Dependency{DependentID: "a", IndependentIDs: []string{"w", "h"}, Formula: "dim1 * dim2"}))
	e.UpdateData(nil, []*entities.Dimension{width, height, area})

	_, err := e.UpdateDimension("missing", 1, SourceUser)
	assert.ErrorIs(t, err, ErrDimensionNotFound)
	_, err = e.UpdateDimension("w", math.NaN(), SourceUser)
	assert.ErrorIs(t, err, ErrInvalidValue)

	var received []UpdateEvent
	lid := e.AddUpdateListener(func(ev UpdateEvent) { received = append(received, ev) })

	events, err := e.UpdateDimension("w", 5, SourceUser)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, UpdateEvent{DimensionID: "w", OldValue: 2, NewValue: 5, Source: SourceUser, Timestamp: e.now()}, events[0])
	assert.Equal(t, "a", events[1].DimensionID)
	assert.Equal(t, 6.0, events[1].OldValue)
	assert.Equal(t, 15.0, events[1].NewValue)
	assert.Equal(t, SourceCalculation, events[1].Source)
	assert.Equal(t, events, received)

	// 值不变也产生主事件
	events, err = e.UpdateDimension("w", 5, SourceConstraint)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SourceConstraint, events[0].Source)

	assert.True(t, e.RemoveUpdateListener(lid))
	assert.False(t, e.RemoveUpdateListener(lid))
	_, err = e.UpdateDimension("h", 4, SourceUser)
	require.NoError(t, err)
	assert.Len(t, received, 3)
	assert.Equal(t, "20.00", area.Text)
}

// 关联到同一实体的其他标注随之重算
func TestEngine_UpdateDimension_LinkedEntities(t *testing.T) {
	e := newEngine()
	d1, d2 := dimension("d1", "10"), dimension("d2", "1")
	_, err := e.CreateRelationship("d1", []string{"l1"}, Custom, "entity1.length")
	require.NoError(t, err)
	_, err = e.CreateRelationship("d2", []string{"l1", "d1"}, Custom, "entity1.length + entity2.value")
	require.NoError(t, err)

	l1 := line("l1", 0, 0, 10, 0)
	events := e.UpdateData([]entities.Entity{l1}, []*entities.Dimension{d1, d2})
	require.Len(t, events, 1)
	assert.Equal(t, "20.00", d2.Text)

	events, err = e.UpdateDimension("d1", 12, SourceUser)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "d2", events[1].DimensionID)
	assert.Equal(t, 22.0, events[1].NewValue)
}

// 同一个标注既有关联关系又有公式依赖时以关联关系为准，重复调用结果不变
func TestEngine_UpdateData_RelationshipOverDependency(t *testing.T) {
	e := newEngine()
	d, r := dimension("d", ""), dimension("r", "")
	_, err := e.CreateRelationship("d", []string{"l1", "l2"}, Linear, "")
	require.NoError(t, err)
	_, err = e.CreateRelationship("r", []string{"c"}, Radial, "")
	require.NoError(t, err)
	require.NoError(t, e.AddDependency(Dependency{DependentID: "d", IndependentIDs: []string{"r"}, Formula: "dim1 * 2"}))

	list := []entities.Entity{
		line("l1", 0, 0, 10, 0),
		line("l2", 0, 10, 10, 10),
		withID("c", entities.NewCircle(core.Pt(0, 0), 3)),
	}
	dims := []*entities.Dimension{d, r}

	events := e.UpdateData(list, dims)
	require.Len(t, events, 2)
	assert.Equal(t, "10.00", d.Text)
	assert.Equal(t, "3.00", r.Text)

	assert.Empty(t, e.UpdateData(list, dims))
	assert.Empty(t, e.UpdateData(list, dims))
	assert.Equal(t, "10.00", d.Text)

	// 修改自变量标注时依赖同样不覆盖
	events, err = e.UpdateDimension("r", 4, SourceUser)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "10.00", d.Text)
}

// 依赖成环时每个标注在一次调用中只更新一次
func TestEngine_DependencyCycle(t *testing.T) {
	e := newEngine()
	a, b := dimension("a", "1"), dimension("b", "2")
	require.NoError(t, e.AddDependency(Dependency{DependentID: "b", IndependentIDs: []string{"a"}, Formula: "dim1 + 1"}))
	require.NoError(t, e.AddDependency(Dependency{DependentID: "a", IndependentIDs: []string{"b"}, Formula: "dim1 + 1"}))
	e.UpdateData(nil, []*entities.Dimension{a, b})

	events, err := e.UpdateDimension("a", 10, SourceUser)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "10.00", a.Text)
	assert.Equal(t, "11.00", b.Text)

	deps := e.Dependencies()
	require.Len(t, deps, 2)
	assert.Equal(t, "b", deps[0].DependentID)
	assert.True(t, e.RemoveDependency("b"))
	assert.False(t, e.RemoveDependency("b"))
	assert.ErrorIs(t, e.AddDependency(Dependency{}), ErrMissingDimension)
}

func withID[T entities.Entity](id string, e T) T {
	e.Base().ID = id
	return e
}
