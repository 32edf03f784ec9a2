package constraint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

type store map[string]entities.Entity

func (s store) lookup(id string) (entities.Entity, bool) {
	e, ok := s[id]
	return e, ok
}

func (s store) add(id string, e entities.Entity) {
	e.Base().ID = id
	s[id] = e
}

func newManager() (*Manager, store) {
	s := store{}
	return NewManager(s.lookup), s
}

func TestManager_Create(t *testing.T) {
	m, s := newManager()
	s.add("l1", entities.NewLine(core.Pt(0, 0), core.Pt(10, 1)))
	s.add("l2", entities.NewLine(core.Pt(0, 5), core.Pt(10, 5)))
	s.add("c1", entities.NewCircle(core.Pt(0, 0), 2))
	s.add("r1", entities.NewRectangle(core.Pt(0, 0), 2, 2))

	cases := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"horizontal", Params{Type: Horizontal, EntityIDs: []string{"l1"}}, true},
		{"horizontal circle", Params{Type: Horizontal, EntityIDs: []string{"c1"}}, false},
		{"parallel", Params{Type: Parallel, EntityIDs: []string{"l1", "l2"}}, true},
		{"parallel one", Params{Type: Parallel, EntityIDs: []string{"l1"}}, false},
		{"parallel same", Params{Type: Parallel, EntityIDs: []string{"l1", "l1"}}, false},
		{"equal mixed", Params{Type: Equal, EntityIDs: []string{"l1", "c1"}}, false},
		{"radius", Params{Type: Radius, EntityIDs: []string{"c1"}, Value: 3}, true},
		{"radius zero", Params{Type: Radius, EntityIDs: []string{"c1"}, Value: 0}, false},
		{"radius rect", Params{Type: Radius, EntityIDs: []string{"r1"}, Value: 3}, false},
		{"distance", Params{Type: Distance, EntityIDs: []string{"l1", "r1"}, Value: 1}, true},
		{"distance negative", Params{Type: Distance, EntityIDs: []string{"l1", "r1"}, Value: -1}, false},
		{"concentric rect", Params{Type: Concentric, EntityIDs: []string{"c1", "r1"}}, false},
		{"missing entity", Params{Type: Fixed, EntityIDs: []string{"nope"}}, false},
		{"unknown type", Params{Type: "tangent", EntityIDs: []string{"l1", "c1"}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			id, ok := m.Create(c.p)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.ok, id != "")
		})
	}
}

func TestManager_RemoveAndToggle(t *testing.T) {
	m, s := newManager()
	s.add("l1", entities.NewLine(core.Pt(0, 0), core.Pt(10, 1)))
	s.add("l2", entities.NewLine(core.Pt(0, 5), core.Pt(10, 5)))

	h, ok := m.Create(Params{Type: Horizontal, EntityIDs: []string{"l1"}})
	require.True(t, ok)
	p, ok := m.Create(Params{Type: Parallel, EntityIDs: []string{"l1", "l2"}})
	require.True(t, ok)

	assert.Len(t, m.ForEntity("l1"), 2)
	assert.Len(t, m.ForEntity("l2"), 1)

	assert.True(t, m.Toggle(h, nil))
	c, _ := m.Constraint(h)
	assert.False(t, c.Active)
	on := true
	assert.True(t, m.Toggle(h, &on))
	c, _ = m.Constraint(h)
	assert.True(t, c.Active)
	assert.False(t, m.Toggle("nope", nil))

	assert.Equal(t, []string{p}, m.RemoveForEntity("l2"))
	assert.Len(t, m.Constraints(), 1)
	assert.True(t, m.Remove(h))
	assert.False(t, m.Remove(h))
	assert.Empty(t, m.Constraints())
}

func TestManager_Solve(t *testing.T) {
	m, s := newManager()
	s.add("l1", entities.NewLine(core.Pt(0, 0), core.Pt(3, 4)))
	s.add("l2", entities.NewLine(core.Pt(0, 10), core.Pt(2, 10)))
	s.add("c1", entities.NewCircle(core.Pt(0, 0), 2))
	s.add("c2", entities.NewCircle(core.Pt(5, 5), 1))

	perp, _ := m.Create(Params{Type: Perpendicular, EntityIDs: []string{"l1", "l2"}})
	radius, _ := m.Create(Params{Type: Radius, EntityIDs: []string{"c1"}, Value: 2})
	concentric, _ := m.Create(Params{Type: Concentric, EntityIDs: []string{"c1", "c2"}})
	equal, _ := m.Create(Params{Type: Equal, EntityIDs: []string{"c1", "c2"}})
	coincident, _ := m.Create(Params{Type: Coincident, EntityIDs: []string{"l1", "l2"}})
	off, _ := m.Create(Params{Type: Horizontal, EntityIDs: []string{"l1"}})
	m.Toggle(off, nil)

	solutions, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 5, "未启用的约束不参与")

	ids := []string{perp, radius, concentric, equal, coincident}
	for i, s := range solutions {
		assert.Equal(t, ids[i], s.ConstraintID)
		assert.True(t, s.Satisfied, s.ConstraintID)
	}

	// l2 绕中点 (1,10) 转到与 (3,4) 垂直的方向，长度不变
	f := solutions[0].Updates["l2"]
	require.NotNil(t, f)
	start, end := f["start"].(core.Point), f["end"].(core.Point)
	assert.InDelta(t, 2, start.Distance(end), 1e-9)
	assert.InDelta(t, 0, end.Sub(start).Dot(core.Pt(3, 4)), 1e-9)
	assert.InDelta(t, 1, start.Lerp(end, 0.5).X, 1e-9)

	assert.Empty(t, solutions[1].Updates, "已成立")
	assert.Equal(t, entities.Fields{"center": core.Pt(0, 0)}, solutions[2].Updates["c2"])
	assert.Equal(t, entities.Fields{"radius": 2.0}, solutions[3].Updates["c2"])
	assert.Equal(t, entities.Fields{"start": core.Pt(3, 4)}, solutions[4].Updates["l2"])

	// 求解不修改实体
	assert.Equal(t, core.Pt(5, 5), s["c2"].(*entities.Circle).Center)
}

func TestManager_SolveFixedAndDistance(t *testing.T) {
	m, s := newManager()
	s.add("l1", entities.NewLine(core.Pt(0, 0), core.Pt(2, 0)))
	s.add("c1", entities.NewCircle(core.Pt(4, 0), 1))
	s.add("c2", entities.NewCircle(core.Pt(4, 0), 1))

	fixed, _ := m.Create(Params{Type: Fixed, EntityIDs: []string{"l1"}})
	dist, _ := m.Create(Params{Type: Distance, EntityIDs: []string{"l1", "c1"}, Value: 5})
	same, _ := m.Create(Params{Type: Distance, EntityIDs: []string{"c1", "c2"}, Value: 1})

	s["l1"].(*entities.Line).Start = core.Pt(1, 1)
	s["l1"].(*entities.Line).End = core.Pt(3, 1)

	solutions, err := m.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, solutions, 3)

	assert.Equal(t, fixed, solutions[0].ConstraintID)
	assert.Equal(t, entities.Fields{"start": core.Pt(0, 0), "end": core.Pt(2, 0)}, solutions[0].Updates["l1"])

	// l1 中点 (2,1) 到 c1 圆心 (4,0) 方向上取距离 5
	assert.Equal(t, dist, solutions[1].ConstraintID)
	center := solutions[1].Updates["c1"]["center"].(core.Point)
	assert.InDelta(t, 5, center.Distance(core.Pt(2, 1)), 1e-9)

	assert.Equal(t, same, solutions[2].ConstraintID)
	assert.False(t, solutions[2].Satisfied, "参考点重合")
	assert.Empty(t, solutions[2].Updates)
}

func TestManager_SolveCanceled(t *testing.T) {
	m, s := newManager()
	s.add("l1", entities.NewLine(core.Pt(0, 0), core.Pt(2, 1)))
	_, ok := m.Create(Params{Type: Horizontal, EntityIDs: []string{"l1"}})
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
