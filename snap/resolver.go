package snap

import (
	"time"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

// DefaultPixelRadius 吸附半径(屏幕像素)
const DefaultPixelRadius = 10

type Settings struct {
	Zoom            float64 // 屏幕像素 / 世界单位
	GridSize        float64
	GridEnabled     bool
	SnappingEnabled bool // 关闭后只保留网格吸附
	PixelRadius     float64
}

func DefaultSettings() Settings {
	return Settings{
		Zoom:            1,
		GridSize:        10,
		SnappingEnabled: true,
		PixelRadius:     DefaultPixelRadius,
	}
}

type item struct {
	entity entities.Entity
	id     string
	reach  core.BBox // 所有吸附点都落在其中
	prims  []primitive
}

// Resolver 不是并发安全的，由调用方串行使用
type Resolver struct {
	settings Settings
	items    []item
}

func NewResolver(settings Settings) *Resolver {
	return &Resolver{settings: settings}
}

func (r *Resolver) Settings() Settings {
	return r.settings
}

func (r *Resolver) SetSettings(settings Settings) {
	r.settings = settings
}

// SetEntities 整体替换参与吸附的实体，只保留可见且未锁定的
func (r *Resolver) SetEntities(list []entities.Entity) {
	items := make([]item, 0, len(list))
	for _, e := range list {
		base := e.Base()
		if !base.Selectable() {
			continue
		}
		reach := e.BBox()
		for _, c := range centers(e) {
			reach = reach.Extend(c)
		}
		items = append(items, item{entity: e, id: base.ID, reach: reach, prims: decompose(e)})
	}
	r.items = items
}

// Threshold 吸附半径换算到世界坐标
func (r *Resolver) Threshold() float64 {
	zoom, radius := r.settings.Zoom, r.settings.PixelRadius
	if zoom <= 0 || !core.IsFinite(zoom) {
		zoom = 1
	}
	if radius <= 0 || !core.IsFinite(radius) {
		radius = DefaultPixelRadius
	}
	return radius / zoom
}

func (r *Resolver) enabled(c Category, ref *core.Point) bool {
	if c.entityBased() && !r.settings.SnappingEnabled {
		return false
	}
	if c == Grid && !r.settings.GridEnabled {
		return false
	}
	return !c.needsReference() || ref != nil
}

// Candidates 每个类别的最佳候选，按类别优先级排列
func (r *Resolver) Candidates(cursor core.Point, ref *core.Point) []Candidate {
	if !cursor.IsFinite() || (ref != nil && !ref.IsFinite()) {
		return nil
	}

	var (
		out       []Candidate
		threshold = r.Threshold()
	)
	for _, category := range Categories {
		if !r.enabled(category, ref) {
			continue
		}
		if c, ok := r.best(category, cursor, ref, threshold); ok {
			out = append(out, c)
		}
	}
	return out
}

// best 类别内距离最小的候选，距离相同时先出现的实体优先
func (r *Resolver) best(category Category, cursor core.Point, ref *core.Point, threshold float64) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	consider := func(p core.Point, id string) {
		if !p.IsFinite() {
			return
		}
		d := cursor.Distance(p)
		if d > threshold {
			return
		}
		if !found || d < best.Distance {
			best = Candidate{Point: p, Category: category, Distance: d, EntityID: id, Label: category.Label()}
			found = true
		}
	}

	switch category {
	case Grid:
		if p, ok := gridPoint(cursor, r.settings.GridSize); ok {
			consider(p, "")
		}
	case Intersection:
		for i := range r.items {
			a := &r.items[i]
			if !a.reach.Expand(threshold).Contains(cursor) {
				continue
			}
			for j := i + 1; j < len(r.items); j++ {
				b := &r.items[j]
				if !b.reach.Expand(threshold).Contains(cursor) {
					continue
				}
				for _, p := range intersections(a.prims, b.prims) {
					consider(p, a.id+","+b.id)
				}
			}
		}
	default:
		for i := range r.items {
			it := &r.items[i]
			if !it.reach.Expand(threshold).Contains(cursor) {
				continue
			}
			for _, p := range points(it.entity, category, cursor, ref) {
				consider(p, it.id)
			}
		}
	}
	return best, found
}

// FindBestSnapPoint 阈值内全局距离最近的吸附点，没有返回 false
func (r *Resolver) FindBestSnapPoint(cursor core.Point, ref *core.Point) (Candidate, bool) {
	start := time.Now()
	defer func() {
		snapDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		best  Candidate
		found bool
	)
	for _, c := range r.Candidates(cursor, ref) {
		// 类别已按优先级排列，只有明显更近才替换
		if !found || c.Distance < best.Distance-core.Epsilon {
			best, found = c, true
		}
	}

	if !found {
		snapTotal.WithLabelValues("none").Inc()
		return Candidate{}, false
	}
	snapTotal.WithLabelValues(best.Category.String()).Inc()
	core.Logger().Debug("snap: resolved", "category", best.Category.String(), "entity", best.EntityID, "distance", best.Distance)
	return best, true
}
