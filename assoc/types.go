// Package assoc 关联标注引擎：维护标注与其测量实体之间的关系，
// 在实体或标注变化时重新计算标注值，并沿依赖传递给其他标注。
//
// 引擎不是并发安全的，宿主需要串行调用。
package assoc

import (
	"errors"
	"maps"
	"slices"
	"time"
)

var (
	ErrUnknownType       = errors.New("assoc: unknown relationship type")
	ErrMissingDimension  = errors.New("assoc: dimension id is required")
	ErrDimensionNotFound = errors.New("assoc: dimension not found")
	ErrInvalidValue      = errors.New("assoc: value is not finite")
)

// Tolerance 重算值与缓存值相差超过该值才更新
const Tolerance = 0.001

type RelationshipType string

const (
	Linear  RelationshipType = "linear"
	Angular RelationshipType = "angular"
	Radial  RelationshipType = "radial"
	Area    RelationshipType = "area"
	Custom  RelationshipType = "custom"
)

func (t RelationshipType) valid() bool {
	switch t {
	case Linear, Angular, Radial, Area, Custom:
		return true
	}
	return false
}

// Relationship 标注与决定其数值的实体之间的关联。
// 引用的实体被删除后关系保留，只是暂时无法计算。
type Relationship struct {
	ID          string
	DimensionID string
	EntityIDs   []string
	Type        RelationshipType
	Formula     string             // 仅 custom 使用
	Parameters  map[string]float64 // custom 公式中可直接引用的命名参数
	Created     time.Time
	Modified    time.Time
}

func (r *Relationship) clone() Relationship {
	n := *r
	n.EntityIDs = slices.Clone(r.EntityIDs)
	n.Parameters = maps.Clone(r.Parameters)
	return n
}

// Dependency 标注之间基于公式的依赖：DependentID = Formula(dim1, dim2, ...)，
// dimN 对应 IndependentIDs[N-1] 的当前值
type Dependency struct {
	DependentID    string
	IndependentIDs []string
	Formula        string
}

type Source string

const (
	SourceUser        Source = "user"
	SourceCalculation Source = "calculation"
	SourceConstraint  Source = "constraint"
)

type UpdateEvent struct {
	DimensionID string
	OldValue    float64
	NewValue    float64
	Source      Source
	Timestamp   time.Time
}

// Listener 接收标注更新事件
type Listener func(UpdateEvent)

// ListenerID 注销监听时使用的句柄
type ListenerID int
