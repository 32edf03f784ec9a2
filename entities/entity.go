// Package entities 定义图纸中的可绘制实体、尺寸标注与注释。
//
// Entity 是封闭的和类型：只有本包中的变体(Line、Circle、Arc、Rectangle、Polyline、
// Ellipse、Spline、Polygon、Path、Hatch)实现它，使用方通过类型 switch 穷举处理。
package entities

import (
	"maps"

	"github.com/zooyer/cad/core"
)

// Kind 实体类型标签
type Kind string

const (
	KindLine      Kind = "line"
	KindCircle    Kind = "circle"
	KindArc       Kind = "arc"
	KindRectangle Kind = "rectangle"
	KindPolyline  Kind = "polyline"
	KindEllipse   Kind = "ellipse"
	KindSpline    Kind = "spline"
	KindPolygon   Kind = "polygon"
	KindPath      Kind = "path"
	KindHatch     Kind = "hatch"
)

// Entity 是一切几何实体的接口
type Entity interface {
	Type() Kind
	Layer() string
	Base() *BaseEntity
	BBox() core.BBox
	Clone() Entity

	// entity 限制实现只能来自本包
	entity()
}

// Parser 可以从 DXF 标签流中读取自身的实体
type Parser interface {
	Parse(scanner *core.Scanner) error
}

// BaseEntity 存放所有实体通用的属性
type BaseEntity struct {
	ID        string `validate:"required"`
	LayerName string
	Visible   bool
	Locked    bool
	Style     Style
	GroupID   string
	Metadata  map[string]string
}

// NewBase 创建默认可见、未锁定的通用属性
func NewBase(layer string) BaseEntity {
	return BaseEntity{
		LayerName: layer,
		Visible:   true,
		Style:     DefaultStyle(),
	}
}

func (b *BaseEntity) Layer() string { return b.LayerName }

func (b *BaseEntity) Base() *BaseEntity { return b }

// Selectable 可见且未锁定的实体才参与吸附等交互
func (b *BaseEntity) Selectable() bool {
	return b.Visible && !b.Locked
}

func (b BaseEntity) clone() BaseEntity {
	b.Metadata = maps.Clone(b.Metadata)
	b.Style = b.Style.clone()
	return b
}

// parseCommon 处理所有实体共有的 DXF 组码，已处理返回 true
func (b *BaseEntity) parseCommon(t core.Tag) bool {
	switch t.Code {
	case 5:
		if b.Metadata == nil {
			b.Metadata = make(map[string]string)
		}
		b.Metadata["handle"] = t.AsString()
	case 8:
		b.LayerName = t.AsString()
	case 60:
		b.Visible = t.AsInt() == 0
	case 62:
		b.Style.StrokeColor = aciColor(t.AsInt())
	case 370:
		if w := t.AsInt(); w > 0 {
			b.Style.StrokeWidth = float64(w) / 100 // 1/100 mm
		}
	default:
		return false
	}
	return true
}

// EntityFactory 定义了如何创建一个空实体
type EntityFactory func() Entity

var registry = map[string]EntityFactory{}

// Register 按 DXF 对象名注册实体工厂
func Register(typeName string, factory EntityFactory) {
	registry[typeName] = factory
}

// Create 根据 DXF 对象名生产对应的实体，未注册返回 nil
func Create(typeName string) Entity {
	if factory, ok := registry[typeName]; ok {
		return factory()
	}
	return nil
}
