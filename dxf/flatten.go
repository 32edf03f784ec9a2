package dxf

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/geom"
)

// maxDepth 块嵌套深度上限，防止自引用的块无限展开
const maxDepth = 16

// Flatten 把所有块引用展开成世界坐标下的独立对象，并为每个对象分配新 id。
// 块中图层为 "0" 的对象继承插入所在的图层。
func (d *Document) Flatten() Content {
	var out Content
	d.flatten(&out, &d.Content, geom.Identity(), "", 0)
	return out
}

func (d *Document) flatten(out *Content, c *Content, t geom.Transform, layer string, depth int) {
	for _, e := range c.Entities {
		ent := TransformEntity(e, t)
		assignBase(ent.Base(), layer)
		out.Entities = append(out.Entities, ent)
	}
	for _, dim := range c.Dimensions {
		dd := TransformDimension(dim, t)
		assignBase(&dd.BaseEntity, layer)
		out.Dimensions = append(out.Dimensions, dd)
	}
	for _, ann := range c.Annotations {
		a := TransformAnnotation(ann, t)
		assignBase(&a.BaseEntity, layer)
		out.Annotations = append(out.Annotations, a)
	}

	for _, ins := range c.Inserts {
		block, ok := d.Blocks[strings.ToUpper(ins.BlockName)]
		if !ok {
			core.Logger().Warn("dxf: block not found", "name", ins.BlockName)
			continue
		}
		if depth >= maxDepth {
			core.Logger().Warn("dxf: block nesting too deep", "name", ins.BlockName, "depth", depth)
			continue
		}

		// 块基点与插入点对齐
		child := ins.Transform()
		child.Translate = child.Apply(block.Base.Mul(-1))

		childLayer := ins.LayerName
		if childLayer == "0" && layer != "" {
			childLayer = layer
		}
		d.flatten(out, &block.Content, t.Combine(child), childLayer, depth+1)
	}
}

func assignBase(b *entities.BaseEntity, layer string) {
	b.ID = uuid.NewString()
	if layer != "" && (b.LayerName == "" || b.LayerName == "0") {
		b.LayerName = layer
	}
}

// scaleOf 非均匀缩放时半径等标量取两轴平均
func scaleOf(t geom.Transform) float64 {
	return (math.Abs(t.Scale.X) + math.Abs(t.Scale.Y)) / 2
}

func mirrored(t geom.Transform) bool {
	return t.Scale.X*t.Scale.Y < 0
}

// TransformEntity 返回变换后的副本，原实体不变
func TransformEntity(e entities.Entity, t geom.Transform) entities.Entity {
	var (
		rad   = t.Rotation * math.Pi / 180.0
		apply = func(points []core.Point) []core.Point {
			out := make([]core.Point, len(points))
			for i, p := range points {
				out[i] = t.Apply(p)
			}
			return out
		}
	)

	switch src := e.(type) {
	case *entities.Line:
		l := src.Clone().(*entities.Line)
		l.Start, l.End = t.Apply(src.Start), t.Apply(src.End)
		return l
	case *entities.Circle:
		c := src.Clone().(*entities.Circle)
		c.Center, c.Radius = t.Apply(src.Center), src.Radius*scaleOf(t)
		return c
	case *entities.Arc:
		a := src.Clone().(*entities.Arc)
		a.Center, a.Radius = t.Apply(src.Center), src.Radius*scaleOf(t)
		start := geom.Angle(a.Center, t.Apply(src.StartPoint()))
		end := geom.Angle(a.Center, t.Apply(src.EndPoint()))
		if mirrored(t) {
			start, end = end, start
		}
		a.StartAngle, a.EndAngle = geom.NormalizeAngle(start), geom.NormalizeAngle(end)
		return a
	case *entities.Rectangle:
		corners := apply(src.Corners())
		if math.Mod(t.Rotation, 90) == 0 {
			r := src.Clone().(*entities.Rectangle)
			box := core.BBoxOf(corners...)
			r.Corner, r.Width, r.Height = box.Min, box.Width(), box.Height()
			return r
		}
		// 旋转后不再轴对齐，退化为闭合多段线
		pl := entities.NewPolyline(corners, true)
		pl.BaseEntity = *src.Clone().Base()
		return pl
	case *entities.Polyline:
		l := src.Clone().(*entities.Polyline)
		l.Points = apply(src.Points)
		return l
	case *entities.Ellipse:
		el := src.Clone().(*entities.Ellipse)
		major := geom.EllipsePoint(src.Center, src.RadiusX, src.RadiusY, src.Rotation, 0)
		minor := geom.EllipsePoint(src.Center, src.RadiusX, src.RadiusY, src.Rotation, math.Pi/2)
		el.Center = t.Apply(src.Center)
		el.RadiusX = geom.Distance(el.Center, t.Apply(major))
		el.RadiusY = geom.Distance(el.Center, t.Apply(minor))
		el.Rotation = geom.Angle(el.Center, t.Apply(major))
		return el
	case *entities.Spline:
		s := src.Clone().(*entities.Spline)
		s.ControlPoints = apply(src.ControlPoints)
		return s
	case *entities.Polygon:
		p := src.Clone().(*entities.Polygon)
		p.Center, p.Radius, p.Rotation = t.Apply(src.Center), src.Radius*scaleOf(t), src.Rotation+rad
		return p
	case *entities.Path:
		p := src.Clone().(*entities.Path)
		for i := range p.Segments {
			p.Segments[i].Points = apply(p.Segments[i].Points)
		}
		return p
	case *entities.Hatch:
		h := src.Clone().(*entities.Hatch)
		h.Boundary, h.Angle = apply(src.Boundary), src.Angle+t.Rotation
		return h
	}
	return e.Clone()
}

func TransformDimension(dim *entities.Dimension, t geom.Transform) *entities.Dimension {
	d := dim.Clone()
	for i, p := range dim.Points {
		d.Points[i] = t.Apply(p)
	}
	d.TextPosition = t.Apply(dim.TextPosition)
	d.Angle = dim.Angle + t.Rotation
	d.Offset = dim.Offset * scaleOf(t)
	if mirrored(t) {
		d.Offset = -d.Offset
	}
	return d
}

func TransformAnnotation(ann *entities.Annotation, t geom.Transform) *entities.Annotation {
	a := ann.Clone()
	a.Position = t.Apply(ann.Position)
	for i, p := range ann.Points {
		a.Points[i] = t.Apply(p)
	}
	a.Height = ann.Height * math.Abs(t.Scale.Y)
	a.Rotation = ann.Rotation + t.Rotation
	return a
}
