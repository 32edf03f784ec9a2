package entities

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField = errors.New("entities: unknown field")
	ErrFieldType    = errors.New("entities: wrong field type")
)

// Fields 字段级的部分更新，键为字段名(如 "start"、"radius")
type Fields map[string]any

// field 读取并检查字段类型，不存在时不修改 dst
func field[T any](f Fields, key string, dst *T) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	v, ok := raw.(T)
	if !ok {
		return fmt.Errorf("%w: %s is %T", ErrFieldType, key, raw)
	}
	*dst = v
	return nil
}

var commonFields = map[string]bool{"layer": true, "visible": true, "locked": true, "groupId": true, "style": true, "metadata": true}

func applyBase(b *BaseEntity, f Fields) error {
	return errors.Join(
		field(f, "layer", &b.LayerName),
		field(f, "visible", &b.Visible),
		field(f, "locked", &b.Locked),
		field(f, "groupId", &b.GroupID),
		field(f, "style", &b.Style),
		field(f, "metadata", &b.Metadata),
	)
}

// checkKeys 拒绝该类型没有的字段
func checkKeys(f Fields, allowed ...string) error {
	for key := range f {
		if commonFields[key] {
			continue
		}
		found := false
		for _, a := range allowed {
			if a == key {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}
	return nil
}

// Apply 把部分字段写入实体。任何字段出错时实体保持不变。
func Apply(e Entity, f Fields) error {
	target := e.Clone()
	if err := apply(target, f); err != nil {
		return err
	}
	return assign(e, target)
}

func apply(e Entity, f Fields) error {
	if err := applyBase(e.Base(), f); err != nil {
		return err
	}

	switch v := e.(type) {
	case *Line:
		return errors.Join(checkKeys(f, "start", "end"),
			field(f, "start", &v.Start), field(f, "end", &v.End))
	case *Circle:
		return errors.Join(checkKeys(f, "center", "radius"),
			field(f, "center", &v.Center), field(f, "radius", &v.Radius))
	case *Arc:
		return errors.Join(checkKeys(f, "center", "radius", "startAngle", "endAngle"),
			field(f, "center", &v.Center), field(f, "radius", &v.Radius),
			field(f, "startAngle", &v.StartAngle), field(f, "endAngle", &v.EndAngle))
	case *Rectangle:
		return errors.Join(checkKeys(f, "corner", "width", "height"),
			field(f, "corner", &v.Corner), field(f, "width", &v.Width), field(f, "height", &v.Height))
	case *Polyline:
		return errors.Join(checkKeys(f, "points", "closed"),
			field(f, "points", &v.Points), field(f, "closed", &v.Closed))
	case *Ellipse:
		return errors.Join(checkKeys(f, "center", "radiusX", "radiusY", "rotation"),
			field(f, "center", &v.Center), field(f, "radiusX", &v.RadiusX),
			field(f, "radiusY", &v.RadiusY), field(f, "rotation", &v.Rotation))
	case *Spline:
		return errors.Join(checkKeys(f, "controlPoints", "degree", "closed"),
			field(f, "controlPoints", &v.ControlPoints), field(f, "degree", &v.Degree), field(f, "closed", &v.Closed))
	case *Polygon:
		return errors.Join(checkKeys(f, "center", "radius", "sides", "rotation"),
			field(f, "center", &v.Center), field(f, "radius", &v.Radius),
			field(f, "sides", &v.Sides), field(f, "rotation", &v.Rotation))
	case *Path:
		return errors.Join(checkKeys(f, "segments"), field(f, "segments", &v.Segments))
	case *Hatch:
		return errors.Join(checkKeys(f, "boundary", "pattern", "scale", "angle"),
			field(f, "boundary", &v.Boundary), field(f, "pattern", &v.Pattern),
			field(f, "scale", &v.Scale), field(f, "angle", &v.Angle))
	}
	return fmt.Errorf("%w: %T", ErrUnknownField, e)
}

// assign 把 src 的内容写回 dst，两者类型相同
func assign(dst, src Entity) error {
	switch d := dst.(type) {
	case *Line:
		*d = *src.(*Line)
	case *Circle:
		*d = *src.(*Circle)
	case *Arc:
		*d = *src.(*Arc)
	case *Rectangle:
		*d = *src.(*Rectangle)
	case *Polyline:
		*d = *src.(*Polyline)
	case *Ellipse:
		*d = *src.(*Ellipse)
	case *Spline:
		*d = *src.(*Spline)
	case *Polygon:
		*d = *src.(*Polygon)
	case *Path:
		*d = *src.(*Path)
	case *Hatch:
		*d = *src.(*Hatch)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownField, dst)
	}
	return nil
}

// ApplyDimension 标注的部分更新，"value" 直接写入缓存文字(用户编辑)
func ApplyDimension(d *Dimension, f Fields) error {
	n := d.Clone()
	if err := applyBase(&n.BaseEntity, f); err != nil {
		return err
	}
	var value *float64
	if raw, ok := f["value"]; ok {
		v, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("%w: value is %T", ErrFieldType, raw)
		}
		value = &v
	}
	err := errors.Join(
		checkKeys(f, "kind", "points", "angle", "offset", "textPosition", "text", "styleName", "value"),
		field(f, "kind", &n.Kind), field(f, "points", &n.Points),
		field(f, "angle", &n.Angle), field(f, "offset", &n.Offset),
		field(f, "textPosition", &n.TextPosition), field(f, "text", &n.Text),
		field(f, "styleName", &n.StyleName),
	)
	if err != nil {
		return err
	}
	if value != nil {
		n.SetValue(*value)
	}
	*d = *n
	return nil
}

func ApplyAnnotation(a *Annotation, f Fields) error {
	n := a.Clone()
	err := errors.Join(
		applyBase(&n.BaseEntity, f),
		checkKeys(f, "kind", "position", "text", "height", "rotation", "points", "symbol", "upper", "lower"),
		field(f, "kind", &n.Kind), field(f, "position", &n.Position),
		field(f, "text", &n.Text), field(f, "height", &n.Height),
		field(f, "rotation", &n.Rotation), field(f, "points", &n.Points),
		field(f, "symbol", &n.Symbol), field(f, "upper", &n.Upper), field(f, "lower", &n.Lower),
	)
	if err != nil {
		return err
	}
	*a = *n
	return nil
}
