package entities

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/zooyer/cad/core"
)

var ErrInvalid = errors.New("entities: invalid entity")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate 检查非负尺寸等约束，以及坐标是否有限
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !finitePoints(v) {
		return fmt.Errorf("%w: non-finite coordinate", ErrInvalid)
	}
	return nil
}

func finitePoints(v any) bool {
	all := func(points ...core.Point) bool {
		for _, p := range points {
			if !p.IsFinite() {
				return false
			}
		}
		return true
	}

	switch e := v.(type) {
	case *Line:
		return all(e.Start, e.End)
	case *Circle:
		return all(e.Center)
	case *Arc:
		return all(e.Center) && core.IsFinite(e.StartAngle) && core.IsFinite(e.EndAngle)
	case *Rectangle:
		return all(e.Corner)
	case *Polyline:
		return all(e.Points...)
	case *Ellipse:
		return all(e.Center) && core.IsFinite(e.Rotation)
	case *Spline:
		return all(e.ControlPoints...)
	case *Polygon:
		return all(e.Center) && core.IsFinite(e.Rotation)
	case *Path:
		for _, seg := range e.Segments {
			if !all(seg.Points...) {
				return false
			}
		}
		return true
	case *Hatch:
		return all(e.Boundary...)
	case *Dimension:
		return all(e.Points...) && core.IsFinite(e.Angle) && core.IsFinite(e.Offset)
	case *Annotation:
		return all(e.Position) && all(e.Points...)
	}
	return true
}
