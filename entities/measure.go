package entities

import (
	"math"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// splineSamples 计算样条长度时的采样数
const splineSamples = 64

// Length 实体的长度(闭合图形为周长)，无意义时返回 false
func Length(e Entity) (float64, bool) {
	switch v := e.(type) {
	case *Line:
		return v.Length(), true
	case *Circle:
		return 2 * math.Pi * v.Radius, true
	case *Arc:
		return v.Length(), true
	case *Rectangle:
		return 2 * (v.Width + v.Height), true
	case *Polyline:
		return v.Length(), true
	case *Polygon:
		return geom.PolylineLength(v.Vertices(), true), v.Sides >= 3
	case *Spline:
		return geom.PolylineLength(v.Sample(splineSamples), false), len(v.ControlPoints) > 1
	case *Path:
		subpaths, closed := v.Flatten()
		var total float64
		for i, sp := range subpaths {
			total += geom.PolylineLength(sp, closed[i])
		}
		return total, len(subpaths) > 0
	case *Hatch:
		return geom.PolylineLength(v.Boundary, true), len(v.Boundary) > 2
	case *Ellipse:
		return 0, false
	}
	return 0, false
}

// Radius 圆、圆弧、正多边形的半径
func Radius(e Entity) (float64, bool) {
	switch v := e.(type) {
	case *Circle:
		return v.Radius, true
	case *Arc:
		return v.Radius, true
	case *Polygon:
		return v.Radius, true
	case *Line, *Rectangle, *Polyline, *Ellipse, *Spline, *Path, *Hatch:
		return 0, false
	}
	return 0, false
}

// Area 封闭图形面积，开放折线等返回 false
func Area(e Entity) (float64, bool) {
	switch v := e.(type) {
	case *Circle:
		return v.Area(), true
	case *Rectangle:
		return v.Area(), true
	case *Polyline:
		if !v.Closed {
			return 0, false
		}
		return geom.PolygonArea(v.Points), true
	case *Ellipse:
		return v.Area(), true
	case *Polygon:
		return v.Area(), v.Sides >= 3
	case *Hatch:
		return v.Area(), true
	case *Line, *Arc, *Spline, *Path:
		return 0, false
	}
	return 0, false
}

// ReferencePoint 线性标注使用的参考点：线段取中点，圆类与矩形取中心
func ReferencePoint(e Entity) (core.Point, bool) {
	switch v := e.(type) {
	case *Line:
		return v.Midpoint(), true
	case *Circle:
		return v.Center, true
	case *Arc:
		return v.Center, true
	case *Ellipse:
		return v.Center, true
	case *Rectangle:
		return v.Center(), true
	case *Polygon:
		return v.Center, true
	case *Polyline, *Spline, *Path, *Hatch:
		return core.Point{}, false
	}
	return core.Point{}, false
}
