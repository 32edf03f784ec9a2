package core

import (
	"math"

	"github.com/zooyer/golib/xmath"
)

const (
	// Epsilon 几何计算的默认浮点容差
	Epsilon = 1e-9
	// ValueTolerance 标注值变化超过该阈值才认为发生了更新
	ValueTolerance = 0.001
)

// Equal 判断两个浮点数在 epsilon 内相等
func Equal(a, b, epsilon float64) bool {
	return xmath.Equal(a, b, epsilon)
}

// IsZero 判断浮点数是否在默认容差内为 0
func IsZero(v float64) bool {
	return xmath.Equal(v, 0, Epsilon)
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
