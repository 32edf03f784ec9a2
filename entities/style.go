package entities

import (
	"fmt"
	"slices"
)

// Style 渲染提示，核心逻辑不读取它
type Style struct {
	StrokeColor string
	StrokeWidth float64   `validate:"gte=0"`
	DashPattern []float64 `validate:"dive,gte=0"`
	FillColor   string    // 空表示不填充
	Font        *Font
}

type Font struct {
	Family string
	Size   float64 `validate:"gte=0"`
	Bold   bool
	Italic bool
}

func DefaultStyle() Style {
	return Style{StrokeColor: "#000000", StrokeWidth: 1}
}

func (s Style) clone() Style {
	s.DashPattern = slices.Clone(s.DashPattern)
	if s.Font != nil {
		f := *s.Font
		s.Font = &f
	}
	return s
}

// aciColor 把 AutoCAD 颜色索引转为颜色字符串，只映射常用的前 7 种
func aciColor(index int) string {
	switch index {
	case 1:
		return "#FF0000"
	case 2:
		return "#FFFF00"
	case 3:
		return "#00FF00"
	case 4:
		return "#00FFFF"
	case 5:
		return "#0000FF"
	case 6:
		return "#FF00FF"
	case 7:
		return "#000000"
	}
	return fmt.Sprintf("aci:%d", index)
}
