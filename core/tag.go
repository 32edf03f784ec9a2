package core

import (
	"strconv"
	"strings"
)

// Tag 代表 DXF 中的一组组码/值
type Tag struct {
	Code  int
	Value string
}

// AsFloat 将值转换为 float64，无法解析时返回 0
func (t Tag) AsFloat() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil || !IsFinite(f) {
		return 0
	}
	return f
}

func (t Tag) AsInt() int {
	i, _ := strconv.Atoi(strings.TrimSpace(t.Value))
	return i
}

// AsString 清洗字符串（去除多余空格）
func (t Tag) AsString() string {
	return strings.TrimSpace(t.Value)
}

// Is 判断是否为 0 组码的指定对象名(大小写不敏感)
func (t Tag) Is(name string) bool {
	return t.Code == 0 && strings.EqualFold(strings.TrimSpace(t.Value), name)
}
