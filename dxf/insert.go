package dxf

import (
	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

// Insert 块引用
type Insert struct {
	BlockName      string
	LayerName      string
	InsertionPoint core.Point
	Scale          core.Point
	Rotation       float64 // 角度制
	Attributes     map[string]string
}

func newInsert() *Insert {
	return &Insert{
		Scale:      core.Point{X: 1, Y: 1}, // 默认缩放为 1
		Attributes: make(map[string]string),
	}
}

func (i *Insert) Parse(scanner *core.Scanner) error {
	hasAttributes := false

	for {
		tag := scanner.LastTag
		switch tag.Code {
		case 2:
			i.BlockName = tag.AsString()
		case 8:
			i.LayerName = tag.AsString()
		case 10:
			i.InsertionPoint.X = tag.AsFloat()
		case 20:
			i.InsertionPoint.Y = tag.AsFloat()
		case 41:
			i.Scale.X = tag.AsFloat()
		case 42:
			i.Scale.Y = tag.AsFloat()
		case 50:
			i.Rotation = tag.AsFloat()
		case 66:
			if tag.AsInt() == 1 {
				hasAttributes = true
			}
		}

		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}

	// 标记了有属性时，继续在当前流中抓取 ATTRIB 直到 SEQEND
	if hasAttributes {
		for scanner.LastTag.Is("ATTRIB") {
			var key, value string
			for scanner.Next() && scanner.LastTag.Code != 0 {
				switch scanner.LastTag.Code {
				case 2:
					key = scanner.LastTag.AsString()
				case 1:
					value = scanner.LastTag.AsString()
				}
			}
			if key != "" {
				i.Attributes[key] = value
			}
		}
		if scanner.LastTag.Is("SEQEND") {
			// 消耗掉 SEQEND 及其组码
			for scanner.Next() && scanner.LastTag.Code != 0 {
			}
		}
	}
	return nil
}

// Attr 按标签取属性值
func (i *Insert) Attr(key string) string {
	return i.Attributes[key]
}

// Transform 块内局部坐标到插入所在坐标系的变换
func (i *Insert) Transform() geom.Transform {
	return geom.Transform{
		Translate: i.InsertionPoint,
		Rotation:  i.Rotation,
		Scale:     i.Scale,
	}
}
