package entities

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/zooyer/cad/core"
)

type DimensionKind string

const (
	DimLinear      DimensionKind = "linear"
	DimAligned     DimensionKind = "aligned"
	DimAngular     DimensionKind = "angular"
	DimRadial      DimensionKind = "radial"
	DimDiametrical DimensionKind = "diametrical"
	DimChain       DimensionKind = "chain"
)

var (
	reFormat = regexp.MustCompile(`\\[A-Za-z].*?;`)
	reNumber = regexp.MustCompile(`-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// Dimension 尺寸标注。Text 是显示值的缓存，可以由 Points 推导，
// 除用户直接编辑外只由关联标注引擎写入。
//
// Points 的含义随 Kind 变化：
//   - linear/aligned: [起点, 终点]
//   - angular: [顶点, 第一边上一点, 第二边上一点]
//   - radial/diametrical: [圆心, 圆上一点]
//   - chain: 依次相邻的测量点
type Dimension struct {
	BaseEntity
	Kind         DimensionKind
	Points       []core.Point
	Angle        float64 // 线性标注的标注线方向，角度制
	Offset       float64 // 标注线到测量点的距离
	TextPosition core.Point
	Text         string
	StyleName    string
	Modified     time.Time
}

func NewDimension(kind DimensionKind, points ...core.Point) *Dimension {
	return &Dimension{BaseEntity: NewBase("0"), Kind: kind, Points: points}
}

// Parse 解析 DXF DIMENSION
func (d *Dimension) Parse(scanner *core.Scanner) error {
	var (
		defPoint, measureStart, measureEnd, extra core.Point
		actual                                    float64
		dimType                                   int
	)
	for {
		tag := scanner.LastTag
		if !d.parseCommon(tag) {
			switch tag.Code {
			case 3:
				d.StyleName = strings.ToUpper(tag.AsString())
			case 1:
				d.Text = tag.AsString()
			case 42:
				actual = tag.AsFloat()
			case 50:
				d.Angle = tag.AsFloat()
			case 10:
				defPoint.X = tag.AsFloat()
			case 20:
				defPoint.Y = tag.AsFloat()
			case 11:
				d.TextPosition.X = tag.AsFloat()
			case 21:
				d.TextPosition.Y = tag.AsFloat()
			case 13:
				measureStart.X = tag.AsFloat()
			case 23:
				measureStart.Y = tag.AsFloat()
			case 14:
				measureEnd.X = tag.AsFloat()
			case 24:
				measureEnd.Y = tag.AsFloat()
			case 15:
				extra.X = tag.AsFloat()
			case 25:
				extra.Y = tag.AsFloat()
			case 70:
				// 组码 70 的低 3 位判定类型
				dimType = tag.AsInt() & 0x07
			}
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}

	switch dimType {
	case 1:
		d.Kind = DimAligned
		d.Points = []core.Point{measureStart, measureEnd}
	case 2, 5:
		d.Kind = DimAngular
		d.Points = []core.Point{extra, measureStart, measureEnd}
	case 3:
		// 直径标注: 10 与 15 是直径两端
		d.Kind = DimDiametrical
		d.Points = []core.Point{defPoint.Lerp(extra, 0.5), extra}
	case 4:
		d.Kind = DimRadial
		d.Points = []core.Point{defPoint, extra}
	default:
		d.Kind = DimLinear
		d.Points = []core.Point{measureStart, measureEnd}
	}
	if unit, ok := d.direction(); ok {
		d.Offset = defPoint.Sub(d.Points[0]).Dot(unit.Perp())
	}

	// 文字为空或含 <> 时，显示的是实际测量值
	if d.Text == "" || strings.Contains(d.Text, "<>") {
		if actual == 0 {
			actual, _ = d.Measure()
		}
		d.SetValue(actual)
	}
	return nil
}

// Value 宽松解析缓存文字中的第一个数字，解析不到返回 false
func (d *Dimension) Value() (float64, bool) {
	return ParseValue(d.Text)
}

// SetValue 按两位小数写入缓存文字
func (d *Dimension) SetValue(v float64) {
	d.Text = FormatValue(v)
}

// FormatValue 标注显示文字的格式化规则
func FormatValue(v float64) string {
	if !core.IsFinite(v) {
		return ""
	}
	if v == 0 {
		v = 0 // -0 统一成 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ParseValue 去掉 MTEXT 格式码后取第一个数字
func ParseValue(text string) (float64, bool) {
	clean := reFormat.ReplaceAllString(text, "")
	match := reNumber.FindString(clean)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || !core.IsFinite(v) {
		return 0, false
	}
	return v, true
}

// Measure 由标注自身的几何计算测量值，几何退化时返回 false
func (d *Dimension) Measure() (float64, bool) {
	switch d.Kind {
	case DimLinear:
		v, ok := d.direction()
		if !ok {
			return 0, false
		}
		return math.Abs(d.Points[1].Sub(d.Points[0]).Dot(v)), true
	case DimAligned:
		if len(d.Points) < 2 {
			return 0, false
		}
		return d.Points[0].Distance(d.Points[1]), true
	case DimAngular:
		if len(d.Points) < 3 {
			return 0, false
		}
		a, ok1 := d.Points[1].Sub(d.Points[0]).Normalize()
		b, ok2 := d.Points[2].Sub(d.Points[0]).Normalize()
		if !ok1 || !ok2 {
			return 0, false
		}
		cos := math.Max(-1, math.Min(1, a.Dot(b)))
		return math.Acos(cos) * 180 / math.Pi, true
	case DimRadial:
		if len(d.Points) < 2 {
			return 0, false
		}
		return d.Points[0].Distance(d.Points[1]), true
	case DimDiametrical:
		if len(d.Points) < 2 {
			return 0, false
		}
		return 2 * d.Points[0].Distance(d.Points[1]), true
	case DimChain:
		if len(d.Points) < 2 {
			return 0, false
		}
		var total float64
		for i := 1; i < len(d.Points); i++ {
			total += d.Points[i-1].Distance(d.Points[i])
		}
		return total, true
	}
	return 0, false
}

// direction 线性/对齐标注的标注线单位方向
func (d *Dimension) direction() (core.Point, bool) {
	if len(d.Points) < 2 {
		return core.Point{}, false
	}
	switch d.Kind {
	case DimLinear:
		rad := d.Angle * math.Pi / 180.0
		return core.Point{X: math.Cos(rad), Y: math.Sin(rad)}, true
	case DimAligned:
		return d.Points[1].Sub(d.Points[0]).Normalize()
	}
	return core.Point{}, false
}

// ExtensionPoints 计算标注线上的两个转角点(测量点沿法线偏移 Offset)
func (d *Dimension) ExtensionPoints() (start, end core.Point, ok bool) {
	unit, ok := d.direction()
	if !ok {
		return core.Point{}, core.Point{}, false
	}
	n := unit.Perp().Mul(d.Offset)

	// 两个测量点投影到同一条标注线上
	p0 := d.Points[0]
	p1 := p0.Add(unit.Mul(d.Points[1].Sub(p0).Dot(unit)))
	return p0.Add(n), p1.Add(n), true
}

// BBox 包含所有测量点、标注线转角点和文字位置
func (d *Dimension) BBox() core.BBox {
	points := slices.Clone(d.Points)
	if s, e, ok := d.ExtensionPoints(); ok {
		points = append(points, s, e)
	}
	if d.TextPosition != (core.Point{}) {
		points = append(points, d.TextPosition)
	}
	if len(points) == 0 {
		return core.BBox{}
	}
	return core.BBoxOf(points...)
}

func (d *Dimension) Clone() *Dimension {
	n := *d
	n.BaseEntity = d.BaseEntity.clone()
	n.Points = slices.Clone(d.Points)
	return &n
}
