package entities

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/geom"
)

type AnnotationKind string

const (
	AnnotationText      AnnotationKind = "text"
	AnnotationLeader    AnnotationKind = "leader"
	AnnotationSymbol    AnnotationKind = "symbol"
	AnnotationTolerance AnnotationKind = "tolerance"
)

// Annotation 独立的标记，不由其他实体的几何推导
type Annotation struct {
	BaseEntity
	Kind     AnnotationKind
	Position core.Point // 文字插入点(左下)，引线的末端
	Text     string
	Height   float64 `validate:"gte=0"`
	Rotation float64 // 角度制
	Points   []core.Point // 引线折点，从箭头开始
	Symbol   string
	Upper    float64 // 公差上偏差
	Lower    float64 // 公差下偏差
}

func NewText(position core.Point, text string, height float64) *Annotation {
	return &Annotation{BaseEntity: NewBase("0"), Kind: AnnotationText, Position: position, Text: text, Height: height}
}

// Parse 解析 DXF TEXT/MTEXT
func (a *Annotation) Parse(scanner *core.Scanner) error {
	a.Kind = AnnotationText
	for {
		tag := scanner.LastTag
		if !a.parseCommon(tag) {
			switch tag.Code {
			case 10:
				a.Position.X = tag.AsFloat()
			case 20:
				a.Position.Y = tag.AsFloat()
			case 40:
				a.Height = tag.AsFloat()
			case 1, 3: // MTEXT 超长文字拆在 3 组码里
				a.Text += tag.Value
			case 50:
				a.Rotation = tag.AsFloat()
			}
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}
	a.Text = strings.TrimSpace(a.Text)
	return nil
}

// DisplayText 实际显示的文字，公差标注由上下偏差生成
func (a *Annotation) DisplayText() string {
	switch a.Kind {
	case AnnotationTolerance:
		return fmt.Sprintf("%s +%s/-%s", a.Text, FormatValue(a.Upper), FormatValue(a.Lower))
	case AnnotationSymbol:
		return a.Symbol
	}
	return a.Text
}

// TextExtent 以等宽字体估算文字宽高(世界单位)
func (a *Annotation) TextExtent() (width, height float64) {
	text := a.DisplayText()
	if text == "" || a.Height <= 0 {
		return 0, 0
	}
	face := basicfont.Face7x13
	advance := font.MeasureString(face, text).Ceil()
	scale := a.Height / float64(face.Height)
	return float64(advance) * scale, a.Height
}

func (a *Annotation) BBox() core.BBox {
	box := core.BBoxOf(a.Position)
	for _, p := range a.Points {
		box = box.Extend(p)
	}

	switch a.Kind {
	case AnnotationSymbol:
		half := a.Height / 2
		return box.Union(core.BBox{
			Min: core.Point{X: a.Position.X - half, Y: a.Position.Y - half},
			Max: core.Point{X: a.Position.X + half, Y: a.Position.Y + half},
		})
	default:
		w, h := a.TextExtent()
		if w == 0 {
			return box
		}
		tr := geom.Transform{Translate: a.Position, Rotation: a.Rotation, Scale: core.Point{X: 1, Y: 1}}
		return box.Union(tr.ApplyBBox(core.BBox{Max: core.Point{X: w, Y: h}}))
	}
}

func (a *Annotation) Clone() *Annotation {
	n := *a
	n.BaseEntity = a.BaseEntity.clone()
	n.Points = slices.Clone(a.Points)
	return &n
}
