// Package dxf 尽力而为地读取 DXF 文本文件，产出 entities 中的模型对象。
// 不认识的对象直接跳过。
package dxf

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
)

type DimStyle struct {
	Name      string
	Precision int     // 对应组码 271 DIMDEC，显示的小数位数
	ExLimit   float64 // 对应组码 44 DIMEXE，标注线超出延伸线的长度
	Scale     float64 // 对应组码 40 DIMSCALE，全局比例，影响所有标注特征
}

// Round 按样式精度四舍五入
func (s *DimStyle) Round(v float64) float64 {
	p := math.Pow(10, float64(s.Precision))
	return math.Round(v*p) / p
}

// Content 块定义或模型空间中读取到的内容
type Content struct {
	Entities    []entities.Entity
	Dimensions  []*entities.Dimension
	Annotations []*entities.Annotation
	Inserts     []*Insert
}

type Block struct {
	Name string
	Base core.Point // 块基点，插入时与插入点对齐
	Content
}

type Document struct {
	Blocks    map[string]*Block
	DimStyles map[string]*DimStyle
	Content
}

func (d *Document) parseBlocks(scanner *core.Scanner) {
	var currentBlock *Block
	for scanner.Next() {
		tag := scanner.LastTag
		if tag.Is("ENDSEC") {
			break
		}
		if tag.Is("BLOCK") {
			currentBlock = &Block{}
			for scanner.Next() {
				t := scanner.LastTag
				if t.Code == 0 {
					break
				}
				switch t.Code {
				case 2:
					currentBlock.Name = strings.ToUpper(t.Value)
				case 10:
					currentBlock.Base.X = t.AsFloat()
				case 20:
					currentBlock.Base.Y = t.AsFloat()
				}
			}
			d.Blocks[currentBlock.Name] = currentBlock
			scanner.Unread()
			continue
		}
		if currentBlock != nil && tag.Code == 0 && !tag.Is("ENDBLK") {
			if currentBlock.parseObject(scanner) {
				scanner.Unread()
			}
		}
	}
}

func (d *Document) parseEntities(scanner *core.Scanner) {
	for {
		tag := scanner.LastTag
		if tag.Is("ENDSEC") {
			break
		}
		if tag.Code == 0 && d.parseObject(scanner) {
			continue
		}
		if !scanner.Next() {
			break
		}
	}
}

// parseObject 解析 LastTag 指向的对象，成功后 LastTag 停在下一个对象的 0 组码上
func (c *Content) parseObject(scanner *core.Scanner) bool {
	var (
		name   = strings.ToUpper(scanner.LastTag.Value)
		parser entities.Parser
	)
	switch name {
	case "DIMENSION":
		dim := &entities.Dimension{BaseEntity: entities.NewBase("0")}
		c.Dimensions = append(c.Dimensions, dim)
		parser = dim
	case "TEXT", "MTEXT":
		ann := &entities.Annotation{BaseEntity: entities.NewBase("0")}
		c.Annotations = append(c.Annotations, ann)
		parser = ann
	case "INSERT":
		ins := newInsert()
		c.Inserts = append(c.Inserts, ins)
		parser = ins
	default:
		ent := entities.Create(name)
		if ent == nil {
			return false
		}
		if parser, _ = ent.(entities.Parser); parser == nil {
			return false
		}
		c.Entities = append(c.Entities, ent)
	}

	if !scanner.Next() {
		return false
	}
	if err := parser.Parse(scanner); err != nil {
		core.Logger().Warn("dxf: parse object failed", "name", name, "line", scanner.Line(), "error", err)
	}
	return scanner.LastTag.Code == 0
}

func (d *Document) parseTables(scanner *core.Scanner) {
	for scanner.Next() {
		tag := scanner.LastTag
		if tag.Is("ENDSEC") {
			break
		}
		if tag.Is("TABLE") {
			scanner.Next()
			tableName := strings.ToUpper(scanner.LastTag.Value)
			if tableName == "DIMSTYLE" {
				d.parseDimStyles(scanner)
			}
		}
	}
}

func (d *Document) parseDimStyles(scanner *core.Scanner) {
	var currentStyle *DimStyle
	for {
		tag := scanner.LastTag
		if tag.Is("ENDTAB") {
			break
		}

		if tag.Is("DIMSTYLE") {
			currentStyle = &DimStyle{
				Precision: 0,
				ExLimit:   0.0,
				Scale:     1.0, // 默认为 1.0，防止乘法归零
			}

			for scanner.Next() {
				t := scanner.LastTag
				if t.Code == 0 {
					break
				}
				switch t.Code {
				case 2: // 样式名称
					currentStyle.Name = strings.ToUpper(t.Value)
				case 271: // 精度
					currentStyle.Precision = t.AsInt()
				case 44: // 标注线超出延伸线长度 (DIMEXE)
					currentStyle.ExLimit = t.AsFloat()
				case 40: // 全局标注比例 (DIMSCALE)
					if s := t.AsFloat(); s > 0 {
						currentStyle.Scale = s
					}
				}
			}

			if currentStyle.Name != "" {
				d.DimStyles[currentStyle.Name] = currentStyle
			}

			// 内层循环已经停在下一个 0 组码上(DIMSTYLE 或 ENDTAB)
			if scanner.LastTag.Code == 0 {
				continue
			}
		}

		if !scanner.Next() {
			break
		}
	}
}

// DimValue 标注的数值：有手动文字覆盖时按文字提取，否则按样式精度对测量值取整
func (d *Document) DimValue(dim *entities.Dimension) (float64, bool) {
	measured, ok := dim.Measure()
	if !ok {
		return dim.Value()
	}

	// 1. 文字与测量值不一致，说明是手动覆盖
	if dim.Text != "" && dim.Text != entities.FormatValue(measured) {
		if v, ok := dim.Value(); ok {
			return v, true
		}
	}

	// 2. 查找标注样式定义的精度
	if style, ok := d.DimStyles[strings.ToUpper(dim.StyleName)]; ok {
		return style.Round(measured), true
	}
	return measured, true
}

func Open(filename string) (doc *Document, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return Load(file)
}

func Load(reader io.Reader) (doc *Document, err error) {
	var (
		scanner  = core.NewScanner(reader)
		document = &Document{
			Blocks:    make(map[string]*Block),
			DimStyles: make(map[string]*DimStyle),
			Content: Content{
				Entities: make([]entities.Entity, 0, 1024),
			},
		}
	)

	for scanner.Next() {
		tag := scanner.LastTag
		if tag.Is("SECTION") {
			if !scanner.Next() {
				break
			}
			sectionName := strings.ToUpper(scanner.LastTag.Value)
			switch sectionName {
			case "TABLES":
				document.parseTables(scanner)
			case "BLOCKS":
				document.parseBlocks(scanner)
			case "ENTITIES":
				document.parseEntities(scanner)
			}
		}
	}

	core.Logger().Debug("dxf: loaded",
		"entities", len(document.Entities),
		"dimensions", len(document.Dimensions),
		"annotations", len(document.Annotations),
		"inserts", len(document.Inserts),
		"blocks", len(document.Blocks),
	)

	return document, scanner.Err()
}
