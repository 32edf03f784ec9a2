package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zooyer/golib/xmath"
	"github.com/zooyer/golib/xos"

	"github.com/zooyer/cad/core"
	"github.com/zooyer/cad/entities"
	"github.com/zooyer/cad/geom"
)

const (
	dimGap = 30 // 标注连接线容错(不超过则认为挨着门窗周围)
	winGap = 20 // 门窗散线容错(不超过则认为是同一个门窗)
)

var (
	winLayer string
	dimLayer string
	epsilon  float64
	writeCSV bool

	reportCmd = &cobra.Command{
		Use:   "report [file.dxf]",
		Short: "核对门窗尺寸与标注并生成 CSV 报表",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, err := inputFile(args)
			if err != nil {
				return err
			}
			return report(filename, cmd.OutOrStdout())
		},
	}
)

func init() {
	reportCmd.Flags().StringVar(&winLayer, "layer", "PJ", "门窗所在图层")
	reportCmd.Flags().StringVar(&dimLayer, "dim-layer", "BZ", "门窗标注所在图层")
	reportCmd.Flags().Float64Var(&epsilon, "epsilon", 1, "尺寸与标注的对比误差")
	reportCmd.Flags().BoolVar(&writeCSV, "csv", true, "在图纸旁边写入同名 CSV")
}

type Window struct {
	Box     core.BBox             // 门窗范围(纯门窗面积)
	Area    core.BBox             // 覆盖范围(含标注面积)
	Labels  []*entities.Dimension // 所有标注
	Widths  []float64             // 标注宽度
	Heights []float64             // 标注高度
}

func (w Window) Width() float64 {
	return w.Box.Width()
}

func (w Window) Height() float64 {
	return w.Box.Height()
}

func (w Window) MaxWidth() float64 {
	if len(w.Widths) < 1 {
		return 0
	}

	return slices.Max(w.Widths)
}

func (w Window) MaxHeight() float64 {
	if len(w.Heights) < 1 {
		return 0
	}

	return slices.Max(w.Heights)
}

func (w Window) VerifyWidth(epsilon float64) bool {
	return len(w.Widths) > 0 && xmath.Equal(w.Width(), slices.Max(w.Widths), epsilon)
}

func (w Window) VerifyHeight(epsilon float64) bool {
	return len(w.Heights) > 0 && xmath.Equal(w.Height(), slices.Max(w.Heights), epsilon)
}

// collectWindows 合并门窗图层的散线为门窗，并找出每个门窗周围的标注
func collectWindows(list []entities.Entity, dims []*entities.Dimension, layer, dimLayer string) (windows []Window) {
	// 1. 合并散线为矩形
	var boxes []core.BBox
	for _, e := range list {
		if strings.EqualFold(e.Layer(), layer) {
			boxes = append(boxes, e.BBox())
		}
	}
	boxes = geom.MergeBoxes(boxes, winGap)

	// 排序窗户 (从上到下，同一行从左到右)
	sort.Slice(boxes, func(i, j int) bool {
		if math.Abs(boxes[i].Max.Y-boxes[j].Max.Y) > 500 {
			return boxes[i].Max.Y > boxes[j].Max.Y
		}
		return boxes[i].Min.X < boxes[j].Min.X
	})

	// 2. 只要标注图层的转角标注
	var labels []*entities.Dimension
	for _, d := range dims {
		if d.Kind == entities.DimLinear && strings.EqualFold(d.Layer(), dimLayer) {
			labels = append(labels, d)
		}
	}

	// 3. 逐圈扩展范围，抓取外圈的总尺寸标注
	for _, box := range boxes {
		var (
			area  = box
			rest  = labels
			curr  []*entities.Dimension
			nears []*entities.Dimension
		)
		for {
			if rest, curr, area = nearDims(rest, area, dimGap); len(curr) == 0 {
				break
			}
			nears = append(nears, curr...)
		}

		var widths, heights []float64
		for _, near := range nears {
			value, ok := near.Value()
			if !ok {
				if value, ok = near.Measure(); !ok {
					continue
				}
			}

			switch int(math.Round(geom.NormalizeAngle(near.Angle*math.Pi/180) * 180 / math.Pi)) {
			case 0, 180, 360:
				widths = append(widths, value)
			case 90, 270:
				heights = append(heights, value)
			}
		}

		windows = append(windows, Window{
			Box:     box,
			Area:    area,
			Labels:  nears,
			Widths:  widths,
			Heights: heights,
		})
	}

	return
}

// nearDims 寻找与当前 box 邻近的标注
// 返回：未被匹配的标注(rest)、本次匹配到的标注(near)、扩充后的新盒子(newBox)
func nearDims(dims []*entities.Dimension, box core.BBox, gap float64) (rest, near []*entities.Dimension, newBox core.BBox) {
	newBox = box

	for _, d := range dims {
		b := d.BBox()
		if geom.IsSeparate(box, b, gap) {
			rest = append(rest, d)
			continue
		}
		near = append(near, d)
		newBox = newBox.Union(b)
	}
	return
}

func renderBool(b bool) string {
	if b {
		return "✅"
	}

	return "❌"
}

func report(filename string, out io.Writer) error {
	doc, err := open(filename)
	if err != nil {
		return err
	}

	var windows = collectWindows(doc.Entities(), doc.Dimensions(), winLayer, dimLayer)
	fmt.Fprintf(out, "开始处理: %d 个门窗数据...\n", len(windows))

	// 1. 写入表头
	const header = "序号,宽度,高度,校验,测量宽度,测量高度,识别宽度,识别高度\n"
	var csv = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".csv"
	if writeCSV {
		if err = os.WriteFile(csv, []byte(header), 0644); err != nil {
			return err
		}
		fmt.Fprintln(out, "写入文件:", csv)
	}

	var totalArea float64
	// 2. 写入表格，打印输出
	for i, w := range windows {
		var width, height = w.Width(), w.Height()
		fmt.Fprintf(out, "[窗户%d] | %.1f x %.1f | RECTANG %.2f,%.2f %.2f,%.2f\n",
			i+1, width, height, w.Box.Min.X, w.Box.Min.Y, w.Box.Max.X, w.Box.Max.Y,
		)

		var verifyWidth, verifyHeight = w.VerifyWidth(epsilon), w.VerifyHeight(epsilon)
		fmt.Fprintln(out, "    |-- [识别宽度]:", w.Widths, renderBool(verifyWidth))
		fmt.Fprintln(out, "    |-- [识别高度]:", w.Heights, renderBool(verifyHeight))
		fmt.Fprintf(out, "    |-- [最终范围]: RECTANG %.0f,%.0f %.0f,%.0f\n", w.Area.Min.X, w.Area.Min.Y, w.Area.Max.X, w.Area.Max.Y)

		totalArea += width * height

		if !writeCSV {
			continue
		}
		var line = fmt.Sprintf("%d,%.0f,%.0f,%s,%.0f,%.0f,%s,%s\n",
			i+1, w.MaxWidth(), w.MaxHeight(),
			renderBool(verifyWidth && verifyHeight), width, height,
			fmt.Sprint(w.Widths), fmt.Sprint(w.Heights),
		)
		if err = xos.AppendFile(csv, []byte(line), 0644); err != nil {
			return err
		}
	}

	// 3. 写入统计信息
	var stat = fmt.Sprintf("共%d门窗,共%.2f面积\n", len(windows), totalArea)
	fmt.Fprint(out, stat)
	if writeCSV {
		return xos.AppendFile(csv, []byte(stat), 0644)
	}
	return nil
}
