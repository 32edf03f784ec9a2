package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zooyer/cad/core"
)

var (
	snapAt   string
	snapRef  string
	snapZoom float64

	snapCmd = &cobra.Command{
		Use:   "snap [file.dxf]",
		Short: "查询图纸中某个位置的吸附点",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnap,
	}
)

func init() {
	snapCmd.Flags().StringVar(&snapAt, "at", "0,0", "光标位置 x,y")
	snapCmd.Flags().StringVar(&snapRef, "ref", "", "参考点 x,y (切点、垂足使用)")
	snapCmd.Flags().Float64Var(&snapZoom, "zoom", 0, "缩放比例，0 表示使用配置")
}

func parsePoint(s string) (core.Point, error) {
	var p core.Point
	if _, err := fmt.Sscanf(s, "%g,%g", &p.X, &p.Y); err != nil {
		return core.Point{}, fmt.Errorf("坐标格式应为 x,y: %q", s)
	}
	return p, nil
}

func runSnap(cmd *cobra.Command, args []string) error {
	filename, err := inputFile(args)
	if err != nil {
		return err
	}
	at, err := parsePoint(snapAt)
	if err != nil {
		return err
	}
	var ref *core.Point
	if snapRef != "" {
		p, err := parsePoint(snapRef)
		if err != nil {
			return err
		}
		ref = &p
	}

	doc, err := open(filename)
	if err != nil {
		return err
	}
	if snapZoom > 0 {
		s := doc.SnapSettings()
		s.Zoom = snapZoom
		doc.SetSnapSettings(s)
	}

	out := cmd.OutOrStdout()
	c, ok := doc.FindBestSnapPoint(at, ref)
	if !ok {
		fmt.Fprintln(out, "无吸附点")
		return nil
	}
	fmt.Fprintf(out, "%s (%.4f, %.4f) 距离 %.4f 实体 %s\n", c.Label, c.Point.X, c.Point.Y, c.Distance, c.EntityID)
	return nil
}
