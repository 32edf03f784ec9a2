package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"github.com/zooyer/golib/xos"

	"github.com/zooyer/cad"
	"github.com/zooyer/cad/config"
	"github.com/zooyer/cad/core"
)

var (
	configPath string
	pause      bool
	settings   = config.Default()

	rootCmd = &cobra.Command{
		Use:               "cad",
		Short:             "DXF 图纸检查工具",
		Long:              `读取 DXF 图纸，核对门窗尺寸与标注，查询吸附点，或监听图纸变化自动重新生成报表。`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if pause {
				xos.PauseExit()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cad.yaml", "配置文件，不存在时使用默认配置")
	rootCmd.PersistentFlags().BoolVar(&pause, "pause", false, "结束前等待按键")
	rootCmd.AddCommand(reportCmd, snapCmd, watchCmd)
}

func setup(*cobra.Command, []string) error {
	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	settings = s
	core.SetLogger(s.Logger(os.Stderr))
	return nil
}

// inputFile 没有传入文件时弹出文件选择框
func inputFile(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	filename, err := zenity.SelectFile(
		zenity.Title("选择 DXF 图纸"),
		zenity.FileFilters{{Name: "DXF 图纸", Patterns: []string{"*.dxf", "*.DXF"}}},
	)
	if err != nil {
		return "", fmt.Errorf("选择文件: %w", err)
	}
	return filename, nil
}

func open(filename string) (doc *cad.Document, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	doc = cad.New(settings)
	n, err := doc.LoadDXF(file)
	if err != nil {
		return nil, err
	}
	core.Logger().Info("loaded", "file", filename, "objects", n)
	return doc, nil
}

func main() {
	// 把图纸拖到程序上运行时，直接生成报表并等待按键
	if len(os.Args) == 2 && strings.EqualFold(filepath.Ext(os.Args[1]), ".dxf") {
		os.Args = []string{os.Args[0], "report", "--pause", os.Args[1]}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
