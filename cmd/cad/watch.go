package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zooyer/cad/core"
)

const debounce = 300 * time.Millisecond

var (
	metricsAddr string

	watchCmd = &cobra.Command{
		Use:   "watch [file.dxf]",
		Short: "图纸保存后自动重新生成报表",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics", "", "prometheus 指标监听地址，如 :9090")
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename, err := inputFile(args)
	if err != nil {
		return err
	}
	filename, err = filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// 监听所在目录，很多编辑器保存时是先删除再重建文件
	if err = watcher.Add(filepath.Dir(filename)); err != nil {
		return err
	}

	if metricsAddr != "" {
		server := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				core.Logger().Error("metrics server", "error", err)
			}
		}()
		defer server.Close()
	}

	out := cmd.OutOrStdout()
	if err = report(filename, out); err != nil {
		core.Logger().Warn("report failed", "file", filename, "error", err)
	}

	var (
		ctx  = cmd.Context()
		fire <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fire = time.After(debounce)
			}
		case <-fire:
			fire = nil
			if err = report(filename, out); err != nil {
				core.Logger().Warn("report failed", "file", filename, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			core.Logger().Warn("watch error", "error", err)
		}
	}
}
