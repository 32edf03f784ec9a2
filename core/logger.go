package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志，Enabled 返回 false 以跳过格式化
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置 cad 及其子包共用的日志器，默认不输出任何日志。
// 传入 nil 恢复静默。
//
// 日志级别约定:
//   - Debug: 重算、吸附查询的内部细节
//   - Warn: 公式错误、引用失效等可降级的问题
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志器，并发安全
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
