// Package config 读取绘图核心的 YAML 配置
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zooyer/cad/snap"
)

var ErrInvalid = errors.New("config: invalid settings")

var validate = validator.New()

type Settings struct {
	Snap      SnapSettings `yaml:"snap"`
	AutoSolve bool         `yaml:"auto_solve"` // 几何编辑后自动求解约束
	Log       LogSettings  `yaml:"log"`
}

type SnapSettings struct {
	Zoom            float64 `yaml:"zoom" validate:"gt=0"`
	GridSize        float64 `yaml:"grid_size" validate:"gt=0"`
	GridEnabled     bool    `yaml:"grid_enabled"`
	SnappingEnabled bool    `yaml:"snapping_enabled"`
	PixelRadius     float64 `yaml:"pixel_radius" validate:"gt=0"`
}

type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func Default() Settings {
	s := snap.DefaultSettings()
	return Settings{
		Snap: SnapSettings{
			Zoom:            s.Zoom,
			GridSize:        s.GridSize,
			GridEnabled:     s.GridEnabled,
			SnappingEnabled: s.SnappingEnabled,
			PixelRadius:     s.PixelRadius,
		},
		AutoSolve: true,
		Log:       LogSettings{Level: "info", Format: "text"},
	}
}

// Parse 在默认值之上解析 YAML，缺省的字段保持默认
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load 读取配置文件，文件不存在时返回默认配置
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Save 写出配置，用于首次运行时生成默认文件
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (s Settings) SnapSettings() snap.Settings {
	return snap.Settings{
		Zoom:            s.Snap.Zoom,
		GridSize:        s.Snap.GridSize,
		GridEnabled:     s.Snap.GridEnabled,
		SnappingEnabled: s.Snap.SnappingEnabled,
		PixelRadius:     s.Snap.PixelRadius,
	}
}

// Logger 按配置创建日志器
func (s Settings) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(s.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if s.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
