package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"sketchstudio/internal/design"
)

const dirName = ".sketchstudio"

// Global configuration structure.
type Global struct {
	CanvasWidth     float64 `mapstructure:"canvas_width" yaml:"canvas_width"`
	CanvasHeight    float64 `mapstructure:"canvas_height" yaml:"canvas_height"`
	BackgroundColor string  `mapstructure:"background_color" yaml:"background_color"`

	// Where saved designs go when the save dialog has no better suggestion.
	SaveDir     string `mapstructure:"save_dir" yaml:"save_dir"`
	LibraryPath string `mapstructure:"library_path" yaml:"library_path"`

	// AI tool server
	MCPEnabled bool   `mapstructure:"mcp_enabled" yaml:"mcp_enabled"`
	MCPAddr    string `mapstructure:"mcp_addr" yaml:"mcp_addr"`

	PreviewAddr string `mapstructure:"preview_addr" yaml:"preview_addr"`

	AskTimeoutSec    int `mapstructure:"ask_timeout_sec" yaml:"ask_timeout_sec"`
	ExportTimeoutSec int `mapstructure:"export_timeout_sec" yaml:"export_timeout_sec"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Canvas returns the canvas settings for new documents.
func (g *Global) Canvas() design.Canvas {
	return design.Canvas{Width: g.CanvasWidth, Height: g.CanvasHeight, Background: g.BackgroundColor}
}

// AskTimeout bounds how long a host dialog may stay open for an askUser request.
func (g *Global) AskTimeout() time.Duration {
	return seconds(g.AskTimeoutSec, 300)
}

// ExportTimeout bounds how long the host waits for an exportResult.
func (g *Global) ExportTimeout() time.Duration {
	return seconds(g.ExportTimeoutSec, 30)
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// Dir returns ~/.sketchstudio.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sketchstudio/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SKETCHSTUDIO")
	v.AutomaticEnv()

	v.SetDefault("canvas_width", design.DefaultCanvasWidth)
	v.SetDefault("canvas_height", design.DefaultCanvasHeight)
	v.SetDefault("background_color", design.DefaultBackgroundColor)
	v.SetDefault("save_dir", "")
	v.SetDefault("library_path", "")
	v.SetDefault("mcp_enabled", true)
	v.SetDefault("mcp_addr", "127.0.0.1:7823")
	v.SetDefault("preview_addr", "127.0.0.1:7824")
	v.SetDefault("ask_timeout_sec", 300)
	v.SetDefault("export_timeout_sec", 30)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.LibraryPath == "" || c.SaveDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		if c.LibraryPath == "" {
			c.LibraryPath = filepath.Join(dir, "library.db")
		}
		if c.SaveDir == "" {
			c.SaveDir = filepath.Join(dir, "sketches")
		}
	}
	return &c, nil
}

// Set assigns one setting by its config file key.
func (g *Global) Set(key, val string) error {
	switch key {
	case "canvas_width", "canvas_height":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid size for %s: %v", key, val)
		}
		if key == "canvas_width" {
			g.CanvasWidth = f
		} else {
			g.CanvasHeight = f
		}
	case "background_color":
		g.BackgroundColor = val
	case "save_dir":
		g.SaveDir = val
	case "library_path":
		g.LibraryPath = val
	case "mcp_enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for mcp_enabled: %v", val)
		}
		g.MCPEnabled = b
	case "mcp_addr":
		g.MCPAddr = val
	case "preview_addr":
		g.PreviewAddr = val
	case "ask_timeout_sec", "export_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid seconds for %s: %v", key, val)
		}
		if key == "ask_timeout_sec" {
			g.AskTimeoutSec = i
		} else {
			g.ExportTimeoutSec = i
		}
	case "log_level":
		switch val {
		case "debug", "info", "warn", "error":
			g.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
