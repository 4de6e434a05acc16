// Package config loads the command-line tool's settings from an optional
// YAML file and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/go-json-canvas/export"
)

// Config is the complete tool configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Export ExportConfig `yaml:"export"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"` // memory, sqlite, mysql, postgres, redis
	DSN           string `yaml:"dsn"`
	Key           string `yaml:"key"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type ExportConfig struct {
	Rasterizer   string        `yaml:"rasterizer"` // native or chrome
	Supersample  float64       `yaml:"supersample"`
	PageSize     string        `yaml:"page_size"`
	Orientation  string        `yaml:"orientation"`
	ChromePath   string        `yaml:"chrome_path"`
	NoSandbox    bool          `yaml:"no_sandbox"`
	AutoDownload bool          `yaml:"auto_download"`
	Timeout      time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	JWTSecret    string        `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings: a local sqlite store and the
// native rasterizer on A4 portrait.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "jsoncanvas.db",
		},
		Export: ExportConfig{
			Rasterizer:  "native",
			Supersample: export.DefaultSupersample,
			PageSize:    "a4",
			Orientation: "portrait",
			Timeout:     30 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (or $JSONCANVAS_CONFIG when path is empty) over the
// defaults, then applies environment overrides. No file at all is fine.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("JSONCANVAS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store.Driver = getEnv("JSONCANVAS_STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("JSONCANVAS_STORE_DSN", c.Store.DSN)
	c.Store.RedisAddr = getEnv("JSONCANVAS_REDIS_ADDR", c.Store.RedisAddr)
	c.Export.ChromePath = getEnv("JSONCANVAS_CHROME_PATH", c.Export.ChromePath)
	c.Export.Rasterizer = getEnv("JSONCANVAS_RASTERIZER", c.Export.Rasterizer)
	c.Export.Supersample = getEnvAsFloat("JSONCANVAS_SUPERSAMPLE", c.Export.Supersample)
	c.Log.Level = getEnv("JSONCANVAS_LOG_LEVEL", c.Log.Level)
	c.Server.Addr = getEnv("JSONCANVAS_ADDR", c.Server.Addr)
	c.Server.JWTSecret = getEnv("JSONCANVAS_JWT_SECRET", c.Server.JWTSecret)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

var pageSizes = map[string]export.PageSize{
	"a3":      export.A3,
	"a4":      export.A4,
	"a5":      export.A5,
	"letter":  export.Letter,
	"legal":   export.Legal,
	"tabloid": export.Tabloid,
}

// PageGeometry resolves the configured paper size and orientation.
func (c *Config) PageGeometry() (export.PageGeometry, error) {
	g := export.DefaultPageGeometry()
	if c.Export.PageSize != "" {
		size, ok := pageSizes[strings.ToLower(c.Export.PageSize)]
		if !ok {
			return g, fmt.Errorf("config: unknown page size %q", c.Export.PageSize)
		}
		g.Size = size
	}
	switch strings.ToLower(c.Export.Orientation) {
	case "", "portrait":
	case "landscape":
		g.Orientation = export.Landscape
	default:
		return g, fmt.Errorf("config: unknown orientation %q", c.Export.Orientation)
	}
	return g, nil
}

// Logger builds a text logger on w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
