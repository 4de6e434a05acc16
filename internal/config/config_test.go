package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-json-canvas/export"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JSONCANVAS_CONFIG", "")
	t.Setenv("JSONCANVAS_STORE_DRIVER", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "native", cfg.Export.Rasterizer)
	assert.Equal(t, 2.0, cfg.Export.Supersample)

	g, err := cfg.PageGeometry()
	require.NoError(t, err)
	assert.Equal(t, export.A4, g.Size)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsoncanvas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: redis
  redis_addr: cache:6379
export:
  rasterizer: chrome
  page_size: Letter
  orientation: landscape
  timeout: 45s
server:
  addr: ":8080"
log:
  level: debug
`), 0o644))

	t.Setenv("JSONCANVAS_RASTERIZER", "native")
	t.Setenv("JSONCANVAS_JWT_SECRET", "s3cret")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "native", cfg.Export.Rasterizer, "environment wins over the file")
	assert.Equal(t, 45*time.Second, cfg.Export.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")

	g, err := cfg.PageGeometry()
	require.NoError(t, err)
	assert.Equal(t, export.Letter, g.Size)
	assert.Equal(t, export.Landscape, g.Orientation)

	var buf bytes.Buffer
	cfg.Logger(&buf).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [1,"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	cfg := Default()
	cfg.Export.PageSize = "b5"
	_, err = cfg.PageGeometry()
	assert.Error(t, err)
}
