package jsoncanvas

import (
	"io"
	"log/slog"
	"time"

	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/store"
)

// editorConfig holds internal configuration for an Editor.
type editorConfig struct {
	logger    *slog.Logger
	newID     IDGenerator
	templates *store.Templates
	exporter  *export.Exporter
	now       func() time.Time
}

func defaultConfig() editorConfig {
	return editorConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  NewElementID,
		now:    time.Now,
	}
}

// Option configures an [Editor].
type Option func(*editorConfig)

// WithLogger sets the logger persistence and export failures are reported
// to. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *editorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator replaces the element id generator. Generated ids must be
// unique for the lifetime of the editor.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *editorConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithTemplates sets the durable template store. Without one, templates
// live for the session only.
func WithTemplates(t *store.Templates) Option {
	return func(c *editorConfig) {
		c.templates = t
	}
}

// WithExporter sets the export pipeline. Without one, Export fails with
// export.ErrExportUnavailable.
func WithExporter(x *export.Exporter) Option {
	return func(c *editorConfig) {
		c.exporter = x
	}
}

// WithClock sets the time source for template timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *editorConfig) {
		if now != nil {
			c.now = now
		}
	}
}
