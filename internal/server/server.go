// Package server exposes the template library over HTTP: field listing for
// an uploaded JSON document, the stored templates, and their HTML preview
// and PDF export.
package server

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/store"
)

// Config wires the server to its collaborators. Templates and Exporter may
// be nil; the routes that need them then answer as if nothing is stored or
// as unavailable.
type Config struct {
	Templates *store.Templates
	Exporter  *export.Exporter
	Logger    *slog.Logger

	// JWTSecret enables HS256 bearer authentication on every /api route.
	JWTSecret string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// AccessLog turns on the per-request log line.
	AccessLog bool
}

// Server is the HTTP front of the template library.
type Server struct {
	cfg Config
	app *fiber.App
}

// New builds the fiber app and registers every route.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{cfg: cfg}
	s.app = fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      "jsoncanvas",
		BodyLimit:    16 << 20,
	})

	s.app.Use(recover.New())
	if cfg.AccessLog {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	s.app.Get("/health/live", s.live)
	s.app.Get("/health/ready", s.ready)

	api := s.app.Group("/api/v1")
	if cfg.JWTSecret != "" {
		api.Use(bearerAuth([]byte(cfg.JWTSecret)))
	}
	api.Post("/fields", s.fields)
	api.Get("/templates", s.listTemplates)
	api.Get("/templates/:index/preview", s.previewTemplate)
	api.Post("/templates/:index/export", s.exportTemplate)
	return s
}

// App returns the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.cfg.Logger.Info("listening", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
