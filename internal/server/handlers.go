package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	jsoncanvas "github.com/porticus-lab/go-json-canvas"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
	"github.com/porticus-lab/go-json-canvas/render"
	"github.com/porticus-lab/go-json-canvas/store"
)

var errBadIndex = errors.New("template index must be a number")

func (s *Server) live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

func (s *Server) ready(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ready",
		"templates": s.cfg.Templates != nil,
		"export":    s.cfg.Exporter != nil,
	})
}

type fieldView struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	Depth     int            `json:"depth"`
	Kind      jsonvalue.Kind `json:"kind"`
	Children  int            `json:"children,omitempty"`
	Preview   string         `json:"preview,omitempty"`
	Draggable bool           `json:"draggable"`
}

// fields lists the explorer tree of the JSON request body, filtered by the
// "filter" query parameter.
func (s *Server) fields(c fiber.Ctx) error {
	doc, err := jsonvalue.Load("request.json", c.Body())
	if err != nil {
		return s.fail(c, fiber.StatusBadRequest, err)
	}
	list := jsonvalue.Fields(doc.Root, c.Query("filter"))
	out := make([]fieldView, 0, len(list))
	for _, f := range list {
		out = append(out, fieldView{
			Path:      f.Path,
			Name:      f.Name,
			Depth:     f.Depth,
			Kind:      f.Kind,
			Children:  f.Children,
			Preview:   f.Preview,
			Draggable: f.Draggable(),
		})
	}
	return c.JSON(out)
}

type templateView struct {
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	Version   int       `json:"version,omitempty"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (s *Server) listTemplates(c fiber.Ctx) error {
	ed, err := s.editor(c)
	if err != nil {
		return s.fail(c, fiber.StatusServiceUnavailable, err)
	}
	list := ed.Templates()
	out := make([]templateView, 0, len(list))
	for i, t := range list {
		out = append(out, templateView{
			Index:     i,
			Name:      t.Name,
			Version:   t.Version,
			Elements:  t.Elements.Len(),
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	return c.JSON(out)
}

func (s *Server) previewTemplate(c fiber.Ctx) error {
	ed, status, err := s.applied(c)
	if err != nil {
		return s.fail(c, status, err)
	}
	page, err := render.HTML(ed.Surface())
	if err != nil {
		return s.fail(c, fiber.StatusInternalServerError, err)
	}
	c.Type("html")
	return c.SendString(page)
}

func (s *Server) exportTemplate(c fiber.Ctx) error {
	ed, status, err := s.applied(c)
	if err != nil {
		return s.fail(c, status, err)
	}
	res, err := ed.Export(c.Context())
	switch {
	case errors.Is(err, export.ErrExportBusy):
		return s.fail(c, fiber.StatusConflict, err)
	case errors.Is(err, export.ErrExportUnavailable):
		return s.fail(c, fiber.StatusServiceUnavailable, err)
	case err != nil:
		return s.fail(c, fiber.StatusInternalServerError, err)
	}
	s.cfg.Logger.Info("template exported", "template", ed.Name(), "pages", res.Pages(), "file", res.Filename())
	c.Attachment(res.Filename())
	return c.Send(res.Bytes())
}

// editor opens a fresh editor session over the stored templates.
func (s *Server) editor(c fiber.Ctx) (*jsoncanvas.Editor, error) {
	opts := []jsoncanvas.Option{jsoncanvas.WithLogger(s.cfg.Logger)}
	if s.cfg.Templates != nil {
		opts = append(opts, jsoncanvas.WithTemplates(s.cfg.Templates))
	}
	if s.cfg.Exporter != nil {
		opts = append(opts, jsoncanvas.WithExporter(s.cfg.Exporter))
	}
	ed := jsoncanvas.NewEditor(opts...)
	if err := ed.LoadTemplates(c.Context()); err != nil {
		return nil, err
	}
	return ed, nil
}

// applied returns an editor showing the template named by the :index
// parameter, or the status to answer with.
func (s *Server) applied(c fiber.Ctx) (*jsoncanvas.Editor, int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return nil, fiber.StatusBadRequest, errBadIndex
	}
	ed, err := s.editor(c)
	if err != nil {
		return nil, fiber.StatusServiceUnavailable, err
	}
	if err := ed.ApplyTemplate(index); err != nil {
		return nil, fiber.StatusNotFound, err
	}
	return ed, fiber.StatusOK, nil
}

func (s *Server) fail(c fiber.Ctx, status int, err error) error {
	n := jsoncanvas.Describe(err)
	if status >= fiber.StatusInternalServerError || errors.Is(err, store.ErrPersistenceDegraded) {
		s.cfg.Logger.Error("request failed", "path", c.Path(), "status", status, "err", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": n.Message,
		"level": n.Level.String(),
	})
}
