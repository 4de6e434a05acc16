package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultSupersample is the rasterization scale used for output quality.
const DefaultSupersample = 2.0

// exporterConfig holds internal configuration for an Exporter.
type exporterConfig struct {
	supersample float64
	geometry    PageGeometry
	sliver      float64
	now         func() time.Time
	logger      *slog.Logger
}

func defaultExporterConfig() exporterConfig {
	return exporterConfig{
		supersample: DefaultSupersample,
		geometry:    DefaultPageGeometry(),
		sliver:      DefaultSliverTolerance,
		now:         time.Now,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures an [Exporter].
type Option func(*exporterConfig)

// WithSupersample sets the rasterization scale. Values <= 0 are ignored.
func WithSupersample(scale float64) Option {
	return func(c *exporterConfig) {
		if scale > 0 {
			c.supersample = scale
		}
	}
}

// WithPageGeometry sets the output page geometry. Defaults to A4 portrait.
func WithPageGeometry(g PageGeometry) Option {
	return func(c *exporterConfig) {
		c.geometry = g.resolved()
	}
}

// WithSliverTolerance sets the leftover height, in millimetres, that does
// not get a page of its own. Defaults to [DefaultSliverTolerance].
func WithSliverTolerance(mm float64) Option {
	return func(c *exporterConfig) {
		c.sliver = mm
	}
}

// WithClock sets the time source used for the file name timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *exporterConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for export outcomes. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(c *exporterConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Exporter runs the export pipeline. At most one export runs at a time per
// Exporter; while one is in flight [Exporter.Busy] reports true and further
// calls fail fast with [ErrExportBusy]. Exports are not cancellable beyond
// what ctx offers the stages.
type Exporter struct {
	raster Rasterizer
	asm    Assembler
	cfg    exporterConfig
	busy   atomic.Bool
}

// NewExporter creates an Exporter from its two stages.
func NewExporter(r Rasterizer, a Assembler, opts ...Option) *Exporter {
	cfg := defaultExporterConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Exporter{raster: r, asm: a, cfg: cfg}
}

// Busy reports whether an export is currently running. Front-ends use it
// to disable the export control.
func (x *Exporter) Busy() bool {
	return x.busy.Load()
}

// Geometry returns the page geometry exports are paginated against.
func (x *Exporter) Geometry() PageGeometry {
	return x.cfg.geometry
}

// Export rasterizes s, paginates the bitmap and assembles the PDF named
// after title. On any failure no Result is returned.
func (x *Exporter) Export(ctx context.Context, s *Surface, title string) (*Result, error) {
	log := x.cfg.logger
	if s == nil || s.Width <= 0 || s.Height <= 0 || x.raster == nil || x.asm == nil {
		log.Warn("export aborted: no canvas surface")
		return nil, ErrExportUnavailable
	}
	if !x.busy.CompareAndSwap(false, true) {
		return nil, ErrExportBusy
	}
	defer x.busy.Store(false)

	start := x.cfg.now()
	res, err := x.run(ctx, s, title)
	if err != nil {
		log.Error("export failed", "title", title, "err", err)
		return nil, err
	}
	log.Info("export finished",
		"file", res.Filename(),
		"pages", res.Pages(),
		"bytes", res.Len(),
		"elapsed", x.cfg.now().Sub(start))
	return res, nil
}

// run executes the stages. A panicking stage fails the export instead of
// the caller.
func (x *Exporter) run(ctx context.Context, s *Surface, title string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: stage panicked: %v", ErrExportFailed, r)
		}
	}()

	bmp, err := x.raster.Rasterize(ctx, s, x.cfg.supersample)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterizing: %w", ErrExportFailed, err)
	}
	if err := bmp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	plan, err := Paginate(bmp.Width, bmp.Height, x.cfg.geometry, x.cfg.sliver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	plan.Title = title

	data, err := x.asm.Assemble(ctx, bmp, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: assembling: %w", ErrExportFailed, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: assembler output is not a PDF", ErrExportFailed)
	}
	return NewResult(data, FileName(title, x.cfg.now()), plan.Pages()), nil
}
