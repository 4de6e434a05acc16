// Package export turns the committed state of a canvas into a paginated PDF.
//
// The pipeline has two pluggable stages:
//
//   - a [Rasterizer] captures the whole canvas surface at its natural,
//     unscaled size (times a supersampling factor) into one PNG bitmap;
//   - an [Assembler] lays that bitmap out on fixed-size pages, shifting it up
//     by one page height per page, and returns the PDF bytes.
//
// [Exporter] runs the stages, enforces the single-export busy flag and
// names the output file:
//
//	x := export.NewExporter(render.NewRasterizer(), export.FpdfAssembler{})
//	res, err := x.Export(ctx, surface, "Invoice")
//	if err != nil {
//	    // errors.Is(err, export.ErrExportUnavailable) or export.ErrExportFailed
//	}
//	path, err := res.Save(os.TempDir())
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // registers the PNG decoder for Bitmap.Validate
	"strings"
	"time"

	"github.com/porticus-lab/go-json-canvas/element"
)

// Sentinel errors returned by the package.
var (
	// ErrExportUnavailable is returned when there is no capturable canvas
	// surface or the pipeline is not wired. No work has been done.
	ErrExportUnavailable = errors.New("export: canvas surface unavailable")

	// ErrExportFailed wraps any rasterization or assembly failure. No
	// partial output is produced.
	ErrExportFailed = errors.New("export: export failed")

	// ErrExportBusy is returned when an export is started while another
	// one is still running on the same Exporter.
	ErrExportBusy = errors.New("export: export already in progress")
)

// Surface is the committed canvas to be captured: the page-sized area and
// the elements drawn on it, in paint order.
type Surface struct {
	Width      int // canvas width in document pixels
	Height     int // canvas height in document pixels
	Background string
	Elements   []element.Element
}

// Bitmap is a rasterized surface, PNG encoded.
type Bitmap struct {
	PNG    []byte
	Width  int // pixels
	Height int // pixels
}

// Validate checks that b holds a decodable PNG whose header agrees with
// the recorded dimensions.
func (b *Bitmap) Validate() error {
	if b == nil || len(b.PNG) == 0 {
		return errors.New("empty bitmap")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b.PNG))
	if err != nil {
		return fmt.Errorf("decoding bitmap: %w", err)
	}
	if format != "png" {
		return fmt.Errorf("bitmap is %s, want png", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("bitmap has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if cfg.Width != b.Width || cfg.Height != b.Height {
		return fmt.Errorf("bitmap is %dx%d, recorded as %dx%d", cfg.Width, cfg.Height, b.Width, b.Height)
	}
	return nil
}

// Rasterizer captures a surface into a bitmap. scale is the supersampling
// factor: the bitmap is scale times the surface size.
type Rasterizer interface {
	Rasterize(ctx context.Context, s *Surface, scale float64) (*Bitmap, error)
}

// Assembler bundles one bitmap into a multi-page PDF following plan.
type Assembler interface {
	Assemble(ctx context.Context, bmp *Bitmap, plan Plan) ([]byte, error)
}

// FileName builds the download name "{title}-{timestamp}.pdf". The
// timestamp is the UTC ISO-8601 instant to the second with colons replaced
// by dashes. Characters that are unsafe in file names are replaced too.
func FileName(title string, at time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "document"
	}
	return clean + "-" + at.UTC().Format("2006-01-02T15-04-05") + ".pdf"
}
