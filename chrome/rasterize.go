package chrome

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // screenshot decoding

	"github.com/chromedp/chromedp"

	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/render"
)

// Rasterize screenshots the canvas node of s at scale times its CSS size.
// It implements [export.Rasterizer].
func (b *Browser) Rasterize(ctx context.Context, s *export.Surface, scale float64) (*export.Bitmap, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	html, err := render.HTML(s)
	if err != nil {
		return nil, err
	}
	url, cleanup, err := writePage(html)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	defer cleanup()

	tabCtx, cancel := b.tab(ctx)
	defer cancel()

	sel := "#" + render.CanvasID
	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(s.Width), int64(s.Height)),
		chromedp.Navigate(url),
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.ScreenshotScale(sel, scale, &buf, chromedp.ByQuery),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("chrome: capturing canvas: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("chrome: decoding screenshot: %w", err)
	}
	return &export.Bitmap{PNG: buf, Width: cfg.Width, Height: cfg.Height}, nil
}
