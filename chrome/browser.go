// Package chrome drives a headless Chrome instance as both export stages:
// [Browser.Rasterize] screenshots the canvas markup produced by
// [render.HTML] and [Browser.Assemble] prints the page slices of a bitmap
// to PDF.
//
//	b, err := chrome.NewBrowser(chrome.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//	x := export.NewExporter(b, b)
package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/chromedp"
)

// Browser manages a headless browser that is reused across exports. It is
// safe for concurrent use; every call runs in its own tab.
//
// Call [Browser.Close] when the Browser is no longer needed to release the
// browser process.
type Browser struct {
	cfg    browserConfig
	ctx    context.Context // browser target; tabs derive from it
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowser starts a headless browser with the given options. The caller
// must call [Browser.Close] when finished.
func NewBrowser(opts ...Option) (*Browser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOptions(cfg)...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		cfg.logger.Debug("chrome: " + fmt.Sprintf(format, args...))
	}))
	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("chrome: starting browser: %w", err)
	}
	cfg.logger.Debug("chrome started", "path", cfg.chromePath, "headless", cfg.headless)
	return &Browser{cfg: cfg, ctx: ctx, cancel: cancel}, nil
}

// execOptions returns the process flags. The window matches an A4 canvas
// at 96 dpi; captures resize the viewport to the surface anyway.
func execOptions(cfg browserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.WindowSize(794, 1123),
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
	)
	for _, f := range []string{
		"disable-dev-shm-usage",
		"disable-extensions",
		"disable-background-networking",
		"disable-sync",
		"disable-translate",
	} {
		opts = append(opts, chromedp.Flag(f, true))
	}
	if cfg.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Close releases the browser process. Close is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		b.cancel()
	}
	return nil
}

func (b *Browser) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// tab opens a new tab that is cancelled when ctx is done or the configured
// timeout elapses. The returned cancel func must be called.
func (b *Browser) tab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	if b.cfg.timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, b.cfg.timeout)
		prev := tabCancel
		tabCancel = func() { cancel(); prev() }
	}
	stop := context.AfterFunc(ctx, tabCancel)
	return tabCtx, func() {
		stop()
		tabCancel()
	}
}

// writePage stores html in a temporary file and returns its file:// URL
// together with a cleanup func.
func writePage(html string) (string, func(), error) {
	f, err := os.CreateTemp("", "jsoncanvas-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	cleanup := func() { os.Remove(name) }

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}
	return "file://" + abs, cleanup, nil
}
