// jsoncanvas composes PDF templates from JSON documents and exports them.
//
// Usage:
//
//	jsoncanvas [-config <file.yaml>] <command> [options]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	jsoncanvas "github.com/porticus-lab/go-json-canvas"
	"github.com/porticus-lab/go-json-canvas/chrome"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/internal/config"
	"github.com/porticus-lab/go-json-canvas/internal/pdfinfo"
	"github.com/porticus-lab/go-json-canvas/internal/server"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
	"github.com/porticus-lab/go-json-canvas/render"
	"github.com/porticus-lab/go-json-canvas/store"
)

func main() {
	args := os.Args[1:]
	var configPath string
	if len(args) >= 2 && args[0] == "-config" {
		configPath, args = args[1], args[2:]
	}
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	var run func(*config.Config, []string) error
	switch args[0] {
	case "fields":
		run = runFields
	case "compose":
		run = runCompose
	case "templates":
		run = runTemplates
	case "export":
		run = runExport
	case "info":
		run = runInfo
	case "serve":
		run = runServe
	case "token":
		run = runToken
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`jsoncanvas - compose PDF templates from JSON data

Usage:
  jsoncanvas [-config <file.yaml>] <command> [options]

Commands:
  fields     List the fields of a JSON file
  compose    Place fields on a new canvas and save it as a template
  templates  List stored templates
  export     Export a stored template to PDF
  info       Display page count and sizes of a PDF file
  serve      Run the HTTP API
  token      Issue a bearer token for the HTTP API

Fields options:
  -f <text>       Only list paths containing text

Compose options:
  -n <name>       Template name (required)
  -o <file.pdf>   Also export the composed canvas
  Each further argument is <path>@<x>,<y> in page pixels.

Export options:
  -o <path>       Output file or directory (default: current directory)
  -r <name>       Rasterizer: native or chrome (default from config)

Serve options:
  -addr <addr>    Listen address (default from config)

Token options:
  -sub <subject>  Token subject (default: jsoncanvas)
  -ttl <dur>      Validity, e.g. 1h (default: 24h)

Examples:
  jsoncanvas fields -f items invoice.json
  jsoncanvas compose -n Invoice invoice.json customer.name@40,40 items@40,120
  jsoncanvas export -o out/ Invoice
  jsoncanvas info out/Invoice-2026-10-15T09-30-00.pdf
`)
}

// runFields implements the "fields" command.
func runFields(_ *config.Config, args []string) error {
	var filter, inputFile string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-f":
			i++
			if i >= len(args) {
				return fmt.Errorf("-f requires an argument")
			}
			filter = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return fmt.Errorf("unknown option: %s", args[i])
			}
			inputFile = args[i]
		}
	}
	if inputFile == "" {
		return fmt.Errorf("no input file specified")
	}

	doc, err := jsonvalue.LoadFile(inputFile)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tKIND\tVALUE")
	for _, f := range jsonvalue.Fields(doc.Root, filter) {
		value := f.Preview
		if f.Kind == jsonvalue.KindArray || f.Kind == jsonvalue.KindObject {
			value = fmt.Sprintf("(%d)", f.Children)
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", strings.Repeat("  ", f.Depth), f.Path, f.Kind, value)
	}
	return w.Flush()
}

// runCompose implements the "compose" command.
func runCompose(cfg *config.Config, args []string) error {
	var (
		name, outputFile, inputFile string
		drops                       []string
	)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-n":
			i++
			if i >= len(args) {
				return fmt.Errorf("-n requires an argument")
			}
			name = args[i]
		case "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("-o requires an argument")
			}
			outputFile = args[i]
		default:
			switch {
			case strings.HasPrefix(args[i], "-"):
				return fmt.Errorf("unknown option: %s", args[i])
			case inputFile == "":
				inputFile = args[i]
			default:
				drops = append(drops, args[i])
			}
		}
	}
	if inputFile == "" {
		return fmt.Errorf("no input file specified")
	}

	ctx := context.Background()
	logger := cfg.Logger(os.Stderr)
	tpls, closeStore, err := openTemplates(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []jsoncanvas.Option{jsoncanvas.WithLogger(logger), jsoncanvas.WithTemplates(tpls)}
	if outputFile != "" {
		x, closeExporter, err := newExporter(cfg, logger, "")
		if err != nil {
			return err
		}
		defer closeExporter()
		opts = append(opts, jsoncanvas.WithExporter(x))
	}
	ed := jsoncanvas.NewEditor(opts...)
	if err := ed.LoadTemplates(ctx); err != nil {
		return err
	}
	if err := ed.LoadJSONFile(inputFile); err != nil {
		return err
	}
	for _, d := range drops {
		path, at, err := parseDrop(d)
		if err != nil {
			return err
		}
		e, err := ed.DropPath(path, at)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("placed field", "path", path, "element", e.ID, "kind", e.Kind)
	}

	tpl, err := ed.SaveTemplate(ctx, name)
	switch {
	case errors.Is(err, store.ErrPersistenceDegraded):
		fmt.Fprintf(os.Stderr, "warning: %s\n", jsoncanvas.Describe(err).Message)
	case err != nil:
		return errors.New(jsoncanvas.Describe(err).Message)
	}
	fmt.Printf("Saved template %q version %d with %d elements\n", tpl.Name, tpl.Version, tpl.Elements.Len())

	if outputFile == "" {
		return nil
	}
	ed.SetName(tpl.Name)
	return exportTo(ctx, ed, outputFile)
}

// parseDrop splits "path@x,y" into a field path and document position.
func parseDrop(s string) (string, jsoncanvas.Point, error) {
	path, pos, ok := strings.Cut(s, "@")
	if !ok {
		return s, jsoncanvas.Point{}, nil
	}
	xs, ys, ok := strings.Cut(pos, ",")
	if !ok {
		return "", jsoncanvas.Point{}, fmt.Errorf("invalid position %q, want x,y", pos)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return "", jsoncanvas.Point{}, fmt.Errorf("invalid x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return "", jsoncanvas.Point{}, fmt.Errorf("invalid y in %q", s)
	}
	return path, jsoncanvas.Point{X: x, Y: y}, nil
}

// runTemplates implements the "templates" command.
func runTemplates(cfg *config.Config, _ []string) error {
	ctx := context.Background()
	tpls, closeStore, err := openTemplates(ctx, cfg, cfg.Logger(os.Stderr))
	if err != nil {
		return err
	}
	defer closeStore()

	list, err := tpls.Load(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No templates stored.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tVERSION\tELEMENTS\tSAVED")
	for i, t := range list {
		saved := "-"
		if !t.UpdatedAt.IsZero() {
			saved = t.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", i, t.Name, t.Version, t.Elements.Len(), saved)
	}
	return w.Flush()
}

// runExport implements the "export" command.
func runExport(cfg *config.Config, args []string) error {
	var outputPath, rasterizer, ref string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("-o requires an argument")
			}
			outputPath = args[i]
		case "-r":
			i++
			if i >= len(args) {
				return fmt.Errorf("-r requires an argument")
			}
			rasterizer = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return fmt.Errorf("unknown option: %s", args[i])
			}
			ref = args[i]
		}
	}
	if ref == "" {
		return fmt.Errorf("no template specified")
	}

	ctx := context.Background()
	logger := cfg.Logger(os.Stderr)
	tpls, closeStore, err := openTemplates(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	x, closeExporter, err := newExporter(cfg, logger, rasterizer)
	if err != nil {
		return err
	}
	defer closeExporter()

	ed := jsoncanvas.NewEditor(jsoncanvas.WithLogger(logger), jsoncanvas.WithTemplates(tpls), jsoncanvas.WithExporter(x))
	if err := ed.LoadTemplates(ctx); err != nil {
		return err
	}
	if index, convErr := strconv.Atoi(ref); convErr == nil {
		err = ed.ApplyTemplate(index)
	} else {
		err = ed.ApplyTemplateNamed(ref)
	}
	if err != nil {
		return err
	}
	return exportTo(ctx, ed, outputPath)
}

// exportTo renders the editor canvas and writes it to path, which may be a
// file or an existing directory.
func exportTo(ctx context.Context, ed *jsoncanvas.Editor, path string) error {
	res, err := ed.Export(ctx)
	if err != nil {
		return errors.New(jsoncanvas.Describe(err).Message + ": " + err.Error())
	}

	out := path
	if out == "" {
		out = "."
	}
	if st, statErr := os.Stat(out); statErr == nil && st.IsDir() {
		out = filepath.Join(out, res.Filename())
	}
	if err := res.WriteToFile(out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d pages, %d bytes)\n", out, res.Pages(), res.Len())
	return nil
}

// newExporter builds the export pipeline the config (or the -r override)
// asks for.
func newExporter(cfg *config.Config, logger *slog.Logger, rasterizer string) (*export.Exporter, func(), error) {
	geometry, err := cfg.PageGeometry()
	if err != nil {
		return nil, nil, err
	}
	opts := []export.Option{
		export.WithPageGeometry(geometry),
		export.WithSupersample(cfg.Export.Supersample),
		export.WithLogger(logger),
	}
	if rasterizer == "" {
		rasterizer = cfg.Export.Rasterizer
	}

	switch rasterizer {
	case "native", "":
		return export.NewExporter(render.NewRasterizer(), export.FpdfAssembler{}, opts...), func() {}, nil
	case "chrome":
		chromeOpts := []chrome.Option{chrome.WithTimeout(cfg.Export.Timeout), chrome.WithLogger(logger)}
		if cfg.Export.ChromePath != "" {
			chromeOpts = append(chromeOpts, chrome.WithChromePath(cfg.Export.ChromePath))
		}
		if cfg.Export.NoSandbox {
			chromeOpts = append(chromeOpts, chrome.WithNoSandbox())
		}
		if cfg.Export.AutoDownload {
			chromeOpts = append(chromeOpts, chrome.WithAutoDownload())
		}
		b, err := chrome.NewBrowser(chromeOpts...)
		if err != nil {
			return nil, nil, err
		}
		return export.NewExporter(b, b, opts...), func() { b.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown rasterizer %q (want native or chrome)", rasterizer)
}

// openTemplates connects the configured backend.
func openTemplates(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Templates, func(), error) {
	var (
		backend store.Backend
		err     error
	)
	if cfg.Store.Driver == store.DriverRedis {
		addr := cfg.Store.RedisAddr
		if addr == "" {
			addr = cfg.Store.DSN
		}
		backend, err = store.OpenRedis(ctx, store.RedisOptions{
			Addr:     addr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	} else {
		backend, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	}
	if err != nil {
		return nil, nil, err
	}
	tpls := store.NewTemplates(backend, store.WithKey(cfg.Store.Key), store.WithLogger(logger))
	return tpls, func() { backend.Close() }, nil
}

// runInfo implements the "info" command.
func runInfo(_ *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input file specified")
	}
	inputFile := args[0]

	info, err := pdfinfo.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}

	fmt.Printf("File:    %s\n", inputFile)
	fmt.Printf("Version: PDF-%s\n", info.Version)
	if info.Title != "" {
		fmt.Printf("Title:   %s\n", info.Title)
	}
	fmt.Printf("Pages:   %d\n", info.PageCount())
	fmt.Printf("Images:  %d\n", info.Images)

	if info.PageCount() > 0 {
		fmt.Println()
		fmt.Println("Page dimensions:")
		for i, p := range info.Pages {
			fmt.Printf("  Page %d: %.0f x %.0f pt (%.0f x %.0f mm)\n", i+1, p.Width, p.Height, p.WidthMM(), p.HeightMM())
		}
	}
	return nil
}

// runServe implements the "serve" command.
func runServe(cfg *config.Config, args []string) error {
	addr := cfg.Server.Addr
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-addr":
			i++
			if i >= len(args) {
				return fmt.Errorf("-addr requires an argument")
			}
			addr = args[i]
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger(os.Stderr)
	tpls, closeStore, err := openTemplates(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	x, closeExporter, err := newExporter(cfg, logger, "")
	if err != nil {
		return err
	}
	defer closeExporter()

	srv := server.New(server.Config{
		Templates:    tpls,
		Exporter:     x,
		Logger:       logger,
		JWTSecret:    cfg.Server.JWTSecret,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AccessLog:    true,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runToken implements the "token" command.
func runToken(cfg *config.Config, args []string) error {
	subject, ttl := "jsoncanvas", 24*time.Hour
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-sub":
			i++
			if i >= len(args) {
				return fmt.Errorf("-sub requires an argument")
			}
			subject = args[i]
		case "-ttl":
			i++
			if i >= len(args) {
				return fmt.Errorf("-ttl requires an argument")
			}
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return fmt.Errorf("invalid -ttl: %w", err)
			}
			ttl = d
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("no JWT secret configured (set JSONCANVAS_JWT_SECRET)")
	}
	token, err := server.IssueToken([]byte(cfg.Server.JWTSecret), subject, ttl)
	if err != nil {
		return err
	}
	_, err = io.WriteString(os.Stdout, token+"\n")
	return err
}
