package jsoncanvas_test

import (
	"context"
	"fmt"
	"log"
	"os"

	jsoncanvas "github.com/porticus-lab/go-json-canvas"
	"github.com/porticus-lab/go-json-canvas/chrome"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/render"
	"github.com/porticus-lab/go-json-canvas/store"
)

func Example() {
	// Pure-Go pipeline: no browser needed.
	x := export.NewExporter(render.NewRasterizer(), export.FpdfAssembler{})
	ed := jsoncanvas.NewEditor(jsoncanvas.WithExporter(x))

	if err := ed.LoadJSON("invoice.json", []byte(`{"customer":"Ada","items":[{"sku":"A-1","qty":2}]}`)); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.DropPath("customer", jsoncanvas.Point{X: 40, Y: 40}); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.DropPath("items", jsoncanvas.Point{X: 40, Y: 100}); err != nil {
		log.Fatal(err)
	}
	ed.SetName("Invoice")

	res, err := ed.Export(context.Background())
	if err != nil {
		log.Fatal(jsoncanvas.Describe(err).Message)
	}
	fmt.Printf("Generated %s: %d pages\n", res.Filename(), res.Pages())
}

func Example_chrome() {
	// Headless Chrome both captures the canvas and prints the pages.
	b, err := chrome.NewBrowser(chrome.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	x := export.NewExporter(b, b, export.WithPageGeometry(export.PageGeometry{
		Size:        export.Letter,
		Orientation: export.Landscape,
	}))
	ed := jsoncanvas.NewEditor(jsoncanvas.WithExporter(x))
	if err := ed.LoadJSON("report.json", []byte(`{"title":"Quarterly report"}`)); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.DropPath("title", jsoncanvas.Point{X: 60, Y: 60}); err != nil {
		log.Fatal(err)
	}

	res, err := ed.Export(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if err := res.WriteToFile("/tmp/report.pdf", 0o644); err != nil {
		log.Fatal(err)
	}
}

func Example_templates() {
	db, err := store.OpenSQLite(context.Background(), os.TempDir()+"/jsoncanvas-example.db")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ed := jsoncanvas.NewEditor(jsoncanvas.WithTemplates(store.NewTemplates(db)))
	if err := ed.LoadTemplates(context.Background()); err != nil {
		log.Fatal(err)
	}
	if err := ed.LoadJSON("order.json", []byte(`{"total":129.5}`)); err != nil {
		log.Fatal(err)
	}
	if _, err := ed.DropPath("total", jsoncanvas.Point{X: 20, Y: 20}); err != nil {
		log.Fatal(err)
	}

	tpl, err := ed.SaveTemplate(context.Background(), "Order")
	if err != nil {
		log.Println(jsoncanvas.Describe(err).Message)
	}
	fmt.Printf("Saved %q version %d\n", tpl.Name, tpl.Version)
}
