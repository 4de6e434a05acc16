package chrome

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/porticus-lab/go-json-canvas/export"
)

const mmPerInch = 25.4

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page{size:{{.Width}}mm {{.Height}}mm;margin:0}
html,body{margin:0;padding:0}
.page{position:relative;overflow:hidden;width:{{.Width}}mm;height:{{.Height}}mm;break-after:page}
.page:last-child{break-after:auto}
.page img{position:absolute;left:0;width:{{.ImageWidth}}mm;height:{{.ImageHeight}}mm}
</style>
</head>
<body>
{{- range .Offsets}}
<div class="page"><img src="{{$.Src}}" style="top:{{.}}mm" alt=""></div>
{{- end}}
</body>
</html>
`))

type printView struct {
	Title       string
	Width       float64
	Height      float64
	ImageWidth  float64
	ImageHeight float64
	Offsets     []float64
	Src         template.URL
}

// printHTML lays the bitmap out as one fixed-size block per planned page,
// each showing the image shifted by that page's offset.
func printHTML(bmp *export.Bitmap, plan export.Plan) (string, error) {
	if plan.Pages() == 0 {
		return "", errors.New("empty page plan")
	}
	view := printView{
		Title:       plan.Title,
		Width:       plan.PageWidth,
		Height:      plan.PageHeight,
		ImageWidth:  plan.ImageWidth,
		ImageHeight: plan.ImageHeight,
		Offsets:     plan.Offsets,
		Src:         template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(bmp.PNG)),
	}
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Assemble prints the page slices of bmp to PDF with zero margins. It
// implements [export.Assembler].
func (b *Browser) Assemble(ctx context.Context, bmp *export.Bitmap, plan export.Plan) ([]byte, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	html, err := printHTML(bmp, plan)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	url, cleanup, err := writePage(html)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	defer cleanup()

	tabCtx, cancel := b.tab(ctx)
	defer cancel()

	var out []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = page.PrintToPDF().
				WithPaperWidth(plan.PageWidth / mmPerInch).
				WithPaperHeight(plan.PageHeight / mmPerInch).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("chrome: printing pages: %w", err)
	}
	return out, nil
}
