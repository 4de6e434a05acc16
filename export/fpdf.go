package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const canvasImageName = "canvas"

// FpdfAssembler builds the PDF in-process with fpdf. The bitmap is embedded
// once and placed on every page at that page's offset; whatever falls
// outside a page is clipped by the page box.
type FpdfAssembler struct {
	// Creator is written to the document info dictionary.
	Creator string
}

// Assemble implements [Assembler].
func (a FpdfAssembler) Assemble(ctx context.Context, bmp *Bitmap, plan Plan) ([]byte, error) {
	if plan.Pages() == 0 {
		return nil, fmt.Errorf("fpdf: empty page plan")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: plan.PageWidth, Ht: plan.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if plan.Title != "" {
		pdf.SetTitle(plan.Title, true)
	}
	if a.Creator != "" {
		pdf.SetCreator(a.Creator, true)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(canvasImageName, opts, bytes.NewReader(bmp.PNG))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("fpdf: registering bitmap: %w", err)
	}

	for _, offset := range plan.Offsets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		pdf.ImageOptions(canvasImageName, 0, offset, plan.ImageWidth, plan.ImageHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf: writing document: %w", err)
	}
	return buf.Bytes(), nil
}
