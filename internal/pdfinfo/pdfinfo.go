// Package pdfinfo inspects the structure of a PDF: its version, document
// info, page boxes and embedded images. It is used to check exported files
// and by the info command.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// ErrNotPDF is returned when the input does not start with a PDF header.
var ErrNotPDF = errors.New("pdfinfo: not a PDF file")

// PointsPerMM converts PDF user space units to millimetres.
const PointsPerMM = 72 / 25.4

// Page describes one page box in points.
type Page struct {
	Width  float64
	Height float64
}

// WidthMM returns the page width in millimetres.
func (p Page) WidthMM() float64 { return p.Width / PointsPerMM }

// HeightMM returns the page height in millimetres.
func (p Page) HeightMM() float64 { return p.Height / PointsPerMM }

// Info is the inspected structure of a PDF.
type Info struct {
	Version string
	Title   string
	Creator string
	Pages   []Page
	Images  int // image XObjects
}

// PageCount returns the number of pages.
func (i *Info) PageCount() int { return len(i.Pages) }

// Open inspects the PDF at path.
func Open(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfinfo: reading file: %w", err)
	}
	return Inspect(data)
}

var objHeader = regexp.MustCompile(`(\d+)\s+\d+\s+obj\b`)

// Inspect parses data. Objects are located by scanning rather than through
// the cross-reference table, so files with a damaged xref still inspect.
func Inspect(data []byte) (*Info, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	info := &Info{Version: version(data)}

	objects := make(map[int]*object)
	var trailer dict
	for pos := 0; pos < len(data); {
		loc := objHeader.FindSubmatchIndex(data[pos:])
		if loc == nil {
			break
		}
		num, _ := strconv.Atoi(string(data[pos+loc[2] : pos+loc[3]]))
		p := &parser{data: data, pos: pos + loc[1]}
		o, err := p.parse()
		if err != nil {
			return nil, fmt.Errorf("pdfinfo: object %d: %w", num, err)
		}
		objects[num] = o
		if o.kind == kindStream && o.dict.name("Type") == "XRef" {
			trailer = o.dict
		}
		if o.kind == kindStream && o.dict.name("Subtype") == "Image" {
			info.Images++
		}
		pos = p.pos
	}
	if i := bytes.LastIndex(data, []byte("trailer")); i >= 0 {
		p := &parser{data: data, pos: i + len("trailer")}
		if o, err := p.parse(); err == nil && o.kind == kindDict {
			trailer = o.dict
		}
	}

	r := resolver(objects)
	catalog := r.dictOf(trailer["Root"])
	if catalog == nil {
		for _, o := range objects {
			if o.kind == kindDict && o.dict.name("Type") == "Catalog" {
				catalog = o.dict
				break
			}
		}
	}
	if catalog == nil {
		return nil, errors.New("pdfinfo: no document catalog")
	}
	if meta := r.dictOf(trailer["Info"]); meta != nil {
		info.Title = meta.text("Title")
		info.Creator = meta.text("Creator")
	}
	r.collect(r.dictOf(catalog["Pages"]), nil, &info.Pages, 0)
	return info, nil
}

func version(data []byte) string {
	head := data[5:]
	if len(head) > 8 {
		head = head[:8]
	}
	end := bytes.IndexAny(head, "\r\n ")
	if end < 0 {
		end = len(head)
	}
	return string(head[:end])
}

type resolver map[int]*object

func (r resolver) resolve(o *object) *object {
	for range maxNesting {
		if o == nil || o.kind != kindRef {
			return o
		}
		o = r[o.ref]
	}
	return nil
}

func (r resolver) dictOf(o *object) dict {
	o = r.resolve(o)
	if o == nil || (o.kind != kindDict && o.kind != kindStream) {
		return nil
	}
	return o.dict
}

// collect walks the page tree. MediaBox is inheritable, so the nearest
// ancestor's box applies to pages that carry none.
func (r resolver) collect(node dict, box *object, pages *[]Page, depth int) {
	if node == nil || depth > maxNesting {
		return
	}
	if mb := r.resolve(node["MediaBox"]); mb != nil {
		box = mb
	}
	if node.name("Type") == "Page" {
		*pages = append(*pages, r.page(box))
		return
	}
	kids := r.resolve(node["Kids"])
	if kids == nil || kids.kind != kindArray {
		return
	}
	for _, k := range kids.array {
		r.collect(r.dictOf(k), box, pages, depth+1)
	}
}

func (r resolver) page(box *object) Page {
	if box == nil || box.kind != kindArray || len(box.array) < 4 {
		return Page{}
	}
	var v [4]float64
	for i := range v {
		v[i], _ = r.resolve(box.array[i]).number()
	}
	return Page{Width: v[2] - v[0], Height: v[3] - v[1]}
}
