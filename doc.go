// Package jsoncanvas is a visual document editor over JSON data: fields of
// a loaded JSON document are dropped onto a fixed-size page as text and
// table elements, arranged with pointer gestures, styled through a mutation
// API, saved as named templates and exported as a paginated PDF.
//
// An [Editor] owns one editing session:
//
//	ed := jsoncanvas.NewEditor(
//	    jsoncanvas.WithTemplates(store.NewTemplates(kv)),
//	    jsoncanvas.WithExporter(export.NewExporter(render.NewRasterizer(), export.FpdfAssembler{})),
//	)
//	if err := ed.LoadJSONFile("invoice.json"); err != nil {
//	    log.Fatal(err)
//	}
//	el, err := ed.DropPath("customer.name", jsoncanvas.Point{X: 40, Y: 60})
//	ed.SetStyle(el.ID, element.StyleFontSize, "20px")
//	res, err := ed.Export(ctx)
//
// Pointer input goes through the session's [Controller], which converts
// viewport coordinates to document coordinates with the current [Viewport]
// and keeps drag state out of the document until a gesture is committed:
//
//	c := ed.Controller()
//	c.PressElement(el.ID, p) // first press selects
//	c.PressElement(el.ID, p) // second press starts a move
//	c.Move(q)
//	c.Release(q)             // commits the new position
//
// The committed collection is an immutable value, so readers always see a
// consistent snapshot while edits are in flight.
package jsoncanvas
