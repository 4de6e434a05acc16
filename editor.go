package jsoncanvas

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/porticus-lab/go-json-canvas/element"
	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
	"github.com/porticus-lab/go-json-canvas/store"
)

// Editor is one editing session: the loaded JSON source, the committed
// element collection, the selection, the document name and the session's
// template list. It is safe for concurrent use.
//
// Mutations targeting an id that is no longer present are silent no-ops.
type Editor struct {
	cfg    editorConfig
	mapper *Mapper
	ctrl   *Controller

	// persistMu orders writes of the template list to the store. It is
	// taken before mu.
	persistMu sync.Mutex

	mu        sync.RWMutex
	elems     element.Collection
	selected  string
	name      string
	source    *jsonvalue.Document
	templates []store.Template
	view      Viewport
}

// NewEditor creates an empty session named "Untitled document".
func NewEditor(opts ...Option) *Editor {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	ed := &Editor{
		cfg:    cfg,
		mapper: NewMapper(cfg.newID),
		name:   defaultDocumentName,
	}
	ed.ctrl = &Controller{ed: ed}
	return ed
}

// Controller returns the session's pointer-gesture controller.
func (ed *Editor) Controller() *Controller {
	return ed.ctrl
}

// --- Document ---

// Name returns the document name, used as the export title.
func (ed *Editor) Name() string {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.name
}

// SetName renames the document. A blank name restores the default.
func (ed *Editor) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultDocumentName
	}
	ed.mu.Lock()
	ed.name = name
	ed.mu.Unlock()
}

// Collection returns the committed element collection.
func (ed *Editor) Collection() element.Collection {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.elems
}

// Elements returns the committed elements in collection order.
func (ed *Editor) Elements() []element.Element {
	return ed.Collection().Elements()
}

// Element returns the committed element with id.
func (ed *Editor) Element(id string) (element.Element, bool) {
	return ed.Collection().Get(id)
}

// PaintOrder returns the elements as the canvas draws them, with the
// selected element on top.
func (ed *Editor) PaintOrder() []element.Element {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.elems.PaintOrder(ed.selected)
}

// --- Selection ---

// SelectedID returns the selected element id, or "" when nothing is
// selected.
func (ed *Editor) SelectedID() string {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.selected
}

// Selected returns the selected element.
func (ed *Editor) Selected() (element.Element, bool) {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	if ed.selected == "" {
		return element.Element{}, false
	}
	return ed.elems.Get(ed.selected)
}

// Select selects the element with id. An unknown id is ignored; "" clears
// the selection.
func (ed *Editor) Select(id string) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if id == "" || ed.elems.Contains(id) {
		ed.selected = id
	}
}

// ClearSelection deselects any element.
func (ed *Editor) ClearSelection() {
	ed.Select("")
}

// --- Mutation API ---

// UpdateElement applies p to the element with id.
func (ed *Editor) UpdateElement(id string, p element.Patch) {
	if p.Empty() {
		return
	}
	ed.mu.Lock()
	ed.elems = ed.elems.Update(id, p)
	ed.mu.Unlock()
}

// UpdateSelected applies p to the selected element, if any.
func (ed *Editor) UpdateSelected(p element.Patch) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.selected != "" && !p.Empty() {
		ed.elems = ed.elems.Update(ed.selected, p)
	}
}

// SetStyle sets one style property, leaving the others in place.
func (ed *Editor) SetStyle(id, key, value string) {
	ed.UpdateElement(id, element.Patch{Style: element.Style{key: value}})
}

// SetPosition moves an element. Coordinates outside the page are allowed.
func (ed *Editor) SetPosition(id string, x, y float64) {
	ed.UpdateElement(id, element.Patch{X: &x, Y: &y})
}

// SetSize resizes an element. No bounds are enforced.
func (ed *Editor) SetSize(id string, w, h float64) {
	ed.UpdateElement(id, element.Patch{Width: &w, Height: &h})
}

// SetContent replaces the text of a text element.
func (ed *Editor) SetContent(id, content string) {
	ed.UpdateElement(id, element.Patch{Content: &content})
}

// UpdateColumn patches column index of a table. Out-of-range indexes and
// non-table elements are ignored.
func (ed *Editor) UpdateColumn(id string, index int, p element.ColumnPatch) {
	ed.mu.Lock()
	ed.elems = ed.elems.UpdateColumn(id, index, p)
	ed.mu.Unlock()
}

// Delete removes an element and clears the selection if it pointed at it.
func (ed *Editor) Delete(id string) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.elems = ed.elems.Remove(id)
	if ed.selected == id {
		ed.selected = ""
	}
}

// DeleteSelected removes the selected element, if any.
func (ed *Editor) DeleteSelected() {
	if id := ed.SelectedID(); id != "" {
		ed.Delete(id)
	}
}

// Clear removes every element and the selection.
func (ed *Editor) Clear() {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.elems = element.ReplaceAll(nil)
	ed.selected = ""
}

// --- JSON source ---

// LoadJSON ingests an uploaded file. On success the document replaces the
// previous source and the canvas is reset; on failure nothing changes and
// the error wraps jsonvalue.ErrInvalidInputFile.
func (ed *Editor) LoadJSON(name string, data []byte) error {
	doc, err := jsonvalue.Load(name, data)
	if err != nil {
		return err
	}
	ed.setSource(doc)
	return nil
}

// LoadJSONFile is LoadJSON for a file on disk.
func (ed *Editor) LoadJSONFile(path string) error {
	doc, err := jsonvalue.LoadFile(path)
	if err != nil {
		return err
	}
	ed.setSource(doc)
	return nil
}

func (ed *Editor) setSource(doc *jsonvalue.Document) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.source = doc
	ed.elems = element.ReplaceAll(nil)
	ed.selected = ""
}

// Source returns the loaded document, or nil.
func (ed *Editor) Source() *jsonvalue.Document {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.source
}

// Fields lists the explorer fields of the loaded document.
func (ed *Editor) Fields(filter string) []jsonvalue.Field {
	doc := ed.Source()
	if doc == nil {
		return nil
	}
	return jsonvalue.Fields(doc.Root, filter)
}

// Place maps a field to a new element at document position at, appends
// it and selects it.
func (ed *Editor) Place(fieldPath string, value jsonvalue.Value, at Point) (element.Element, error) {
	e := ed.mapper.Map(fieldPath, value, at)
	ed.mu.Lock()
	defer ed.mu.Unlock()
	next, err := ed.elems.Add(e)
	if err != nil {
		return element.Element{}, err
	}
	ed.elems = next
	ed.selected = e.ID
	return e, nil
}

// DropPath places the field at path of the loaded document at document
// position at.
func (ed *Editor) DropPath(path string, at Point) (element.Element, error) {
	doc := ed.Source()
	if doc == nil {
		return element.Element{}, ErrNoSource
	}
	v, ok := jsonvalue.Lookup(doc.Root, path)
	if !ok {
		return element.Element{}, fmt.Errorf("%w: %q", ErrFieldNotFound, path)
	}
	return ed.Place(path, v, at)
}

// --- Viewport ---

// Viewport returns the current view.
func (ed *Editor) Viewport() Viewport {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	return ed.view
}

// SetCanvasOrigin records where the canvas' top-left corner is in the
// viewport.
func (ed *Editor) SetCanvasOrigin(p Point) {
	ed.mu.Lock()
	ed.view.Origin = p
	ed.mu.Unlock()
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (ed *Editor) SetZoom(z float64) {
	ed.mu.Lock()
	ed.view.SetZoom(z)
	ed.mu.Unlock()
}

func (ed *Editor) ZoomIn() {
	ed.mu.Lock()
	ed.view.ZoomIn()
	ed.mu.Unlock()
}

func (ed *Editor) ZoomOut() {
	ed.mu.Lock()
	ed.view.ZoomOut()
	ed.mu.Unlock()
}

// --- Templates ---

// Templates returns the session's template list.
func (ed *Editor) Templates() []store.Template {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	out := make([]store.Template, len(ed.templates))
	copy(out, ed.templates)
	return out
}

// LoadTemplates replaces the session list with the stored one. A store
// failure is logged and returned; the session list is kept.
func (ed *Editor) LoadTemplates(ctx context.Context) error {
	if ed.cfg.templates == nil {
		return nil
	}
	ed.persistMu.Lock()
	defer ed.persistMu.Unlock()
	list, err := ed.cfg.templates.Load(ctx)
	if err != nil {
		ed.cfg.logger.Warn("loading templates failed", "err", err)
		return err
	}
	ed.mu.Lock()
	ed.templates = list
	ed.mu.Unlock()
	return nil
}

// SaveTemplate snapshots the canvas under name and appends it to the
// session list. Names may repeat; each save of a name gets the next
// version number.
//
// The template is kept in the session even when the durable copy fails;
// that case returns the template together with an error wrapping
// store.ErrPersistenceDegraded.
func (ed *Editor) SaveTemplate(ctx context.Context, name string) (store.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Template{}, ErrEmptyTemplateName
	}
	now := ed.cfg.now()

	ed.persistMu.Lock()
	defer ed.persistMu.Unlock()

	ed.mu.Lock()
	if ed.elems.Len() == 0 {
		ed.mu.Unlock()
		return store.Template{}, ErrNothingToSave
	}
	version := 1
	for _, t := range ed.templates {
		if t.Name == name && t.Version >= version {
			version = t.Version + 1
		}
	}
	tpl := store.Template{
		Name:      name,
		Elements:  ed.elems,
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ed.templates = append(ed.templates, tpl)
	list := make([]store.Template, len(ed.templates))
	copy(list, ed.templates)
	ed.mu.Unlock()

	if ed.cfg.templates != nil {
		if err := ed.cfg.templates.Put(ctx, list); err != nil {
			ed.cfg.logger.Warn("template kept in session only", "template", name, "err", err)
			return tpl, err
		}
	}
	return tpl, nil
}

// ApplyTemplate replaces the canvas with the template at index and adopts
// its name. The selection is cleared.
func (ed *Editor) ApplyTemplate(index int) error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if index < 0 || index >= len(ed.templates) {
		return fmt.Errorf("%w: index %d", ErrTemplateNotFound, index)
	}
	ed.applyLocked(ed.templates[index])
	return nil
}

// ApplyTemplateNamed applies the most recently saved template called name.
func (ed *Editor) ApplyTemplateNamed(name string) error {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	for i := len(ed.templates) - 1; i >= 0; i-- {
		if ed.templates[i].Name == name {
			ed.applyLocked(ed.templates[i])
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

func (ed *Editor) applyLocked(t store.Template) {
	ed.elems = element.ReplaceAll(t.Elements.Elements())
	ed.name = t.Name
	ed.selected = ""
}

// --- Export ---

// Surface returns the committed canvas as the export pipeline captures
// it: the page at its natural size with elements in collection order.
func (ed *Editor) Surface() *export.Surface {
	g := export.DefaultPageGeometry()
	if ed.cfg.exporter != nil {
		g = ed.cfg.exporter.Geometry()
	}
	w, h := g.Pixels()
	return &export.Surface{
		Width:      w,
		Height:     h,
		Background: "#ffffff",
		Elements:   ed.Elements(),
	}
}

// Export renders the committed canvas to a PDF titled with the document
// name.
func (ed *Editor) Export(ctx context.Context) (*export.Result, error) {
	if ed.cfg.exporter == nil {
		return nil, export.ErrExportUnavailable
	}
	return ed.cfg.exporter.Export(ctx, ed.Surface(), ed.Name())
}

// ExportBusy reports whether an export is running.
func (ed *Editor) ExportBusy() bool {
	return ed.cfg.exporter != nil && ed.cfg.exporter.Busy()
}
