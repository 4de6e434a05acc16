package jsoncanvas

import (
	"errors"

	"github.com/porticus-lab/go-json-canvas/export"
	"github.com/porticus-lab/go-json-canvas/jsonvalue"
	"github.com/porticus-lab/go-json-canvas/store"
)

// Sentinel errors returned by the package.
var (
	// ErrEmptyTemplateName is returned when saving a template without a name.
	ErrEmptyTemplateName = errors.New("jsoncanvas: template name is empty")

	// ErrNothingToSave is returned when saving a template of an empty canvas.
	ErrNothingToSave = errors.New("jsoncanvas: canvas has no elements")

	// ErrTemplateNotFound is returned when applying a template that is not
	// in the session's list.
	ErrTemplateNotFound = errors.New("jsoncanvas: template not found")

	// ErrNoSource is returned when a field is placed by path before any JSON
	// document has been loaded.
	ErrNoSource = errors.New("jsoncanvas: no JSON document loaded")

	// ErrFieldNotFound is returned when a field path does not resolve in
	// the loaded document.
	ErrFieldNotFound = errors.New("jsoncanvas: field not found")
)

// Level is the severity of a [Notice].
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notice is the transient, dismissible message a front-end shows for an
// operation outcome.
type Notice struct {
	Level   Level
	Message string
}

// Describe maps an error returned by the editor to the notice a user
// sees. A nil error yields a zero Notice.
func Describe(err error) Notice {
	switch {
	case err == nil:
		return Notice{}
	case errors.Is(err, jsonvalue.ErrInvalidInputFile):
		return Notice{LevelError, "Please select a valid JSON file"}
	case errors.Is(err, export.ErrExportUnavailable):
		return Notice{LevelError, "Could not find the content to export"}
	case errors.Is(err, export.ErrExportBusy):
		return Notice{LevelInfo, "An export is already in progress"}
	case errors.Is(err, export.ErrExportFailed):
		return Notice{LevelError, "Error exporting to PDF"}
	case errors.Is(err, store.ErrPersistenceDegraded):
		return Notice{LevelWarning, "Template kept for this session only; it could not be stored"}
	case errors.Is(err, ErrEmptyTemplateName):
		return Notice{LevelError, "Template name is required"}
	case errors.Is(err, ErrNothingToSave):
		return Notice{LevelError, "Add at least one element before saving a template"}
	case errors.Is(err, ErrTemplateNotFound):
		return Notice{LevelError, "Template not found"}
	case errors.Is(err, ErrNoSource):
		return Notice{LevelError, "Load a JSON file first"}
	case errors.Is(err, ErrFieldNotFound):
		return Notice{LevelError, "Field not found in the JSON document"}
	}
	return Notice{LevelError, err.Error()}
}
