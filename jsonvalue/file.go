package jsonvalue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidInputFile is returned when an uploaded file is not a .json file
// or its content does not parse as JSON.
var ErrInvalidInputFile = errors.New("jsonvalue: invalid input file")

// Document is a successfully ingested JSON file.
type Document struct {
	Name string // base file name
	Size int64  // content length in bytes
	Root Value
}

// LoadFile reads and parses the JSON file at path.
func LoadFile(path string) (*Document, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidInputFile, filepath.Base(path), err)
	}
	return Load(filepath.Base(path), data)
}

// Load parses data uploaded under name. The name must end in ".json".
func Load(name string, data []byte) (*Document, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not contain valid JSON: %v", ErrInvalidInputFile, name, err)
	}
	return &Document{Name: name, Size: int64(len(data)), Root: root}, nil
}

func checkExtension(name string) error {
	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("%w: %q is not a .json file", ErrInvalidInputFile, filepath.Base(name))
	}
	return nil
}
