// Package filestore persists a single JSON document to a local file. Every
// save rewrites the whole file in place; there is no journal and no atomic
// rename, so a crash during a write can leave a truncated file behind.
package filestore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("data file not found")

// ErrCorrupt is returned by Load when the file exists but is not valid JSON
// for the target type.
var ErrCorrupt = errors.New("data file is corrupt")

// File reads and writes a document of type T at Path.
type File[T any] struct {
	path string
	perm os.FileMode
}

// New returns a File bound to path. Missing parent directories are created
// on the first save.
func New[T any](path string) *File[T] {
	return &File[T]{path: path, perm: 0o644}
}

// Path returns the file location.
func (f *File[T]) Path() string {
	return f.path
}

// Load parses the file into a new T.
func (f *File[T]) Load() (*T, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "read %s", f.path)
		}
		return nil, errors.Wrapf(err, "read %s", f.path)
	}

	var doc T
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "decode %s: %v", f.path, err)
	}
	return &doc, nil
}

// SaveAll serializes doc with two-space indentation and overwrites the file.
func (f *File[T]) SaveAll(doc *T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}

	if err := os.WriteFile(f.path, data, f.perm); err != nil {
		return errors.Wrapf(err, "failed to save data to %s", f.path)
	}
	return nil
}
