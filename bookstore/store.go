package bookstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Document is the sole persisted object: one JSON file with exactly two
// top-level arrays. Record contents are opaque to the store; the repository
// and services own what goes inside each element.
type Document struct {
	Books []json.RawMessage `json:"books"`
	Sales []json.RawMessage `json:"sales"`
}

func defaultDocument() *Document {
	return &Document{Books: []json.RawMessage{}, Sales: []json.RawMessage{}}
}

// Store owns the on-disk JSON document and provides atomic load/save with
// shape validation. It holds no state beyond the path, so a Load after any
// successful Save always observes that save in full.
type Store struct {
	path string
}

// OpenStore prepares a store for the document at path. The parent directory
// is created if missing, and a default empty document is written on first
// use so Load never has to special-case "never written".
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StorageError{Op: "create data dir for", Path: path, Err: err}
		}
	}
	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(defaultDocument()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, &StorageError{Op: "stat", Path: path, Err: err}
	}
	return s, nil
}

// Path returns the location of the backing file, for diagnostics and tests.
func (s *Store) Path() string { return s.path }

// Load reads and shape-checks the full document. A missing file yields (and
// persists) the default empty document. A missing "books" or "sales" key is
// defaulted to an empty array; anything unparseable, a non-object root, or a
// present-but-non-array field fails with a StorageError. Corrupt data is
// never discarded: the file stays as-is for inspection.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := defaultDocument()
		if err := s.write(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if root == nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: errors.New("root must be a JSON object")}
	}

	doc := &Document{}
	if doc.Books, err = arrayField(root, "books"); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if doc.Sales, err = arrayField(root, "sales"); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	return doc, nil
}

// Save re-validates the document shape with the strict rule — both arrays
// must be present (non-nil), unlike Load's lenient defaulting — and writes
// it with an atomic replace.
func (s *Store) Save(doc *Document) error {
	if doc == nil || doc.Books == nil || doc.Sales == nil {
		return &StorageError{
			Op:   "save",
			Path: s.path,
			Err:  errors.New(`document must contain "books" and "sales" arrays`),
		}
	}
	return s.write(doc)
}

// arrayField extracts a top-level array, defaulting a missing key to an
// empty array. An explicit null or non-array value is rejected.
func arrayField(root map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	raw, ok := root[key]
	if !ok {
		return []json.RawMessage{}, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("%q must be an array: %w", key, err)
	}
	if arr == nil {
		return nil, fmt.Errorf("%q must be an array, got null", key)
	}
	return arr, nil
}

// write serializes the document to a temporary file in the same directory as
// the target and renames it into place. The same-directory requirement keeps
// the rename on one filesystem, so it is atomic: a concurrent reader sees
// either the old document or the new one in full, never a mix. On any
// failure the temp file is removed best-effort and the target is untouched.
func (s *Store) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "create temp file for", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Op: "write temp file for", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "close temp file for", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Op: "replace", Path: s.path, Err: err}
	}
	slog.Debug("document saved", "path", s.path, "bytes", len(data))
	return nil
}
