package bookstore

import (
	"errors"
	"fmt"
)

// ValidationError reports input that fails a field-level contract, such as a
// non-positive quantity or a malformed ISBN. Field names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s", e.Field, e.Message)
}

// NotFoundError reports a failed book lookup. Exactly one of BookID or ISBN
// is set, identifying which key was used.
type NotFoundError struct {
	BookID string
	ISBN   string
}

func (e *NotFoundError) Error() string {
	if e.BookID != "" {
		return fmt.Sprintf("book not found (id=%s)", e.BookID)
	}
	return fmt.Sprintf("book not found (isbn=%s)", e.ISBN)
}

// DuplicateISBNError reports an insert or update that collides with an
// existing book's normalized ISBN.
type DuplicateISBNError struct {
	ISBN string
}

func (e *DuplicateISBNError) Error() string {
	return fmt.Sprintf("book with isbn=%s already exists", e.ISBN)
}

// OutOfStockError reports a sale requesting more units than are available.
type OutOfStockError struct {
	ISBN      string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("not enough stock for isbn=%s: requested %d, available %d",
		e.ISBN, e.Requested, e.Available)
}

// StorageError reports a failure of the persistence layer: corrupt content,
// wrong document shape, or an I/O error during the atomic replace. It wraps
// the underlying cause.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: %s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicateISBN reports whether err is a DuplicateISBNError.
func IsDuplicateISBN(err error) bool {
	var de *DuplicateISBNError
	return errors.As(err, &de)
}

// IsOutOfStock reports whether err is an OutOfStockError.
func IsOutOfStock(err error) bool {
	var oe *OutOfStockError
	return errors.As(err, &oe)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
