package bookstore

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
)

// BookRepository provides uniqueness-enforced CRUD and search over the books
// array, built entirely on Store load/save round-trips. It caches nothing
// between calls: every operation re-reads the document, mutates the decoded
// list in memory, and writes the whole document back.
type BookRepository struct {
	store *Store
}

// NewBookRepository wires a repository to its store.
func NewBookRepository(store *Store) *BookRepository {
	return &BookRepository{store: store}
}

// ListAll returns every book, or only non-archived ones.
func (r *BookRepository) ListAll(includeArchived bool) ([]*Book, error) {
	books, err := r.loadBooks()
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return books, nil
	}
	active := make([]*Book, 0, len(books))
	for _, b := range books {
		if !b.Archived {
			active = append(active, b)
		}
	}
	return active, nil
}

// Search matches query case-insensitively against title, author, or
// normalized ISBN. An empty or whitespace-only query returns no results.
// Matches are collected in document order up to limit (limit <= 0 means no
// cap), then sorted by lowercased title, then author.
func (r *BookRepository) Search(query string, includeArchived bool, limit int) ([]*Book, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*Book{}, nil
	}
	books, err := r.ListAll(includeArchived)
	if err != nil {
		return nil, err
	}
	results := make([]*Book, 0)
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			results = append(results, b)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		ti, tj := strings.ToLower(results[i].Title), strings.ToLower(results[j].Title)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(results[i].Author) < strings.ToLower(results[j].Author)
	})
	return results, nil
}

// GetByID returns the book with the given id.
func (r *BookRepository) GetByID(id string) (*Book, error) {
	books, err := r.loadBooks()
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, &NotFoundError{BookID: id}
}

// GetByISBN returns the book with the given ISBN, normalizing the input
// before comparison.
func (r *BookRepository) GetByISBN(isbn string) (*Book, error) {
	norm := NormalizeISBN(isbn)
	books, err := r.loadBooks()
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ISBN == norm {
			return b, nil
		}
	}
	return nil, &NotFoundError{ISBN: norm}
}

// Add appends a new book, rejecting a normalized-ISBN collision with any
// existing record. On rejection the store is left unchanged.
func (r *BookRepository) Add(book *Book) error {
	books, err := r.loadBooks()
	if err != nil {
		return err
	}
	for _, b := range books {
		if b.ISBN == book.ISBN {
			return &DuplicateISBNError{ISBN: book.ISBN}
		}
	}
	return r.saveBooks(append(books, book))
}

// Update replaces the record with book's id in place, keeping its position.
// It fails if the id is unknown or if another record now collides on ISBN.
func (r *BookRepository) Update(book *Book) error {
	books, err := r.loadBooks()
	if err != nil {
		return err
	}
	idx := indexByID(books, book.ID)
	if idx < 0 {
		return &NotFoundError{BookID: book.ID}
	}
	for i, b := range books {
		if i != idx && b.ISBN == book.ISBN {
			return &DuplicateISBNError{ISBN: book.ISBN}
		}
	}
	books[idx] = book
	return r.saveBooks(books)
}

// Remove deletes the book with the given id. This is a true deletion,
// distinct from archival.
func (r *BookRepository) Remove(id string) error {
	books, err := r.loadBooks()
	if err != nil {
		return err
	}
	idx := indexByID(books, id)
	if idx < 0 {
		return &NotFoundError{BookID: id}
	}
	return r.saveBooks(append(books[:idx], books[idx+1:]...))
}

// ArchiveByISBN marks the book with the given ISBN as archived in place.
func (r *BookRepository) ArchiveByISBN(isbn string) error {
	norm := NormalizeISBN(isbn)
	books, err := r.loadBooks()
	if err != nil {
		return err
	}
	for _, b := range books {
		if b.ISBN == norm {
			b.MarkArchived()
			return r.saveBooks(books)
		}
	}
	return &NotFoundError{ISBN: norm}
}

// loadBooks decodes the books array leniently: an individual record that
// fails validation is skipped rather than making the whole catalog
// unreadable. The skip count is logged so systematic corruption stays
// visible.
func (r *BookRepository) loadBooks() ([]*Book, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	books := make([]*Book, 0, len(doc.Books))
	skipped := 0
	for _, raw := range doc.Books {
		b, err := decodeBook(raw)
		if err != nil {
			skipped++
			continue
		}
		books = append(books, b)
	}
	if skipped > 0 {
		slog.Warn("skipped invalid book records", "count", skipped, "path", r.store.Path())
	}
	return books, nil
}

// saveBooks re-reads the document and rewrites the full books array. The
// sales array passes through untouched.
func (r *BookRepository) saveBooks(books []*Book) error {
	doc, err := r.store.Load()
	if err != nil {
		return err
	}
	encoded := make([]json.RawMessage, 0, len(books))
	for _, b := range books {
		raw, err := json.Marshal(b)
		if err != nil {
			return &StorageError{Op: "encode book for", Path: r.store.Path(), Err: err}
		}
		encoded = append(encoded, raw)
	}
	doc.Books = encoded
	return r.store.Save(doc)
}

func indexByID(books []*Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
