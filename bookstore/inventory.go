package bookstore

import (
	"errors"

	"github.com/shopspring/decimal"
)

// InventoryService holds the catalog/stock workflows: restock-or-create,
// price and quantity corrections, and archival of sold-out titles.
type InventoryService struct {
	repo *BookRepository
}

// NewInventoryService wires the service to a repository.
func NewInventoryService(repo *BookRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// AddBookParams carries the catalog fields for AddBook. Price is in major
// currency units. UpdatePrice controls whether restocking an existing title
// also overwrites its price with Price.
type AddBookParams struct {
	Title       string
	Author      string
	ISBN        string
	Price       decimal.Decimal
	Currency    string
	Quantity    int
	UpdatePrice bool
}

// AddBook adds a new book, or — when a book with the same normalized ISBN
// already exists — increases its quantity by p.Quantity instead, optionally
// refreshing the price. Either way the resulting record is returned.
func (s *InventoryService) AddBook(p AddBookParams) (*Book, error) {
	if p.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be > 0"}
	}

	existing, err := s.repo.GetByISBN(p.ISBN)
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
		book, err := NewBook(p.Title, p.Author, p.ISBN, p.Price, p.Currency, p.Quantity)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Add(book); err != nil {
			return nil, err
		}
		return book, nil
	}

	if err := existing.IncreaseStock(p.Quantity); err != nil {
		return nil, err
	}
	if p.UpdatePrice {
		if err := existing.SetPrice(p.Price); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetPrice overwrites the price of the book with the given ISBN.
func (s *InventoryService) SetPrice(isbn string, price decimal.Decimal) (*Book, error) {
	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if err := book.SetPrice(price); err != nil {
		return nil, err
	}
	if err := s.repo.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// SetQuantity overwrites the quantity (>= 0) of the book with the given
// ISBN. Intended for manual inventory corrections.
func (s *InventoryService) SetQuantity(isbn string, qty int) (*Book, error) {
	if qty < 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be an integer >= 0"}
	}
	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	book.Quantity = qty
	if err := s.repo.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// IncreaseStock raises the quantity by n (> 0).
func (s *InventoryService) IncreaseStock(isbn string, n int) (*Book, error) {
	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if err := book.IncreaseStock(n); err != nil {
		return nil, err
	}
	if err := s.repo.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// DecreaseStock lowers the quantity by n (> 0), never below zero. Sales go
// through SalesService.Sell, which adds the out-of-stock check; this is the
// raw correction path.
func (s *InventoryService) DecreaseStock(isbn string, n int) (*Book, error) {
	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if err := book.DecreaseStock(n); err != nil {
		return nil, err
	}
	if err := s.repo.Update(book); err != nil {
		return nil, err
	}
	return book, nil
}

// ArchiveIfEmpty archives the book only when its quantity is exactly zero.
func (s *InventoryService) ArchiveIfEmpty(isbn string) (*Book, error) {
	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if book.Quantity != 0 {
		return nil, &ValidationError{Field: "quantity", Message: "can archive only when quantity == 0"}
	}
	if err := s.repo.ArchiveByISBN(isbn); err != nil {
		return nil, err
	}
	book.MarkArchived()
	return book, nil
}

// ListAll returns the catalog, optionally including archived titles.
func (s *InventoryService) ListAll(includeArchived bool) ([]*Book, error) {
	return s.repo.ListAll(includeArchived)
}

// SearchBooks searches by title, author, or ISBN (case-insensitive).
func (s *InventoryService) SearchBooks(query string, includeArchived bool, limit int) ([]*Book, error) {
	return s.repo.Search(query, includeArchived, limit)
}
