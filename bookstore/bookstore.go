// Package bookstore is a single-user inventory and sales ledger persisted to
// one JSON document. The Store owns the file and its atomic replace; the
// BookRepository enforces ISBN uniqueness over the books array; the
// inventory and sales services implement the stock and ledger workflows on
// top of full load/save round-trips. Nothing is cached between calls.
package bookstore

import (
	"github.com/shopspring/decimal"
)

// Bookstore is a thin façade over the store, repository, and services,
// keeping CLI code simple. It is the single entry point a UI needs.
type Bookstore struct {
	store     *Store
	repo      *BookRepository
	inventory *InventoryService
	sales     *SalesService
}

// Open wires a bookstore over the JSON document at path, bootstrapping the
// file if it does not exist yet.
func Open(path string) (*Bookstore, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	repo := NewBookRepository(store)
	return &Bookstore{
		store:     store,
		repo:      repo,
		inventory: NewInventoryService(repo),
		sales:     NewSalesService(repo, store),
	}, nil
}

// Path returns the location of the backing JSON file.
func (bs *Bookstore) Path() string { return bs.store.Path() }

// ------------------ Catalog / inventory ------------------

// AddBook adds a book, or restocks an existing one with the same ISBN.
func (bs *Bookstore) AddBook(p AddBookParams) (*Book, error) { return bs.inventory.AddBook(p) }

func (bs *Bookstore) SetPrice(isbn string, price decimal.Decimal) (*Book, error) {
	return bs.inventory.SetPrice(isbn, price)
}

func (bs *Bookstore) SetQuantity(isbn string, qty int) (*Book, error) {
	return bs.inventory.SetQuantity(isbn, qty)
}

func (bs *Bookstore) IncreaseStock(isbn string, n int) (*Book, error) {
	return bs.inventory.IncreaseStock(isbn, n)
}

func (bs *Bookstore) DecreaseStock(isbn string, n int) (*Book, error) {
	return bs.inventory.DecreaseStock(isbn, n)
}

func (bs *Bookstore) ArchiveIfEmpty(isbn string) (*Book, error) {
	return bs.inventory.ArchiveIfEmpty(isbn)
}

func (bs *Bookstore) GetBookByISBN(isbn string) (*Book, error) { return bs.repo.GetByISBN(isbn) }
func (bs *Bookstore) GetBookByID(id string) (*Book, error)     { return bs.repo.GetByID(id) }
func (bs *Bookstore) RemoveBook(id string) error               { return bs.repo.Remove(id) }

func (bs *Bookstore) ListAll(includeArchived bool) ([]*Book, error) {
	return bs.inventory.ListAll(includeArchived)
}

func (bs *Bookstore) Search(query string, includeArchived bool, limit int) ([]*Book, error) {
	return bs.inventory.SearchBooks(query, includeArchived, limit)
}

// ------------------ Sales ------------------

// Sell sells qty copies by ISBN, recording the sale in the ledger.
func (bs *Bookstore) Sell(isbn string, qty int) (*Sale, error) { return bs.sales.Sell(isbn, qty) }

func (bs *Bookstore) ListSales(isbn string, limit int) ([]*Sale, error) {
	return bs.sales.ListSales(isbn, limit)
}

func (bs *Bookstore) SalesTotal(isbn string) (decimal.Decimal, error) {
	return bs.sales.SalesTotal(isbn)
}

// ------------------ Aggregate statistics ------------------

// Stats is a simple aggregate for display in a UI or report.
type Stats struct {
	TotalTitles    int
	ActiveTitles   int
	ArchivedTitles int
	TotalQuantity  int
	SalesCount     int
	Revenue        decimal.Decimal
}

// Stats aggregates the catalog and ledger in one pass each.
func (bs *Bookstore) Stats() (Stats, error) {
	books, err := bs.repo.ListAll(true)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalTitles: len(books)}
	for _, b := range books {
		if b.Archived {
			st.ArchivedTitles++
		} else {
			st.ActiveTitles++
		}
		st.TotalQuantity += b.Quantity
	}

	sales, err := bs.sales.ListSales("", 0)
	if err != nil {
		return Stats{}, err
	}
	st.SalesCount = len(sales)
	var cents int64
	for _, s := range sales {
		cents += s.TotalCents()
	}
	st.Revenue = decimal.New(cents, -2)
	return st, nil
}
