package bookstore

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SalesService records sales against the ledger and answers queries over it.
// Selling touches both arrays of the document, so it is the one workflow
// with a real consistency concern; see Sell.
type SalesService struct {
	repo  *BookRepository
	store *Store
}

// NewSalesService wires the service to the repository and the store it
// shares with it.
func NewSalesService(repo *BookRepository, store *Store) *SalesService {
	return &SalesService{repo: repo, store: store}
}

// Sell sells qty copies of the book with the given ISBN: it validates the
// request, captures the book's current price and currency in a new Sale,
// decrements the stock, and appends the sale to the ledger. The created
// Sale is returned.
//
// The stock update and the ledger append are two independent load/save
// cycles, not one atomic write. A crash between them leaves the decrement
// durable without its sale record. That window is a known limitation of the
// single-writer design; collapsing both mutations into one save would close
// it at the cost of changing the on-disk write sequence.
func (s *SalesService) Sell(isbn string, qty int) (*Sale, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "qty", Message: "must be an integer > 0"}
	}

	book, err := s.repo.GetByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if book.Archived {
		return nil, &ValidationError{Field: "book", Message: "cannot sell an archived book"}
	}
	if book.Quantity < qty {
		return nil, &OutOfStockError{ISBN: book.ISBN, Requested: qty, Available: book.Quantity}
	}

	// Historical pricing: the sale keeps the unit price in effect right now,
	// no matter what happens to the catalog later.
	sale, err := NewSale(book.ID, book.ISBN, qty, book.PriceCents, book.Currency)
	if err != nil {
		return nil, err
	}

	if err := book.DecreaseStock(qty); err != nil {
		return nil, err
	}
	if err := s.repo.Update(book); err != nil {
		return nil, err
	}

	if err := s.appendSale(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales returns the ledger sorted ascending by timestamp. A non-empty
// isbn filters to that book (normalized first). A positive limit keeps only
// the chronologically last limit entries — the most recent N, still in
// ascending order.
func (s *SalesService) ListSales(isbn string, limit int) ([]*Sale, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	sales := make([]*Sale, 0, len(doc.Sales))
	for _, raw := range doc.Sales {
		sale, err := decodeSale(raw)
		if err != nil {
			return nil, &StorageError{Op: "decode sale record in", Path: s.store.Path(), Err: err}
		}
		sales = append(sales, sale)
	}

	if strings.TrimSpace(isbn) != "" {
		norm := NormalizeISBN(isbn)
		filtered := sales[:0]
		for _, sale := range sales {
			if sale.ISBN == norm {
				filtered = append(filtered, sale)
			}
		}
		sales = filtered
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Timestamp.Before(sales[j].Timestamp)
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[len(sales)-limit:]
	}
	return sales, nil
}

// SalesTotal sums revenue over the (optionally ISBN-filtered) ledger. The
// sum runs entirely in integer minor units and converts to major units once
// at the end, so no floating-point error can accumulate.
func (s *SalesService) SalesTotal(isbn string) (decimal.Decimal, error) {
	sales, err := s.ListSales(isbn, 0)
	if err != nil {
		return decimal.Zero, err
	}
	var totalCents int64
	for _, sale := range sales {
		totalCents += sale.TotalCents()
	}
	return decimal.New(totalCents, -2), nil
}

// appendSale runs the second read-modify-write cycle of Sell: reload the
// document, append the encoded sale, save.
func (s *SalesService) appendSale(sale *Sale) error {
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(sale)
	if err != nil {
		return &StorageError{Op: "encode sale for", Path: s.store.Path(), Err: err}
	}
	doc.Sales = append(doc.Sales, raw)
	return s.store.Save(doc)
}
