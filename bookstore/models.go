package bookstore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// isbnRE accepts a normalized ISBN-10 (nine digits plus a digit or X check
// character) or ISBN-13 (thirteen digits).
var isbnRE = regexp.MustCompile(`^[0-9]{9}[0-9X]$|^[0-9]{13}$`)

var isbnSeparators = strings.NewReplacer("-", "", " ", "")

var oneHundred = decimal.NewFromInt(100)

// NormalizeISBN strips hyphens and spaces and uppercases the check character.
// It does not validate the result; constructors do that separately so
// lookups can normalize arbitrary input.
func NormalizeISBN(raw string) string {
	return strings.ToUpper(isbnSeparators.Replace(raw))
}

// Book is a catalog entry. Prices are held in integer minor units (cents) to
// keep monetary math exact; ISBN is stored normalized and is unique within a
// document. Mutate quantity and price through the methods below so the field
// invariants hold.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	ISBN       string    `json:"isbn"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Quantity   int       `json:"quantity"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBook validates every field, normalizes the ISBN and currency, converts
// the major-unit price to cents, and stamps a fresh id and creation time.
func NewBook(title, author, isbn string, price decimal.Decimal, currency string, quantity int) (*Book, error) {
	title, err := nonEmpty("title", title)
	if err != nil {
		return nil, err
	}
	author, err = nonEmpty("author", author)
	if err != nil {
		return nil, err
	}
	norm := NormalizeISBN(isbn)
	if !isbnRE.MatchString(norm) {
		return nil, &ValidationError{Field: "isbn", Message: "must be 10 or 13 digits"}
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	cents, err := toCents(price)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be a non-negative integer"}
	}
	return &Book{
		ID:         uuid.NewString(),
		Title:      title,
		Author:     author,
		ISBN:       norm,
		PriceCents: cents,
		Currency:   cur,
		Quantity:   quantity,
		CreatedAt:  time.Now(),
	}, nil
}

// Price returns the unit price in major currency units.
func (b *Book) Price() decimal.Decimal {
	return decimal.New(b.PriceCents, -2)
}

// SetPrice replaces the unit price, converting to minor units.
func (b *Book) SetPrice(price decimal.Decimal) error {
	cents, err := toCents(price)
	if err != nil {
		return err
	}
	b.PriceCents = cents
	return nil
}

// IncreaseStock adds n copies. n must be positive.
func (b *Book) IncreaseStock(n int) error {
	if n <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	b.Quantity += n
	return nil
}

// DecreaseStock removes n copies. n must be positive and may not take the
// quantity below zero; the caller gets an error rather than a clamped value.
func (b *Book) DecreaseStock(n int) error {
	if n <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	if n > b.Quantity {
		return &ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("cannot decrease by %d: only %d in stock", n, b.Quantity),
		}
	}
	b.Quantity -= n
	return nil
}

// MarkArchived flags the book as archived. Archival rules (quantity must be
// zero) are enforced by the inventory service, not here.
func (b *Book) MarkArchived() { b.Archived = true }

// IsAvailable reports whether the book can currently be sold.
func (b *Book) IsAvailable() bool { return !b.Archived && b.Quantity > 0 }

// Sale is one immutable entry in the sales ledger. The unit price and
// currency are copied from the book at the moment of sale, so later catalog
// changes never rewrite history. BookID is a point-in-time reference, not a
// live link.
type Sale struct {
	SaleID         string    `json:"sale_id"`
	BookID         string    `json:"book_id"`
	ISBN           string    `json:"isbn"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Currency       string    `json:"currency"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewSale validates the inputs and stamps a fresh sale id and timestamp.
func NewSale(bookID, isbn string, qty int, unitPriceCents int64, currency string) (*Sale, error) {
	bookID, err := nonEmpty("book_id", bookID)
	if err != nil {
		return nil, err
	}
	norm := NormalizeISBN(isbn)
	if !isbnRE.MatchString(norm) {
		return nil, &ValidationError{Field: "isbn", Message: "must be 10 or 13 digits"}
	}
	if qty <= 0 {
		return nil, &ValidationError{Field: "qty", Message: "must be a positive integer"}
	}
	if unitPriceCents < 0 {
		return nil, &ValidationError{Field: "unit_price_cents", Message: "must be a non-negative integer"}
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	return &Sale{
		SaleID:         uuid.NewString(),
		BookID:         bookID,
		ISBN:           norm,
		Qty:            qty,
		UnitPriceCents: unitPriceCents,
		Currency:       cur,
		Timestamp:      time.Now(),
	}, nil
}

// TotalCents is the sale's revenue in minor units.
func (s *Sale) TotalCents() int64 { return s.UnitPriceCents * int64(s.Qty) }

// UnitPrice returns the captured unit price in major units.
func (s *Sale) UnitPrice() decimal.Decimal { return decimal.New(s.UnitPriceCents, -2) }

// Total returns the sale's revenue in major units.
func (s *Sale) Total() decimal.Decimal { return decimal.New(s.TotalCents(), -2) }

// ---------------------------------------------------------------------------
// Wire decoding
// ---------------------------------------------------------------------------

// decodeBook revalidates a persisted record through the same rules as
// NewBook. Records written by older versions may omit currency, quantity,
// archived or created_at; those get forward-compatible defaults.
func decodeBook(raw json.RawMessage) (*Book, error) {
	var rec struct {
		ID         string     `json:"id"`
		Title      string     `json:"title"`
		Author     string     `json:"author"`
		ISBN       string     `json:"isbn"`
		PriceCents int64      `json:"price_cents"`
		Currency   string     `json:"currency"`
		Quantity   int        `json:"quantity"`
		Archived   bool       `json:"archived"`
		CreatedAt  *time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &ValidationError{Field: "book", Message: err.Error()}
	}
	title, err := nonEmpty("title", rec.Title)
	if err != nil {
		return nil, err
	}
	author, err := nonEmpty("author", rec.Author)
	if err != nil {
		return nil, err
	}
	norm := NormalizeISBN(rec.ISBN)
	if !isbnRE.MatchString(norm) {
		return nil, &ValidationError{Field: "isbn", Message: "must be 10 or 13 digits"}
	}
	if rec.PriceCents < 0 {
		return nil, &ValidationError{Field: "price_cents", Message: "must be a non-negative integer"}
	}
	if rec.Quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be a non-negative integer"}
	}
	cur := rec.Currency
	if strings.TrimSpace(cur) == "" {
		cur = "USD"
	}
	cur, err = normalizeCurrency(cur)
	if err != nil {
		return nil, err
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now()
	if rec.CreatedAt != nil {
		createdAt = *rec.CreatedAt
	}
	return &Book{
		ID:         id,
		Title:      title,
		Author:     author,
		ISBN:       norm,
		PriceCents: rec.PriceCents,
		Currency:   cur,
		Quantity:   rec.Quantity,
		Archived:   rec.Archived,
		CreatedAt:  createdAt,
	}, nil
}

// decodeSale decodes a persisted ledger entry. Unlike books, sale records
// are never silently skipped, so a decode failure surfaces to the caller.
func decodeSale(raw json.RawMessage) (*Sale, error) {
	var s Sale
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if _, err := nonEmpty("sale_id", s.SaleID); err != nil {
		return nil, err
	}
	if _, err := nonEmpty("book_id", s.BookID); err != nil {
		return nil, err
	}
	if !isbnRE.MatchString(NormalizeISBN(s.ISBN)) {
		return nil, &ValidationError{Field: "isbn", Message: "must be 10 or 13 digits"}
	}
	if s.Qty <= 0 {
		return nil, &ValidationError{Field: "qty", Message: "must be a positive integer"}
	}
	if s.UnitPriceCents < 0 {
		return nil, &ValidationError{Field: "unit_price_cents", Message: "must be a non-negative integer"}
	}
	if s.Timestamp.IsZero() {
		return nil, &ValidationError{Field: "timestamp", Message: "must be present"}
	}
	if strings.TrimSpace(s.Currency) == "" {
		s.Currency = "USD"
	}
	return &s, nil
}

// ---------------------------------------------------------------------------
// Field validators
// ---------------------------------------------------------------------------

func nonEmpty(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Message: "must be a non-empty string"}
	}
	return trimmed, nil
}

func normalizeCurrency(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: "currency", Message: "must be a non-empty string"}
	}
	return strings.ToUpper(trimmed), nil
}

// toCents converts a major-unit amount to minor units, rounding fractions of
// a cent half to even.
func toCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, &ValidationError{Field: "price", Message: "must be >= 0"}
	}
	return amount.Mul(oneHundred).RoundBank(0).IntPart(), nil
}
