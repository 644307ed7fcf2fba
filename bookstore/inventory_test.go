package bookstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempInventory(t *testing.T) (*InventoryService, *BookRepository) {
	t.Helper()
	repo := tempRepo(t)
	return NewInventoryService(repo), repo
}

func addParams(t *testing.T, isbn, priceStr string, qty int) AddBookParams {
	t.Helper()
	return AddBookParams{
		Title:       "Clean Code",
		Author:      "Robert C. Martin",
		ISBN:        isbn,
		Price:       price(t, priceStr),
		Currency:    "USD",
		Quantity:    qty,
		UpdatePrice: true,
	}
}

func TestAddBookCreates(t *testing.T) {
	inv, repo := tempInventory(t)

	b, err := inv.AddBook(addParams(t, "978-0-13-235088-4", "32.50", 2))
	require.NoError(t, err)
	assert.Equal(t, "9780132350884", b.ISBN)
	assert.Equal(t, 2, b.Quantity)

	persisted, err := repo.GetByISBN("9780132350884")
	require.NoError(t, err)
	assert.Equal(t, b.ID, persisted.ID)
}

func TestAddBookRestocksExistingISBN(t *testing.T) {
	inv, repo := tempInventory(t)

	first, err := inv.AddBook(addParams(t, "9780132350884", "32.50", 2))
	require.NoError(t, err)

	second, err := inv.AddBook(addParams(t, "978-0-13-235088-4", "29.99", 3))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "restock must reuse the existing record")
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, int64(2999), second.PriceCents, "price refreshes when requested")

	all, err := repo.ListAll(true)
	require.NoError(t, err)
	assert.Len(t, all, 1, "same ISBN twice must stay a single record")
}

func TestAddBookKeepsPriceWhenNotRequested(t *testing.T) {
	inv, _ := tempInventory(t)

	_, err := inv.AddBook(addParams(t, "9780132350884", "32.50", 2))
	require.NoError(t, err)

	p := addParams(t, "9780132350884", "10.00", 1)
	p.UpdatePrice = false
	b, err := inv.AddBook(p)
	require.NoError(t, err)
	assert.Equal(t, int64(3250), b.PriceCents)
}

func TestAddBookRejectsNonPositiveQuantity(t *testing.T) {
	inv, _ := tempInventory(t)
	for _, qty := range []int{0, -3} {
		_, err := inv.AddBook(addParams(t, "9780132350884", "1.00", qty))
		assert.True(t, IsValidation(err))
	}
}

func TestSetPrice(t *testing.T) {
	inv, repo := tempInventory(t)
	_, err := inv.AddBook(addParams(t, "9780132350884", "32.50", 1))
	require.NoError(t, err)

	b, err := inv.SetPrice("978-0-13-235088-4", price(t, "25.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), b.PriceCents)

	persisted, err := repo.GetByISBN("9780132350884")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), persisted.PriceCents)

	_, err = inv.SetPrice("9780132350884", price(t, "-1"))
	assert.True(t, IsValidation(err))

	_, err = inv.SetPrice("9780201616224", price(t, "1.00"))
	assert.True(t, IsNotFound(err))
}

func TestSetQuantity(t *testing.T) {
	inv, _ := tempInventory(t)
	_, err := inv.AddBook(addParams(t, "9780132350884", "1.00", 1))
	require.NoError(t, err)

	b, err := inv.SetQuantity("9780132350884", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Quantity)

	_, err = inv.SetQuantity("9780132350884", -1)
	assert.True(t, IsValidation(err))
}

func TestIncreaseAndDecreaseStock(t *testing.T) {
	inv, repo := tempInventory(t)
	_, err := inv.AddBook(addParams(t, "9780132350884", "1.00", 2))
	require.NoError(t, err)

	b, err := inv.IncreaseStock("9780132350884", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Quantity)

	b, err = inv.DecreaseStock("9780132350884", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Quantity)

	_, err = inv.DecreaseStock("9780132350884", 2)
	assert.True(t, IsValidation(err), "decreasing below zero fails rather than clamping")

	persisted, err := repo.GetByISBN("9780132350884")
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.Quantity, "failed decrease must not persist")

	_, err = inv.IncreaseStock("9780132350884", 0)
	assert.True(t, IsValidation(err))
}

func TestArchiveIfEmpty(t *testing.T) {
	inv, repo := tempInventory(t)
	_, err := inv.AddBook(addParams(t, "9780132350884", "1.00", 2))
	require.NoError(t, err)

	_, err = inv.ArchiveIfEmpty("9780132350884")
	require.True(t, IsValidation(err), "archiving with stock on hand must fail")

	_, err = inv.SetQuantity("9780132350884", 0)
	require.NoError(t, err)

	b, err := inv.ArchiveIfEmpty("978-0-13-235088-4")
	require.NoError(t, err)
	assert.True(t, b.Archived)

	active, err := inv.ListAll(false)
	require.NoError(t, err)
	assert.Empty(t, active)

	persisted, err := repo.GetByISBN("9780132350884")
	require.NoError(t, err)
	assert.True(t, persisted.Archived, "archived book remains retrievable by ISBN")
}
