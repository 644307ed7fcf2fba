package main

import (
	"fmt"
	"os"
	"strings"

	"bookstore-management/bookstore"

	"github.com/shopspring/decimal"
)

type seedEntry struct {
	Title  string
	Author string
	ISBN   string
	Price  string
	Qty    int
}

func main() {
	dbPath := "data/bookstore.json"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	// Start from a fresh data file
	fmt.Printf("Resetting data file %s...\n", dbPath)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error removing %s: %v\n", dbPath, err)
		os.Exit(1)
	}

	bs, err := bookstore.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bookstore: %v\n", err)
		os.Exit(1)
	}

	catalog := []seedEntry{
		{"1984", "George Orwell", "978-0-452-28423-4", "9.99", 12},
		{"Animal Farm", "George Orwell", "978-0-452-28424-1", "7.49", 20},
		{"The Diary of a Young Girl", "Anne Frank", "978-0-553-29698-3", "8.99", 9},
		{"The Art of War", "Sun Tzu", "978-1-59030-963-7", "12.00", 15},
		{"The Fellowship of the Ring", "J.R.R. Tolkien", "978-0-618-57494-2", "14.99", 8},
		{"The Two Towers", "J.R.R. Tolkien", "978-0-618-57495-9", "14.99", 8},
		{"The Return of the King", "J.R.R. Tolkien", "978-0-618-57497-3", "14.99", 8},
		{"Harry Potter and the Philosopher's Stone", "J.K. Rowling", "978-0-7475-3269-9", "10.99", 25},
		{"Harry Potter and the Chamber of Secrets", "J.K. Rowling", "978-0-7475-3849-3", "10.99", 22},
		{"Harry Potter and the Prisoner of Azkaban", "J.K. Rowling", "978-0-7475-4215-5", "10.99", 18},
		{"Romeo and Juliet", "William Shakespeare", "978-0-7434-7711-6", "5.99", 30},
		{"The Three Musketeers", "Alexandre Dumas", "978-0-14-043924-2", "11.50", 6},
		{"Clean Code", "Robert C. Martin", "978-0-13-235088-4", "39.99", 5},
		{"The Go Programming Language", "Alan Donovan", "978-0-13-419044-0", "34.99", 10},
	}

	fmt.Printf("Seeding %d books...\n", len(catalog))

	successCount := 0
	errorCount := 0

	for _, entry := range catalog {
		fmt.Printf("Adding: %s by %s... ", entry.Title, entry.Author)

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			fmt.Printf("ERROR - invalid price: %v\n", err)
			errorCount++
			continue
		}

		book, err := bs.AddBook(bookstore.AddBookParams{
			Title:       entry.Title,
			Author:      entry.Author,
			ISBN:        entry.ISBN,
			Price:       price,
			Currency:    "USD",
			Quantity:    entry.Qty,
			UpdatePrice: true,
		})
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}

		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}

	fmt.Printf("\nSeed complete!\n")
	fmt.Printf("Successfully added: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		books, err := bs.ListAll(false)
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return
		}
		fmt.Printf("%-45s %-25s %-15s %8s %5s\n", "Title", "Author", "ISBN", "Price", "Qty")
		fmt.Println(strings.Repeat("-", 102))
		for _, book := range books {
			fmt.Printf("%-45s %-25s %-15s %8s %5d\n",
				truncateString(book.Title, 45),
				truncateString(book.Author, 25),
				book.ISBN,
				book.Price().StringFixed(2),
				book.Quantity)
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
