package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"bookstore-management/bookstore"

	"github.com/lmittmann/tint"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootOptions holds global flags shared by all commands.
type rootOptions struct {
	DBPath     string
	ConfigPath string
	Currency   string
	Verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "bookstore",
		Short:        "Single-user bookstore inventory and sales ledger",
		Long:         "Manage a bookstore catalog and sales ledger persisted to one JSON file.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.Verbose)

			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("db") {
				opts.DBPath = cfg.DBPath
			}
			if !cmd.Flags().Changed("currency") {
				opts.Currency = cfg.Currency
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", defaultDBPath, "path to the JSON data file")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Currency, "currency", defaultCurrency, "currency code for new books")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newSellCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newSetPriceCommand(opts))
	cmd.AddCommand(newSetQuantityCommand(opts))
	cmd.AddCommand(newRestockCommand(opts))
	cmd.AddCommand(newReduceCommand(opts))
	cmd.AddCommand(newArchiveCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newSalesCommand(opts))
	cmd.AddCommand(newTotalCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))

	return cmd
}

// setupLogging routes slog through a tint handler on stderr, with color only
// when stderr is a terminal.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})))
}

func openBookstore(opts *rootOptions) (*bookstore.Bookstore, error) {
	return bookstore.Open(opts.DBPath)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Catalog commands
// ---------------------------------------------------------------------------

func newAddCommand(opts *rootOptions) *cobra.Command {
	var (
		title     string
		author    string
		isbn      string
		priceStr  string
		qty       int
		keepPrice bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book, or restock it if the ISBN already exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parsePrice(priceStr)
			if err != nil {
				return err
			}
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.AddBook(bookstore.AddBookParams{
				Title:       title,
				Author:      author,
				ISBN:        isbn,
				Price:       price,
				Currency:    opts.Currency,
				Quantity:    qty,
				UpdatePrice: !keepPrice,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Catalog now has %q by %s (ISBN %s): %d in stock at %s %s\n",
				book.Title, book.Author, book.ISBN, book.Quantity,
				book.Price().StringFixed(2), book.Currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN-10 or ISBN-13")
	cmd.Flags().StringVar(&priceStr, "price", "", "unit price in major units, e.g. 19.99")
	cmd.Flags().IntVar(&qty, "qty", 1, "number of copies to add")
	cmd.Flags().BoolVar(&keepPrice, "keep-price", false, "when restocking, keep the existing price")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")
	cmd.MarkFlagRequired("isbn")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			books, err := bs.ListAll(all)
			if err != nil {
				return err
			}
			printBooks(books)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived books")
	return cmd
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		all   bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search by title, author, or ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			books, err := bs.Search(args[0], all, limit)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Printf("No books found matching %q.\n", args[0])
				return nil
			}
			fmt.Printf("Found %d book(s) matching %q:\n", len(books), args[0])
			printBooks(books)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived books")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of results")
	return cmd
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <isbn>",
		Short: "Show one book by ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.GetBookByISBN(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ID:       %s\n", book.ID)
			fmt.Printf("Title:    %s\n", book.Title)
			fmt.Printf("Author:   %s\n", book.Author)
			fmt.Printf("ISBN:     %s\n", book.ISBN)
			fmt.Printf("Price:    %s %s\n", book.Price().StringFixed(2), book.Currency)
			fmt.Printf("Quantity: %d\n", book.Quantity)
			fmt.Printf("Archived: %t\n", book.Archived)
			fmt.Printf("Added:    %s\n", book.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newSetPriceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-price <isbn> <price>",
		Short: "Set a book's price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parsePrice(args[1])
			if err != nil {
				return err
			}
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.SetPrice(args[0], price)
			if err != nil {
				return err
			}
			fmt.Printf("%q now costs %s %s\n", book.Title, book.Price().StringFixed(2), book.Currency)
			return nil
		},
	}
}

func newSetQuantityCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-quantity <isbn> <qty>",
		Short: "Set a book's stock level (manual correction)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.SetQuantity(args[0], qty)
			if err != nil {
				return err
			}
			fmt.Printf("%q now has %d in stock\n", book.Title, book.Quantity)
			return nil
		},
	}
}

func newRestockCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restock <isbn> <n>",
		Short: "Increase a book's stock by n copies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q", args[1])
			}
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.IncreaseStock(args[0], n)
			if err != nil {
				return err
			}
			fmt.Printf("%q now has %d in stock\n", book.Title, book.Quantity)
			return nil
		},
	}
}

func newReduceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reduce <isbn> <n>",
		Short: "Decrease a book's stock by n copies (not a sale)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q", args[1])
			}
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.DecreaseStock(args[0], n)
			if err != nil {
				return err
			}
			fmt.Printf("%q now has %d in stock\n", book.Title, book.Quantity)
			return nil
		},
	}
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <isbn>",
		Short: "Archive a sold-out book (quantity must be zero)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			book, err := bs.ArchiveIfEmpty(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%q is now archived\n", book.Title)
			return nil
		},
	}
}

func newRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <book-id>",
		Short: "Permanently delete a book by id (bypasses archival)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			if err := bs.RemoveBook(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed book %s\n", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Sales commands
// ---------------------------------------------------------------------------

func newSellCommand(opts *rootOptions) *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "sell <isbn>",
		Short: "Sell copies of a book and record the sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			sale, err := bs.Sell(args[0], qty)
			if err != nil {
				var oos *bookstore.OutOfStockError
				if errors.As(err, &oos) {
					return fmt.Errorf("only %d of %d requested copies of %s in stock",
						oos.Available, oos.Requested, oos.ISBN)
				}
				return err
			}
			fmt.Printf("Sold %d x %s at %s %s (total %s %s)\n",
				sale.Qty, sale.ISBN,
				sale.UnitPrice().StringFixed(2), sale.Currency,
				sale.Total().StringFixed(2), sale.Currency)
			return nil
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "number of copies to sell")
	return cmd
}

func newSalesCommand(opts *rootOptions) *cobra.Command {
	var (
		isbn  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List recorded sales, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			sales, err := bs.ListSales(isbn, limit)
			if err != nil {
				return err
			}
			if len(sales) == 0 {
				fmt.Println("No sales recorded.")
				return nil
			}
			fmt.Printf("%-20s %-15s %5s %14s %14s\n", "Time", "ISBN", "Qty", "Unit Price", "Total")
			fmt.Println(strings.Repeat("-", 72))
			for _, s := range sales {
				fmt.Printf("%-20s %-15s %5d %14s %14s\n",
					s.Timestamp.Format("2006-01-02 15:04:05"),
					s.ISBN, s.Qty,
					s.UnitPrice().StringFixed(2)+" "+s.Currency,
					s.Total().StringFixed(2)+" "+s.Currency)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "filter by ISBN")
	cmd.Flags().IntVar(&limit, "limit", 100, "show only the most recent N sales")
	return cmd
}

func newTotalCommand(opts *rootOptions) *cobra.Command {
	var isbn string

	cmd := &cobra.Command{
		Use:   "total",
		Short: "Show total revenue",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			total, err := bs.SalesTotal(isbn)
			if err != nil {
				return err
			}
			if isbn != "" {
				fmt.Printf("Revenue for %s: %s\n", bookstore.NormalizeISBN(isbn), total.StringFixed(2))
			} else {
				fmt.Printf("Total revenue: %s\n", total.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "restrict to one ISBN")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and sales statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := openBookstore(opts)
			if err != nil {
				return err
			}
			st, err := bs.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Titles:    %d (%d active, %d archived)\n", st.TotalTitles, st.ActiveTitles, st.ArchivedTitles)
			fmt.Printf("In stock:  %d copies\n", st.TotalQuantity)
			fmt.Printf("Sales:     %d transactions\n", st.SalesCount)
			fmt.Printf("Revenue:   %s\n", st.Revenue.StringFixed(2))
			fmt.Printf("Data file: %s\n", bs.Path())
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Output helpers
// ---------------------------------------------------------------------------

func printBooks(books []*bookstore.Book) {
	if len(books) == 0 {
		fmt.Println("No books in catalog.")
		return
	}
	fmt.Printf("%-36s %-30s %-25s %-15s %12s %5s %-8s\n",
		"ID", "Title", "Author", "ISBN", "Price", "Qty", "Archived")
	fmt.Println(strings.Repeat("-", 140))
	for _, b := range books {
		fmt.Printf("%-36s %-30s %-25s %-15s %12s %5d %-8t\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.ISBN,
			b.Price().StringFixed(2)+" "+b.Currency,
			b.Quantity,
			b.Archived)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
