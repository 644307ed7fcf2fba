package bookstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "bookstore.json"))
	require.NoError(t, err)
	return s
}

func TestOpenStoreBootstraps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "nested", "bookstore.json")

	s, err := OpenStore(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"books": [], "sales": []}`, string(data))

	doc, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, doc.Books)
	require.NotNil(t, doc.Sales)
	require.Empty(t, doc.Books)
	require.Empty(t, doc.Sales)
}

func TestLoadRecreatesMissingFile(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.Remove(s.Path()))

	doc, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, doc.Books)

	_, err = os.Stat(s.Path())
	require.NoError(t, err, "load should persist the default document")
}

func TestLoadDefaultsMissingFields(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"books": [{"x": 1}]}`), 0o644))

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Books, 1)
	require.NotNil(t, doc.Sales)
	require.Empty(t, doc.Sales)
}

func TestLoadCorruptJSONLeavesFileUntouched(t *testing.T) {
	s := tempStore(t)
	corrupt := []byte(`{"books": [,]`)
	require.NoError(t, os.WriteFile(s.Path(), corrupt, 0o644))

	_, err := s.Load()
	require.Error(t, err)
	require.True(t, IsStorage(err))

	after, readErr := os.ReadFile(s.Path())
	require.NoError(t, readErr)
	require.Equal(t, corrupt, after, "corrupt data must stay on disk for inspection")
}

func TestLoadRejectsNonObjectRoot(t *testing.T) {
	s := tempStore(t)
	for _, content := range []string{`[1, 2]`, `null`, `"books"`} {
		require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
		_, err := s.Load()
		require.True(t, IsStorage(err), "content %s should fail to load", content)
	}
}

func TestLoadRejectsNonArrayFields(t *testing.T) {
	s := tempStore(t)
	for _, content := range []string{
		`{"books": {}, "sales": []}`,
		`{"books": [], "sales": "x"}`,
		`{"books": null, "sales": []}`,
	} {
		require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
		_, err := s.Load()
		require.True(t, IsStorage(err), "content %s should fail to load", content)
	}
}

func TestSaveRequiresBothArrays(t *testing.T) {
	s := tempStore(t)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	for _, doc := range []*Document{
		{Books: nil, Sales: []json.RawMessage{}},
		{Books: []json.RawMessage{}, Sales: nil},
		nil,
	} {
		err := s.Save(doc)
		require.True(t, IsStorage(err))
	}

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, before, after, "rejected saves must not touch the file")
}

func TestSaveRoundTrip(t *testing.T) {
	s := tempStore(t)
	doc := &Document{
		Books: []json.RawMessage{json.RawMessage(`{"id":"b1"}`)},
		Sales: []json.RawMessage{json.RawMessage(`{"sale_id":"s1"}`)},
	}
	require.NoError(t, s.Save(doc))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Books, 1)
	require.Len(t, loaded.Sales, 1)
	require.JSONEq(t, `{"id":"b1"}`, string(loaded.Books[0]))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(defaultDocument()))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestFailedSaveLeavesOriginalIntact(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	s := tempStore(t)
	doc := &Document{
		Books: []json.RawMessage{json.RawMessage(`{"id":"b1"}`)},
		Sales: []json.RawMessage{},
	}
	require.NoError(t, s.Save(doc))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	dir := filepath.Dir(s.Path())
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	err = s.Save(defaultDocument())
	require.True(t, IsStorage(err))

	require.NoError(t, os.Chmod(dir, 0o755))
	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Equal(t, before, after, "failed save must leave the previous document byte-identical")
}

func TestFailedReplaceCleansUpTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookstore.json")
	s, err := OpenStore(path)
	require.NoError(t, err)

	// Turn the target into a directory so the final rename fails.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	err = s.Save(defaultDocument())
	require.True(t, IsStorage(err))

	leftovers, globErr := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, globErr)
	require.Empty(t, leftovers, "temp file should be removed after a failed replace")
}

func TestDocumentGoldenLayout(t *testing.T) {
	s := tempStore(t)

	book := &Book{
		ID:         "0b79c6a2-5a02-4f3c-9bfa-67f9ac21b0c5",
		Title:      "Clean Code",
		Author:     "Robert C. Martin",
		ISBN:       "9780132350884",
		PriceCents: 3250,
		Currency:   "USD",
		Quantity:   2,
		Archived:   false,
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	sale := &Sale{
		SaleID:         "8d1f4a0e-0a75-4c63-8b62-3f1c6d0c9f11",
		BookID:         book.ID,
		ISBN:           book.ISBN,
		Qty:            1,
		UnitPriceCents: 3250,
		Currency:       "USD",
		Timestamp:      time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	rawBook, err := json.Marshal(book)
	require.NoError(t, err)
	rawSale, err := json.Marshal(sale)
	require.NoError(t, err)

	require.NoError(t, s.Save(&Document{
		Books: []json.RawMessage{rawBook},
		Sales: []json.RawMessage{rawSale},
	}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "document", data)
}
