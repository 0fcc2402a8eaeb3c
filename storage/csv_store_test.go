package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cluster-pricing/models"
)

func TestDirStoreMissingInput(t *testing.T) {
	store := NewDirStore(t.TempDir(), quietLogger())
	if _, err := store.LoadProducts(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadBookings(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirStoreLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "products.csv"), []byte(productsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	products, err := NewDirStore(dir, quietLogger()).LoadProducts(context.Background())
	if err != nil {
		t.Fatalf("LoadProducts error: %v", err)
	}
	if len(products) != 2 || products[0].ID != "P1" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestDirStoreWriteTableReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store := NewDirStore(dir, quietLogger())
	ctx := context.Background()

	first := ClusterSummaryTable([]models.ClusterSummary{{ClusterKey: "a", ProductCount: 2}, {ClusterKey: "b", ProductCount: 1}})
	second := ClusterSummaryTable([]models.ClusterSummary{{ClusterKey: "c", ProductCount: 5}})
	if err := store.WriteTable(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.WriteTable(ctx, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cluster_summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "cluster_key,product_count\nc,5\n" {
		t.Fatalf("expected only the second table, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}

func TestDirStoreEmptyVersusHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	store := NewDirStore(dir, quietLogger())
	path := filepath.Join(dir, "products.csv")

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := store.LoadProducts(context.Background())
	var sme *models.SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("zero-byte file must be a schema mismatch, got %v", err)
	}

	header := "id,room_name,arrival_date,no_of_beds,room_type,grade,private_pool\n"
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		t.Fatal(err)
	}
	products, err := store.LoadProducts(context.Background())
	if err != nil {
		t.Fatalf("header-only file must load cleanly, got %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected no products, got %d", len(products))
	}
}
