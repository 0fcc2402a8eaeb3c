package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cluster-pricing/models"
	"cluster-pricing/utils"
)

// DirStore reads <dir>/products.csv and <dir>/bookings.csv and writes each
// output table to <dir>/<table>.csv
type DirStore struct {
	dir    string
	logger *utils.Logger
}

// NewDirStore creates a new DirStore rooted at dir
func NewDirStore(dir string, logger *utils.Logger) *DirStore {
	return &DirStore{dir: dir, logger: logger}
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *DirStore) open(collection string) (*os.File, error) {
	f, err := os.Open(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path(collection), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", collection, err)
	}
	return f, nil
}

// LoadProducts reads products.csv
func (s *DirStore) LoadProducts(ctx context.Context) ([]models.Product, error) {
	f, err := s.open(CollectionProducts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	products, err := readProductsCSV(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d products from %s", len(products), f.Name())
	return products, nil
}

// LoadBookings reads bookings.csv
func (s *DirStore) LoadBookings(ctx context.Context) ([]models.Booking, error) {
	f, err := s.open(CollectionBookings)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bookings, err := readBookingsCSV(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d bookings from %s", len(bookings), f.Name())
	return bookings, nil
}

// WriteTable writes the table to a temp file beside the target and renames it
// into place, so readers never observe a partial table
func (s *DirStore) WriteTable(ctx context.Context, t Table) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+t.Name+"-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, t); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(t.Name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path(t.Name), err)
	}

	s.logger.Info("Table %s written to: %s (%d rows)", t.Name, s.path(t.Name), len(t.Rows))
	return nil
}

// Close is a no-op for directory stores
func (s *DirStore) Close() error { return nil }
