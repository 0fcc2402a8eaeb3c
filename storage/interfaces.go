package storage

import (
	"context"

	"cluster-pricing/models"
)

// RecordSource supplies the input collections of a run
type RecordSource interface {
	LoadProducts(ctx context.Context) ([]models.Product, error)
	LoadBookings(ctx context.Context) ([]models.Booking, error)
}

// RecordSink persists output tables. Each WriteTable call fully replaces any
// previous table of the same name, and either succeeds completely or leaves
// the previous table in place.
type RecordSink interface {
	WriteTable(ctx context.Context, t Table) error
}

// RecordStore is a location that can be read and written
type RecordStore interface {
	RecordSource
	RecordSink
	Close() error
}
