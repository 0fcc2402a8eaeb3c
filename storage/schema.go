package storage

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cluster-pricing/models"
)

// ErrNotFound is returned when an input collection does not exist at the location
var ErrNotFound = errors.New("input collection not found")

// Input collection names
const (
	CollectionProducts = "products"
	CollectionBookings = "bookings"
)

// Schema is the fixed column set of an input collection
type Schema struct {
	Collection string
	Columns    []string
}

var (
	ProductSchema = Schema{
		Collection: CollectionProducts,
		Columns:    []string{"id", "room_name", "arrival_date", "no_of_beds", "room_type", "grade", "private_pool"},
	}
	BookingSchema = Schema{
		Collection: CollectionBookings,
		Columns:    []string{"id", "product_id", "creation_date", "confirmation_status", "arrival_date"},
	}
)

// NormalizeHeader maps source headers such as "No. of Beds" to schema names like "no_of_beds"
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, ".", "")
	return strings.Join(strings.Fields(h), "_")
}

// Bind matches a header row against the schema and returns, for each schema
// column, its position in the header. Missing, extra or repeated columns fail.
func (s Schema) Bind(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := NormalizeHeader(h)
		if _, dup := pos[name]; dup {
			return nil, schemaErr(s.Collection, 0, name, "duplicate column")
		}
		pos[name] = i
	}

	idx := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		p, ok := pos[col]
		if !ok {
			return nil, schemaErr(s.Collection, 0, col, "missing required column")
		}
		idx[i] = p
		delete(pos, col)
	}
	if len(pos) > 0 {
		extra := make([]string, 0, len(pos))
		for name := range pos {
			extra = append(extra, name)
		}
		sort.Strings(extra)
		return nil, schemaErr(s.Collection, 0, "", fmt.Sprintf("expected %d columns, got %d (unexpected: %s)",
			len(s.Columns), len(header), strings.Join(extra, ", ")))
	}
	return idx, nil
}

func schemaErr(collection string, row int, column, reason string) error {
	return &models.SchemaMismatchError{Collection: collection, Row: row, Column: column, Reason: reason}
}

// record is one input row reordered to schema column order
type record struct {
	collection string
	row        int
	values     []string
}

func project(s Schema, idx []int, row int, raw []string) (record, error) {
	if len(raw) != len(s.Columns) {
		return record{}, schemaErr(s.Collection, row, "", fmt.Sprintf("expected %d fields, got %d", len(s.Columns), len(raw)))
	}
	values := make([]string, len(idx))
	for i, p := range idx {
		values[i] = strings.TrimSpace(raw[p])
	}
	return record{collection: s.Collection, row: row, values: values}, nil
}

func (r record) int(i int, col string) (int, error) {
	n, err := strconv.Atoi(r.values[i])
	if err != nil {
		return 0, schemaErr(r.collection, r.row, col, fmt.Sprintf("expected integer, got %q", r.values[i]))
	}
	return n, nil
}

func (r record) bool(i int, col string) (bool, error) {
	switch strings.ToLower(r.values[i]) {
	case "true", "yes", "y", "1", "t":
		return true, nil
	case "false", "no", "n", "0", "f":
		return false, nil
	}
	return false, schemaErr(r.collection, r.row, col, fmt.Sprintf("expected boolean, got %q", r.values[i]))
}

// decodeProduct converts a product record in ProductSchema order
func decodeProduct(r record) (models.Product, error) {
	beds, err := r.int(3, "no_of_beds")
	if err != nil {
		return models.Product{}, err
	}
	grade, err := r.int(5, "grade")
	if err != nil {
		return models.Product{}, err
	}
	pool, err := r.bool(6, "private_pool")
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:          r.values[0],
		RoomName:    r.values[1],
		ArrivalDate: models.NormalizeDate(r.values[2]),
		Beds:        beds,
		RoomType:    r.values[4],
		Grade:       grade,
		PrivatePool: pool,
	}, nil
}

// date parses a calendar date cell into canonical form. When optional is set
// an empty cell is kept empty; any other unparseable value is malformed input.
func (r record) date(i int, col, entity string, optional bool) (string, error) {
	raw := r.values[i]
	if raw == "" && optional {
		return "", nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		id := r.values[0]
		if id == "" {
			id = "#" + strconv.Itoa(r.row)
		}
		return "", &models.MalformedInputError{Entity: entity, ID: id, Field: col, Value: raw, Err: err}
	}
	return d.Format(models.DateLayout), nil
}

// decodeBooking converts a booking record in BookingSchema order.
// A missing creation date is allowed; an unparseable one, or any arrival
// date that does not parse, is malformed input.
func decodeBooking(r record) (models.Booking, error) {
	created, err := r.date(2, "creation_date", "booking", true)
	if err != nil {
		return models.Booking{}, err
	}
	arrival, err := r.date(4, "arrival_date", "booking", false)
	if err != nil {
		return models.Booking{}, err
	}
	return models.Booking{
		ID:           r.values[0],
		ProductID:    r.values[1],
		CreationDate: created,
		Status:       models.BookingStatus(r.values[3]),
		ArrivalDate:  arrival,
	}, nil
}

// rowDecoder accumulates decoded rows of one collection
type rowDecoder struct {
	schema   Schema
	idx      []int
	products []models.Product
	bookings []models.Booking
}

func newRowDecoder(s Schema, header []string) (*rowDecoder, error) {
	idx, err := s.Bind(header)
	if err != nil {
		return nil, err
	}
	return &rowDecoder{schema: s, idx: idx}, nil
}

// add decodes one raw data row; row is 1-based
func (d *rowDecoder) add(row int, raw []string) error {
	rec, err := project(d.schema, d.idx, row, raw)
	if err != nil {
		return err
	}
	switch d.schema.Collection {
	case CollectionProducts:
		p, err := decodeProduct(rec)
		if err != nil {
			return err
		}
		d.products = append(d.products, p)
	case CollectionBookings:
		b, err := decodeBooking(rec)
		if err != nil {
			return err
		}
		d.bookings = append(d.bookings, b)
	}
	return nil
}
