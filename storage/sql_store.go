package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cluster-pricing/models"
	"cluster-pricing/utils"
)

// dialect captures the SQL differences between supported engines
type dialect struct {
	name        string
	placeholder func(n int) string
	types       map[Kind]string
}

var (
	postgresDialect = dialect{
		name:        "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		types: map[Kind]string{
			KindText: "TEXT", KindInt: "INTEGER", KindBool: "BOOLEAN", KindDecimal: "NUMERIC(6,3)",
		},
	}
	sqliteDialect = dialect{
		name:        "sqlite",
		placeholder: func(int) string { return "?" },
		types: map[Kind]string{
			KindText: "TEXT", KindInt: "INTEGER", KindBool: "BOOLEAN", KindDecimal: "NUMERIC",
		},
	}
)

// SQLStore reads the products and bookings tables of a database and writes
// output tables into the same database
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *utils.Logger
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// selectColumns checks the live columns of the collection's table and returns
// a SELECT listing them in schema order
func (s *SQLStore) selectColumns(ctx context.Context, schema Schema) (string, error) {
	probe, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(schema.Collection)+" LIMIT 0")
	if err != nil {
		if s.tableMissing(ctx, schema.Collection) {
			return "", fmt.Errorf("table %s: %w", schema.Collection, ErrNotFound)
		}
		return "", fmt.Errorf("failed to inspect %s: %w", schema.Collection, err)
	}
	cols, err := probe.Columns()
	_ = probe.Close()
	if err != nil {
		return "", fmt.Errorf("failed to read columns of %s: %w", schema.Collection, err)
	}
	idx, err := schema.Bind(cols)
	if err != nil {
		return "", err
	}

	quoted := make([]string, len(idx))
	for i, p := range idx {
		quoted[i] = quoteIdent(cols[p])
	}
	return "SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(schema.Collection), nil
}

func (s *SQLStore) tableMissing(ctx context.Context, table string) bool {
	var q string
	switch s.dialect.name {
	case "postgres":
		q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1`
	default:
		q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, table).Scan(&n); err != nil {
		return false
	}
	return n == 0
}

// loadRecords streams a collection through a row decoder in schema column order
func (s *SQLStore) loadRecords(ctx context.Context, schema Schema) (*rowDecoder, error) {
	query, err := s.selectColumns(ctx, schema)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", schema.Collection, err)
	}
	defer rows.Close()

	dec, err := newRowDecoder(schema, schema.Columns)
	if err != nil {
		return nil, err
	}
	cells := make([]sql.NullString, len(schema.Columns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	raw := make([]string, len(cells))

	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, schemaErr(schema.Collection, row, "", err.Error())
		}
		for i, c := range cells {
			raw[i] = c.String
		}
		if err := dec.add(row, raw); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", schema.Collection, err)
	}
	return dec, nil
}

// LoadProducts reads the products table
func (s *SQLStore) LoadProducts(ctx context.Context) ([]models.Product, error) {
	dec, err := s.loadRecords(ctx, ProductSchema)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d products from %s", len(dec.products), s.dialect.name)
	return dec.products, nil
}

// LoadBookings reads the bookings table
func (s *SQLStore) LoadBookings(ctx context.Context) ([]models.Booking, error) {
	dec, err := s.loadRecords(ctx, BookingSchema)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d bookings from %s", len(dec.bookings), s.dialect.name)
	return dec.bookings, nil
}

func sqlArg(v any) any {
	if r, ok := v.(models.Rate); ok {
		return r.String()
	}
	return v
}

// WriteTable drops, recreates and fills the table in a single transaction
func (s *SQLStore) WriteTable(ctx context.Context, t Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	defs := make([]string, len(t.Columns))
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c.Name)
		defs[i] = cols[i] + " " + s.dialect.types[c.Kind]
		marks[i] = s.dialect.placeholder(i + 1)
	}

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(t.Name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", t.Name, err)
	}
	if _, err = tx.ExecContext(ctx, "CREATE TABLE "+quoteIdent(t.Name)+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+quoteIdent(t.Name)+
		" ("+strings.Join(cols, ", ")+") VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for i, row := range t.Rows {
		for j := range args {
			args[j] = sqlArg(row[j])
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %w", i+1, t.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Table %s replaced in %s (%d rows)", t.Name, s.dialect.name, len(t.Rows))
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
