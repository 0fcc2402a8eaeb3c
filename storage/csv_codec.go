package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"cluster-pricing/models"
)

// readCSV decodes a delimited collection with a header row into typed records
func readCSV(r io.Reader, s Schema) (*rowDecoder, error) {
	cr := csv.NewReader(bufio.NewReader(r))

	header, err := cr.Read()
	if err == io.EOF {
		return nil, schemaErr(s.Collection, 0, "", "missing header row")
	}
	if err != nil {
		return nil, csvErr(s, err)
	}

	dec, err := newRowDecoder(s, header)
	if err != nil {
		return nil, err
	}

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvErr(s, err)
		}
		if err := dec.add(row, rec); err != nil {
			return nil, err
		}
	}
	return dec, nil
}

func csvErr(s Schema, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		row := pe.Line - 1
		if row < 0 {
			row = 0
		}
		return schemaErr(s.Collection, row, "", pe.Err.Error())
	}
	return fmt.Errorf("read %s: %w", s.Collection, err)
}

// readProductsCSV reads a products collection
func readProductsCSV(r io.Reader) ([]models.Product, error) {
	dec, err := readCSV(r, ProductSchema)
	if err != nil {
		return nil, err
	}
	return dec.products, nil
}

// readBookingsCSV reads a bookings collection
func readBookingsCSV(r io.Reader) ([]models.Booking, error) {
	dec, err := readCSV(r, BookingSchema)
	if err != nil {
		return nil, err
	}
	return dec.bookings, nil
}

// writeCSV encodes a table with a header row
func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j := range rec {
			rec[j] = formatCell(row[j])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
