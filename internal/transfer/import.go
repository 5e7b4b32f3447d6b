// Package transfer moves the reading log in and out of flat files. Imports
// replay every row through the reconciler, so books are always rebuilt by
// the same rules as live appends.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"readlog/internal/reconcile"
	"readlog/pkg/models"
)

// Columns shared by the read instance import and export.
var ReadInstanceHeader = []string{"title", "author", "read_year", "read_month", "unsure_of_date", "format", "context"}

type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCSV appends every row of r in file order. Rows missing a title or an
// author are skipped. It stops at the first reconciler error; rows before it
// stay imported.
func ImportCSV(ctx context.Context, r io.Reader, rec *reconcile.Reconciler) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	for _, col := range []string{"title", "author"} {
		if _, ok := header[col]; !ok {
			return res, fmt.Errorf("missing %q column", col)
		}
	}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		fields := models.ParsedFields{
			Title:        valueAt(header, row, "title"),
			Author:       valueAt(header, row, "author"),
			ReadYear:     valueAt(header, row, "read_year"),
			ReadMonth:    valueAt(header, row, "read_month"),
			UnsureOfDate: valueAt(header, row, "unsure_of_date"),
			Format:       valueAt(header, row, "format"),
			Context:      rawValueAt(header, row, "context"),
		}
		if fields.Title == "" || fields.Author == "" {
			res.Skipped++
			continue
		}
		if _, ok := header["unsure_of_date"]; !ok || fields.UnsureOfDate == "" {
			fields.UnsureOfDate = "0"
		}

		if _, err := rec.AppendReadInstance(ctx, fields); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Imported++
	}
	return res, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	return strings.TrimSpace(rawValueAt(header, row, key))
}

// rawValueAt keeps surrounding whitespace; notes are stored exactly as given.
func rawValueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
