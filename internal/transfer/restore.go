package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"readlog/internal/apperr"
	"readlog/internal/reconcile"
	"readlog/internal/storage"
)

// RestoreBooksCSV overlays the aggregates of an exported books.csv onto
// books rebuilt by ImportCSV. Replay alone cannot undo a sticky format or a
// last read date kept by a retraction, so the exported values win for
// last_read_year, last_read_month, overall_format and overall_context.
//
// Every row must name a replayed book with the same times_read; otherwise
// nothing is written and a STORAGE_INCONSISTENCY error is returned.
func RestoreBooksCSV(ctx context.Context, r io.Reader, store *storage.Store) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	for _, col := range []string{"title", "author", "times_read"} {
		if _, ok := header[col]; !ok {
			return 0, fmt.Errorf("missing %q column", col)
		}
	}

	restored := 0
	err = store.WithinTx(ctx, func(tx reconcile.Tx) error {
		line := 1
		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			line++
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}

			title, author := valueAt(header, row, "title"), valueAt(header, row, "author")
			book, err := tx.BookBy(ctx, title, author)
			if err != nil {
				return err
			}
			if book == nil {
				return apperr.New(apperr.CodeStorageInconsistency,
					fmt.Sprintf("line %d: no replayed book %q by %q", line, title, author))
			}

			timesRead, err := atoiOrZero(valueAt(header, row, "times_read"))
			if err != nil {
				return apperr.Wrap(apperr.CodeValidation, fmt.Sprintf("line %d: times_read", line), err)
			}
			if timesRead != book.TimesRead {
				return apperr.New(apperr.CodeStorageInconsistency,
					fmt.Sprintf("line %d: %q has %d reads in the log, %d in the export", line, title, book.TimesRead, timesRead))
			}

			if book.LastReadYear, err = atoiOrZero(valueAt(header, row, "last_read_year")); err != nil {
				return apperr.Wrap(apperr.CodeValidation, fmt.Sprintf("line %d: last_read_year", line), err)
			}
			book.LastReadMonth = valueAt(header, row, "last_read_month")
			book.OverallFormat = valueAt(header, row, "overall_format")
			book.OverallContext = rawValueAt(header, row, "overall_context")

			if err := tx.UpdateBook(ctx, *book); err != nil {
				return err
			}
			restored++
		}
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
