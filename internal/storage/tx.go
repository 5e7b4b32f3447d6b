package storage

import (
	"context"
	"database/sql"
	"errors"

	"readlog/internal/reconcile"
	"readlog/pkg/models"
)

// Tx implements reconcile.Tx over a single SQL transaction.
type Tx struct {
	q querier
}

var _ reconcile.Tx = (*Tx)(nil)

func (t *Tx) InsertReadInstance(ctx context.Context, ri models.ReadInstance) (int64, error) {
	res, err := t.q.ExecContext(ctx, `
		INSERT INTO read_instances (title, author, read_year, read_month, unsure_of_date, format, context)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ri.Title, ri.Author, ri.ReadYear, ri.ReadMonth, ri.UnsureOfDate, ri.Format, ri.Context)
	if err != nil {
		return 0, classify("insert read instance", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("read instance id", err)
	}
	return id, nil
}

func (t *Tx) DeleteReadInstance(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM read_instances WHERE id = ?`, id)
	if err != nil {
		return classify("delete read instance", err)
	}
	return rowsAffectedOne(res, "delete read instance")
}

func (t *Tx) LastReadInstance(ctx context.Context) (*models.ReadInstance, error) {
	return lastReadInstance(ctx, t.q)
}

func (t *Tx) MostRecentReadDate(ctx context.Context, title, author string, excludingID int64) (*models.ReadDate, error) {
	row := t.q.QueryRowContext(ctx, `
		SELECT read_year, read_month
		FROM read_instances
		WHERE title = ? AND author = ? AND id != ?
		ORDER BY id DESC
		LIMIT 1
	`, title, author, excludingID)

	var d models.ReadDate
	if err := row.Scan(&d.Year, &d.Month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("most recent read date", err)
	}
	return &d, nil
}

func (t *Tx) BookBy(ctx context.Context, title, author string) (*models.Book, error) {
	row := t.q.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE title = ? AND author = ?
	`, title, author)

	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("find book", err)
	}
	return b, nil
}

func (t *Tx) InsertBook(ctx context.Context, b models.Book) (int64, error) {
	res, err := t.q.ExecContext(ctx, `
		INSERT INTO books (
			title, author, first_read_year, first_read_month, unsure_of_date,
			last_read_year, last_read_month, times_read, overall_format, overall_context
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.Title, b.Author, b.FirstReadYear, b.FirstReadMonth, b.UnsureOfDate,
		b.LastReadYear, b.LastReadMonth, b.TimesRead, b.OverallFormat, b.OverallContext)
	if err != nil {
		return 0, classify("insert book", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("book id", err)
	}
	return id, nil
}

func (t *Tx) UpdateBook(ctx context.Context, b models.Book) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE books SET
			last_read_year = ?,
			last_read_month = ?,
			times_read = ?,
			overall_format = ?,
			overall_context = ?
		WHERE id = ?
	`, b.LastReadYear, b.LastReadMonth, b.TimesRead, b.OverallFormat, b.OverallContext, b.ID)
	if err != nil {
		return classify("update book", err)
	}
	return rowsAffectedOne(res, "update book")
}

func (t *Tx) DeleteBook(ctx context.Context, id int64) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return classify("delete book", err)
	}
	return rowsAffectedOne(res, "delete book")
}
