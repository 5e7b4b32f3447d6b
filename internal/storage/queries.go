package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"readlog/internal/normalize"
	"readlog/pkg/models"
)

const bookColumns = `id, title, author, first_read_year, first_read_month, unsure_of_date,
	last_read_year, last_read_month, times_read, overall_format, overall_context`

const readInstanceColumns = `id, title, author, read_year, read_month, unsure_of_date, format, context`

func scanBook(row scanner) (*models.Book, error) {
	var b models.Book
	if err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.FirstReadYear, &b.FirstReadMonth, &b.UnsureOfDate,
		&b.LastReadYear, &b.LastReadMonth, &b.TimesRead, &b.OverallFormat, &b.OverallContext,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanReadInstance(row scanner) (*models.ReadInstance, error) {
	var ri models.ReadInstance
	if err := row.Scan(
		&ri.ID, &ri.Title, &ri.Author, &ri.ReadYear, &ri.ReadMonth, &ri.UnsureOfDate, &ri.Format, &ri.Context,
	); err != nil {
		return nil, err
	}
	return &ri, nil
}

func lastReadInstance(ctx context.Context, q querier) (*models.ReadInstance, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+readInstanceColumns+`
		FROM read_instances
		ORDER BY id DESC
		LIMIT 1
	`)
	ri, err := scanReadInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("last read instance", err)
	}
	return ri, nil
}

// LastReadInstance returns the most recently inserted read instance, or nil
// when the log is empty.
func (s *Store) LastReadInstance(ctx context.Context) (*models.ReadInstance, error) {
	return lastReadInstance(ctx, s.DB)
}

// ListReadInstances pages through the log newest first. Empty title or
// author means no filter on that column.
func (s *Store) ListReadInstances(ctx context.Context, title, author string, limit, offset int) ([]models.ReadInstance, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var where []string
	var args []any
	if title != "" {
		where = append(where, "title = ?")
		args = append(args, title)
	}
	if author != "" {
		where = append(where, "author = ?")
		args = append(args, author)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM read_instances`+clause, args...).Scan(&total); err != nil {
		return nil, 0, classify("count read instances", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+readInstanceColumns+` FROM read_instances`+clause+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify("list read instances", err)
	}
	defer rows.Close()

	out := make([]models.ReadInstance, 0, limit)
	for rows.Next() {
		ri, err := scanReadInstance(rows)
		if err != nil {
			return nil, 0, classify("scan read instance", err)
		}
		out = append(out, *ri)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("rows read instances", err)
	}
	return out, total, nil
}

func (s *Store) CountReadInstancesInYear(ctx context.Context, year int) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM read_instances WHERE read_year = ?
	`, year).Scan(&n); err != nil {
		return 0, classify("count read instances in year", err)
	}
	return n, nil
}

type ListQuery struct {
	Q      string // keyword search in title/author
	Format string // exact overall_format
	Limit  int
	Offset int
}

func (s *Store) CountBooks(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := s.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, classify("count books", err)
	}
	return total, nil
}

func (s *Store) ListBooks(ctx context.Context, q ListQuery) ([]models.Book, error) {
	sqlStr, args := buildListSQL(q, false)
	rows, err := s.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("list books", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

// buildListSQL builds either COUNT(*) or the paged SELECT for books.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	sqlStr := `SELECT ` + bookColumns + ` FROM books`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM books`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)")
		like := "%" + strings.ToLower(kw) + "%"
		args = append(args, like, like)
	}
	if f := strings.TrimSpace(q.Format); f != "" {
		where = append(where, "overall_format = ?")
		args = append(args, f)
	}

	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		sqlStr += " ORDER BY title ASC, author ASC LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	return sqlStr, args
}

func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get book", err)
	}
	return b, nil
}

// FindBooksFuzzy matches books whose title key contains the key of title,
// and, when author is non-empty, whose author key contains the author key.
// Keys ignore case and punctuation (see normalize.Key), which is what a
// spoken title needs to find its written form.
func (s *Store) FindBooksFuzzy(ctx context.Context, title, author string) ([]models.Book, error) {
	titleKey := normalize.Key(title)
	if titleKey == "" {
		return nil, nil
	}
	authorKey := normalize.Key(author)

	all, err := s.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.Book
	for _, b := range all {
		if !strings.Contains(normalize.Key(b.Title), titleKey) {
			continue
		}
		if authorKey != "" && !strings.Contains(normalize.Key(b.Author), authorKey) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) AllBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title ASC, author ASC`)
	if err != nil {
		return nil, classify("all books", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (s *Store) AllReadInstances(ctx context.Context) ([]models.ReadInstance, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+readInstanceColumns+` FROM read_instances ORDER BY id ASC`)
	if err != nil {
		return nil, classify("all read instances", err)
	}
	defer rows.Close()

	var out []models.ReadInstance
	for rows.Next() {
		ri, err := scanReadInstance(rows)
		if err != nil {
			return nil, classify("scan read instance", err)
		}
		out = append(out, *ri)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("rows read instances", err)
	}
	return out, nil
}

// bookRows is the part of *sql.Rows collectBooks needs.
type bookRows interface {
	scanner
	Next() bool
	Err() error
}

func collectBooks(rows bookRows) ([]models.Book, error) {
	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, classify("scan book", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("rows books", err)
	}
	return out, nil
}
