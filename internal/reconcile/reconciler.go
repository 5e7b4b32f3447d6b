// Package reconcile keeps the books table consistent with the read instance
// log. Appending a read creates or updates the book for its (title, author);
// deleting the most recent read rolls that single change back.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"readlog/internal/apperr"
	"readlog/internal/normalize"
	"readlog/pkg/models"
)

const (
	opAppend = "append"
	opDelete = "delete_last"
)

type Reconciler struct {
	Store    Store
	Logger   *slog.Logger
	Recorder Recorder
}

type Option func(*Reconciler)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.Logger = l }
}

func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) { r.Recorder = rec }
}

func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		Store:    store,
		Logger:   slog.Default(),
		Recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppendReadInstance logs one read and folds it into the matching book,
// creating the book on its first read. It returns the book as stored.
func (r *Reconciler) AppendReadInstance(ctx context.Context, fields models.ParsedFields) (*models.Book, error) {
	ri := normalize.Fields(fields)

	var (
		book    models.Book
		created bool
	)
	err := r.Store.WithinTx(ctx, func(tx Tx) error {
		id, err := tx.InsertReadInstance(ctx, ri)
		if err != nil {
			return err
		}
		ri.ID = id

		existing, err := tx.BookBy(ctx, ri.Title, ri.Author)
		if err != nil {
			return err
		}

		if existing == nil {
			book = newBook(ri)
			bookID, err := tx.InsertBook(ctx, book)
			if err != nil {
				return err
			}
			book.ID = bookID
			created = true
			return nil
		}

		book = applyRead(*existing, ri)
		return tx.UpdateBook(ctx, book)
	})
	if err != nil {
		r.Recorder.Failed(opAppend, apperr.GetCode(err))
		return nil, err
	}

	r.Recorder.Appended(created)
	r.Logger.Info("read instance appended",
		"read_instance_id", ri.ID,
		"book_id", book.ID,
		"title", book.Title,
		"author", book.Author,
		"times_read", book.TimesRead,
		"book_created", created,
	)
	return &book, nil
}

// DeleteLastReadInstance removes the most recently inserted read instance,
// whatever book it belongs to, and reverts that book. The book disappears
// when this was its only read. Its overall format is left as is.
func (r *Reconciler) DeleteLastReadInstance(ctx context.Context) (*models.Retraction, error) {
	var out models.Retraction
	err := r.Store.WithinTx(ctx, func(tx Tx) error {
		last, err := tx.LastReadInstance(ctx)
		if err != nil {
			return err
		}
		if last == nil {
			return apperr.New(apperr.CodeInvalidState, "no read instances exist")
		}
		out = models.Retraction{
			ReadInstanceID: last.ID,
			Title:          last.Title,
			Author:         last.Author,
		}

		if err := tx.DeleteReadInstance(ctx, last.ID); err != nil {
			return err
		}

		book, err := tx.BookBy(ctx, last.Title, last.Author)
		if err != nil {
			return err
		}
		if book == nil {
			return apperr.New(apperr.CodeInvariantViolation,
				fmt.Sprintf("no book for read instance %d (%s by %s)", last.ID, last.Title, last.Author))
		}
		if book.TimesRead < 1 {
			return apperr.New(apperr.CodeInvariantViolation,
				fmt.Sprintf("book %d has times_read %d", book.ID, book.TimesRead))
		}

		if book.TimesRead == 1 {
			out.BookRemoved = true
			return tx.DeleteBook(ctx, book.ID)
		}

		book.TimesRead--
		prev, err := tx.MostRecentReadDate(ctx, last.Title, last.Author, last.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			book.LastReadYear = prev.Year
			book.LastReadMonth = prev.Month
		} else {
			r.Logger.Warn("no earlier read instance to restore last read date from",
				"book_id", book.ID,
				"title", book.Title,
				"author", book.Author,
			)
		}
		book.OverallContext = TruncateContext(book.OverallContext)

		if err := tx.UpdateBook(ctx, *book); err != nil {
			return err
		}
		out.Book = book
		return nil
	})
	if err != nil {
		r.Recorder.Failed(opDelete, apperr.GetCode(err))
		return nil, err
	}

	r.Recorder.Retracted(out.BookRemoved)
	r.Logger.Info("read instance deleted",
		"read_instance_id", out.ReadInstanceID,
		"title", out.Title,
		"author", out.Author,
		"book_removed", out.BookRemoved,
	)
	return &out, nil
}

func newBook(ri models.ReadInstance) models.Book {
	return models.Book{
		Title:          ri.Title,
		Author:         ri.Author,
		FirstReadYear:  ri.ReadYear,
		FirstReadMonth: ri.ReadMonth,
		UnsureOfDate:   ri.UnsureOfDate,
		LastReadYear:   ri.ReadYear,
		LastReadMonth:  ri.ReadMonth,
		TimesRead:      1,
		OverallFormat:  ri.Format,
		OverallContext: ri.Context,
	}
}

// applyRead folds a later read into an existing book. The newest append
// always becomes the last read date, even if it is chronologically older.
func applyRead(b models.Book, ri models.ReadInstance) models.Book {
	b.TimesRead++
	b.LastReadYear = ri.ReadYear
	b.LastReadMonth = ri.ReadMonth
	b.OverallFormat = MergeFormat(b.OverallFormat, ri.Format)
	b.OverallContext = AppendContext(b.OverallContext, ri.Context)
	return b
}
