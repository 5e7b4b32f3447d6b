package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readlog/internal/apperr"
	"readlog/internal/reconcile"
	"readlog/pkg/database"
	"readlog/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return NewStore(db)
}

func insertRead(t *testing.T, s *Store, ri models.ReadInstance) int64 {
	t.Helper()
	var id int64
	err := s.WithinTx(context.Background(), func(tx reconcile.Tx) error {
		var err error
		id, err = tx.InsertReadInstance(context.Background(), ri)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := insertRead(t, s, models.ReadInstance{Title: "Dune", Author: "Frank Herbert", ReadYear: 2023})
	assert.Positive(t, id)

	last, err := s.LastReadInstance(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id, last.ID)
	assert.Equal(t, "Dune", last.Title)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		if _, err := tx.InsertReadInstance(ctx, models.ReadInstance{Title: "Dune", Author: "Frank Herbert"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	last, err := s.LastReadInstance(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(tx reconcile.Tx) error {
			_, _ = tx.InsertReadInstance(ctx, models.ReadInstance{Title: "Dune", Author: "Frank Herbert"})
			panic("mid-transaction")
		})
	})

	last, err := s.LastReadInstance(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestTx_BookLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		missing, err := tx.BookBy(ctx, "Dune", "Frank Herbert")
		require.NoError(t, err)
		assert.Nil(t, missing)

		id, err := tx.InsertBook(ctx, models.Book{
			Title: "Dune", Author: "Frank Herbert",
			FirstReadYear: 2020, FirstReadMonth: "Jan",
			LastReadYear: 2020, LastReadMonth: "Jan",
			TimesRead: 1, OverallFormat: "Book",
		})
		require.NoError(t, err)

		b, err := tx.BookBy(ctx, "Dune", "Frank Herbert")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, id, b.ID)

		b.TimesRead = 2
		b.LastReadYear = 2023
		b.OverallFormat = "Book/Audio"
		b.OverallContext = " -- loved it"
		require.NoError(t, tx.UpdateBook(ctx, *b))

		got, err := tx.BookBy(ctx, "Dune", "Frank Herbert")
		require.NoError(t, err)
		assert.Equal(t, 2, got.TimesRead)
		assert.Equal(t, 2023, got.LastReadYear)
		assert.Equal(t, 2020, got.FirstReadYear)
		assert.Equal(t, "Book/Audio", got.OverallFormat)
		assert.Equal(t, " -- loved it", got.OverallContext)

		require.NoError(t, tx.DeleteBook(ctx, id))
		gone, err := tx.BookBy(ctx, "Dune", "Frank Herbert")
		require.NoError(t, err)
		assert.Nil(t, gone)
		return nil
	})
	require.NoError(t, err)
}

func TestTx_DuplicateBookIsInconsistency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := models.Book{Title: "Dune", Author: "Frank Herbert", TimesRead: 1}

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		if _, err := tx.InsertBook(ctx, book); err != nil {
			return err
		}
		_, err := tx.InsertBook(ctx, book)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeStorageInconsistency, apperr.GetCode(err))
}

func TestTx_DeleteMissingRowsIsInconsistency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		return tx.DeleteReadInstance(ctx, 42)
	})
	assert.Equal(t, apperr.CodeStorageInconsistency, apperr.GetCode(err))

	err = s.WithinTx(ctx, func(tx reconcile.Tx) error {
		return tx.UpdateBook(ctx, models.Book{ID: 42, TimesRead: 1})
	})
	assert.Equal(t, apperr.CodeStorageInconsistency, apperr.GetCode(err))
}

func TestTx_MostRecentReadDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := insertRead(t, s, models.ReadInstance{Title: "Dune", Author: "Frank Herbert", ReadYear: 2019, ReadMonth: "Mar"})
	insertRead(t, s, models.ReadInstance{Title: "Emma", Author: "Jane Austen", ReadYear: 2021})
	second := insertRead(t, s, models.ReadInstance{Title: "Dune", Author: "Frank Herbert", ReadYear: 2015, ReadMonth: "Jul"})

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		d, err := tx.MostRecentReadDate(ctx, "Dune", "Frank Herbert", 0)
		require.NoError(t, err)
		assert.Equal(t, &models.ReadDate{Year: 2015, Month: "Jul"}, d, "recency follows id, not the date")

		d, err = tx.MostRecentReadDate(ctx, "Dune", "Frank Herbert", second)
		require.NoError(t, err)
		assert.Equal(t, &models.ReadDate{Year: 2019, Month: "Mar"}, d)

		require.NoError(t, tx.DeleteReadInstance(ctx, first))
		d, err = tx.MostRecentReadDate(ctx, "Dune", "Frank Herbert", second)
		require.NoError(t, err)
		assert.Nil(t, d)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ReadOnlyQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertRead(t, s, models.ReadInstance{Title: "Dune", Author: "Frank Herbert", ReadYear: 2023})
	insertRead(t, s, models.ReadInstance{Title: "Emma", Author: "Jane Austen", ReadYear: 2023})
	insertRead(t, s, models.ReadInstance{Title: "Dune", Author: "Frank Herbert", ReadYear: 2024})

	n, err := s.CountReadInstancesInYear(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, total, err := s.ListReadInstances(ctx, "Dune", "Frank Herbert", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, 2024, items[0].ReadYear, "newest first")

	all, err := s.AllReadInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_ListAndFindBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		for _, b := range []models.Book{
			{Title: "Dune", Author: "Frank Herbert", TimesRead: 2, OverallFormat: "Book/Audio"},
			{Title: "Dune Messiah", Author: "Frank Herbert", TimesRead: 1, OverallFormat: "Book"},
			{Title: "Ender's Game", Author: "Orson Scott Card", TimesRead: 1, OverallFormat: "Ebook"},
		} {
			if _, err := tx.InsertBook(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	total, err := s.CountBooks(ctx, ListQuery{Q: "herbert"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	books, err := s.ListBooks(ctx, ListQuery{Format: "Ebook"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Ender's Game", books[0].Title)

	got, err := s.GetBook(ctx, books[0].ID)
	require.NoError(t, err)
	assert.Equal(t, &books[0], got)

	missing, err := s.GetBook(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := s.FindBooksFuzzy(ctx, "enders game", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ender's Game", found[0].Title)

	found, err = s.FindBooksFuzzy(ctx, "dune", "herbert")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.FindBooksFuzzy(ctx, "dune", "austen")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("noop", nil))

	constraint := sqlite3.Error{Code: sqlite3.ErrConstraint}
	assert.Equal(t, apperr.CodeStorageInconsistency, apperr.GetCode(classify("insert", constraint)))

	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.GetCode(classify("insert", busy)))

	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.GetCode(classify("query", sql.ErrConnDone)))
}

func TestStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.DB.Close())

	_, err := s.LastReadInstance(context.Background())
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.GetCode(err))

	err = s.WithinTx(context.Background(), func(reconcile.Tx) error { return nil })
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.GetCode(err))
}

type failingRows struct {
	err error
}

func (failingRows) Next() bool {
	return false
}

func (failingRows) Scan(...any) error {
	return nil
}

func (r failingRows) Err() error {
	return r.err
}

func TestCollectBooks_IterationErrorWrappedOnce(t *testing.T) {
	cause := errors.New("disk I/O error")

	_, err := collectBooks(failingRows{err: cause})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.CodeStorageUnavailable, apperr.GetCode(err))
	assert.Equal(t, "STORAGE_UNAVAILABLE: rows books: disk I/O error", err.Error())
}
