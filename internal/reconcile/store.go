package reconcile

import (
	"context"

	"readlog/pkg/models"
)

// Store hands out one transaction per logical operation. fn's writes are
// committed when it returns nil and rolled back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the storage contract the reconciler works against. Lookups return
// (nil, nil) when nothing matches. Transport failures surface as
// apperr.CodeStorageUnavailable, constraint failures as
// apperr.CodeStorageInconsistency.
type Tx interface {
	InsertReadInstance(ctx context.Context, ri models.ReadInstance) (int64, error)
	DeleteReadInstance(ctx context.Context, id int64) error
	LastReadInstance(ctx context.Context) (*models.ReadInstance, error)
	MostRecentReadDate(ctx context.Context, title, author string, excludingID int64) (*models.ReadDate, error)

	BookBy(ctx context.Context, title, author string) (*models.Book, error)
	InsertBook(ctx context.Context, b models.Book) (int64, error)
	UpdateBook(ctx context.Context, b models.Book) error
	DeleteBook(ctx context.Context, id int64) error
}
