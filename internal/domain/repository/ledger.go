package repository

import (
	"context"

	"github.com/polkiloo/atm/internal/domain/model"
)

// LedgerRepository provides access to the append-only transaction log.
// Records are never edited or removed; ListByAccount returns them in
// the order they were appended.
type LedgerRepository interface {
	Append(ctx context.Context, txn model.Transaction) error
	ListByAccount(ctx context.Context, number int64) ([]model.Transaction, error)
}
