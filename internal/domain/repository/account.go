package repository

import (
	"context"

	"github.com/polkiloo/atm/internal/domain/model"
)

// AccountRepository describes persistence operations for accounts.
// Update flushes durably before the change becomes visible in memory.
type AccountRepository interface {
	Get(ctx context.Context, number int64) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	List(ctx context.Context) ([]model.Account, error)
}
