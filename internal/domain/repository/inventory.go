package repository

import (
	"context"

	"github.com/polkiloo/atm/internal/domain/model"
)

// InventoryRepository manages the machine's note stock.
type InventoryRepository interface {
	Get(ctx context.Context) (model.NoteBundle, error)
	Update(ctx context.Context, inv model.NoteBundle) error
}
