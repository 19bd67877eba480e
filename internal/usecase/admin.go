package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
)

// AdminUseCase covers branch-operator maintenance: refilling the note
// stock and unlocking accounts.
type AdminUseCase struct {
	accounts  repository.AccountRepository
	inventory repository.InventoryRepository
	logger    *slog.Logger
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(accounts repository.AccountRepository, inventory repository.InventoryRepository, logger *slog.Logger) *AdminUseCase {
	return &AdminUseCase{accounts: accounts, inventory: inventory, logger: logger}
}

// Refill adds notes to the inventory and returns the new stock. Negative
// counts are rejected; refills only ever add.
func (u *AdminUseCase) Refill(ctx context.Context, add model.NoteBundle) (model.NoteBundle, error) {
	if add.HasNegative() {
		return model.NoteBundle{}, domainErrors.ErrInvalidAmount
	}

	inv, err := u.inventory.Get(ctx)
	if err != nil {
		return model.NoteBundle{}, err
	}

	refilled := inv.Add(add)
	if err := u.inventory.Update(ctx, refilled); err != nil {
		return model.NoteBundle{}, &domainErrors.PersistenceError{Op: "inventory", Err: err}
	}

	u.logger.Info("inventory refilled", slog.Int64("total", refilled.Total()))
	return refilled, nil
}

// Inventory returns the current note stock.
func (u *AdminUseCase) Inventory(ctx context.Context) (model.NoteBundle, error) {
	return u.inventory.Get(ctx)
}

// UnlockAccount clears the lock and the failed-attempt counter, flushing
// immediately so the holder can log in again.
func (u *AdminUseCase) UnlockAccount(ctx context.Context, number int64) error {
	account, err := u.accounts.Get(ctx, number)
	if err != nil {
		return err
	}

	account.Locked = false
	account.FailedAttempts = 0
	if err := u.accounts.Update(ctx, account); err != nil {
		return &domainErrors.PersistenceError{Op: "accounts", Err: err}
	}

	u.logger.Info("account unlocked", slog.Int64("account", number))
	return nil
}

// ListAccounts returns every account for the operator overview.
func (u *AdminUseCase) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return u.accounts.List(ctx)
}
