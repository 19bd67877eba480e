package repository

import (
	"context"

	"github.com/polkiloo/atm/internal/domain/model"
)

// Factory describes access to the domain repositories of one backend.
//
// ApplyWithdrawal commits the full effect of a confirmed withdrawal:
// the debited account, the reduced inventory and the ledger record.
// Backends provide the strongest atomicity they can; a failed commit
// must leave previously committed state visible unchanged.
type Factory interface {
	Accounts() AccountRepository
	Inventory() InventoryRepository
	Ledger() LedgerRepository

	ApplyWithdrawal(ctx context.Context, account *model.Account, inv model.NoteBundle, txn model.Transaction) error
}
