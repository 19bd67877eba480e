package app

import (
	"context"

	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/usecase"
)

// ATMFacade is the engine surface consumed by the interactive shell and
// the cash monitor.
type ATMFacade struct {
	auth  *usecase.AuthUseCase
	txns  *usecase.TransactionUseCase
	admin *usecase.AdminUseCase
}

// NewATMFacade constructs ATMFacade.
func NewATMFacade(auth *usecase.AuthUseCase, txns *usecase.TransactionUseCase, admin *usecase.AdminUseCase) *ATMFacade {
	return &ATMFacade{auth: auth, txns: txns, admin: admin}
}

func (f *ATMFacade) Authenticate(ctx context.Context, number int64, pinSupplier func(attemptsLeft int) (string, bool)) (*model.Session, error) {
	return f.auth.Authenticate(ctx, number, pinSupplier)
}

func (f *ATMFacade) InquireBalance(ctx context.Context, session *model.Session) (float64, error) {
	return f.txns.InquireBalance(ctx, session)
}

func (f *ATMFacade) Withdraw(ctx context.Context, session *model.Session, amount int64, confirm func(model.NoteBundle) bool) (*model.Receipt, error) {
	return f.txns.Withdraw(ctx, session, amount, confirm)
}

func (f *ATMFacade) History(ctx context.Context, number int64) ([]model.Transaction, error) {
	return f.txns.History(ctx, number)
}

func (f *ATMFacade) InventoryStatus(ctx context.Context) (model.NoteBundle, error) {
	return f.admin.Inventory(ctx)
}

func (f *ATMFacade) Refill(ctx context.Context, add model.NoteBundle) (model.NoteBundle, error) {
	return f.admin.Refill(ctx, add)
}

func (f *ATMFacade) UnlockAccount(ctx context.Context, number int64) error {
	return f.admin.UnlockAccount(ctx, number)
}

func (f *ATMFacade) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return f.admin.ListAccounts(ctx)
}
