package usecase

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
)

// TransactionUseCase orchestrates balance-affecting and inquiry
// operations over one storage backend.
type TransactionUseCase struct {
	store  repository.Factory
	logger *slog.Logger
	now    func() time.Time
}

// NewTransactionUseCase constructs TransactionUseCase.
func NewTransactionUseCase(store repository.Factory, logger *slog.Logger) *TransactionUseCase {
	return &TransactionUseCase{store: store, logger: logger, now: time.Now}
}

// Withdraw validates the request, allocates a note mix, asks the caller
// to confirm it and commits account, inventory and ledger as one unit.
// Nothing is mutated before the confirmation callback returns true, and
// nothing is committed in memory unless the durable write succeeds.
func (u *TransactionUseCase) Withdraw(ctx context.Context, session *model.Session, amount int64, confirm func(model.NoteBundle) bool) (*model.Receipt, error) {
	if amount <= 0 || amount%model.Denom100 != 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	account, err := u.store.Accounts().Get(ctx, session.AccountNumber)
	if err != nil {
		return nil, err
	}
	if float64(amount) > account.Balance {
		return nil, domainErrors.ErrInsufficientFunds
	}

	inv, err := u.store.Inventory().Get(ctx)
	if err != nil {
		return nil, err
	}
	if amount > inv.Total() {
		return nil, domainErrors.ErrInsufficientCash
	}

	notes, ok := AllocateNotes(amount, inv)
	if !ok {
		return nil, domainErrors.ErrNoteMixUnavailable
	}

	if !confirm(notes) {
		return nil, domainErrors.ErrCancelled
	}

	debited := account.Clone()
	debited.Balance -= float64(amount)

	txn := model.Transaction{
		AccountNumber:    account.Number,
		Kind:             model.KindWithdrawal,
		Amount:           float64(amount),
		RemainingBalance: debited.Balance,
		CreatedAt:        u.now(),
	}

	if err := u.store.ApplyWithdrawal(ctx, debited, inv.Subtract(notes), txn); err != nil {
		return nil, &domainErrors.PersistenceError{Op: "withdrawal", Err: err}
	}

	u.logger.Info("cash dispensed",
		slog.Int64("account", account.Number),
		slog.Int64("amount", amount),
		slog.Float64("balance", debited.Balance),
	)

	return &model.Receipt{Notes: notes, Amount: amount, Balance: debited.Balance}, nil
}

// InquireBalance returns the current balance and logs the inquiry to the
// ledger. Inquiries are recorded events, not pure reads; a failed ledger
// append is reported in the log but does not fail the inquiry.
func (u *TransactionUseCase) InquireBalance(ctx context.Context, session *model.Session) (float64, error) {
	account, err := u.store.Accounts().Get(ctx, session.AccountNumber)
	if err != nil {
		return 0, err
	}

	txn := model.Transaction{
		AccountNumber:    account.Number,
		Kind:             model.KindBalanceInquiry,
		Amount:           0,
		RemainingBalance: account.Balance,
		CreatedAt:        u.now(),
	}
	if err := u.store.Ledger().Append(ctx, txn); err != nil {
		u.logger.Warn("inquiry not logged", slog.Int64("account", account.Number), slog.String("error", err.Error()))
	}

	return account.Balance, nil
}

// History returns the account's ledger records in append order.
func (u *TransactionUseCase) History(ctx context.Context, number int64) ([]model.Transaction, error) {
	return u.store.Ledger().ListByAccount(ctx, number)
}
