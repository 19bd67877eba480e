package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
	pkgAuth "github.com/polkiloo/atm/internal/pkg/auth"
)

// AuthState is a phase of a single login attempt.
type AuthState int

const (
	StateAwaitingAccountNumber AuthState = iota
	StateAwaitingPin
	StateAuthenticated
	StateLockedOut
	StateRejected
)

// AuthUseCase governs login, failed-attempt tracking and lockout.
type AuthUseCase struct {
	accounts repository.AccountRepository
	hasher   pkgAuth.PINHasher
	logger   *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(accounts repository.AccountRepository, hasher pkgAuth.PINHasher, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{accounts: accounts, hasher: hasher, logger: logger}
}

// LoginFlow is the state machine for one authentication attempt. It is
// used once and discarded; a fresh attempt starts a fresh flow.
type LoginFlow struct {
	uc      *AuthUseCase
	state   AuthState
	account *model.Account
}

// NewLoginFlow starts a flow in StateAwaitingAccountNumber.
func (u *AuthUseCase) NewLoginFlow() *LoginFlow {
	return &LoginFlow{uc: u, state: StateAwaitingAccountNumber}
}

// State returns the current phase of the flow.
func (f *LoginFlow) State() AuthState {
	return f.state
}

// AttemptsLeft reports remaining PIN entries before lockout. Zero when
// no account is bound yet.
func (f *LoginFlow) AttemptsLeft() int {
	if f.account == nil {
		return 0
	}
	return f.account.AttemptsLeft()
}

// SubmitAccountNumber binds the flow to an account. An unknown number
// rejects the attempt; a locked account rejects it without ever
// prompting for a PIN.
func (f *LoginFlow) SubmitAccountNumber(ctx context.Context, number int64) error {
	if f.state != StateAwaitingAccountNumber {
		return domainErrors.ErrInvalidCredentials
	}

	account, err := f.uc.accounts.Get(ctx, number)
	if err != nil {
		f.state = StateRejected
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrNotFound
		}
		return err
	}

	if account.Locked {
		f.state = StateRejected
		f.uc.logger.Warn("login refused for locked account", slog.Int64("account", number))
		return domainErrors.ErrAccountLocked
	}

	f.account = account
	f.state = StateAwaitingPin
	return nil
}

// SubmitPIN consumes one PIN entry. A correct PIN authenticates the flow
// and resets the failed counter; a wrong PIN increments it, locking the
// account when the third consecutive failure is reached. Counter and
// lock changes are flushed before the outcome is reported so a crash
// cannot forget a lockout.
func (f *LoginFlow) SubmitPIN(ctx context.Context, pin string) (*model.Session, error) {
	if f.state != StateAwaitingPin {
		return nil, domainErrors.ErrInvalidCredentials
	}

	if err := f.uc.hasher.Compare(f.account.PINHash, pin); err != nil {
		f.account.FailedAttempts++
		if f.account.FailedAttempts >= model.MaxPinAttempts {
			f.account.Locked = true
			f.state = StateLockedOut
		}
		if err := f.uc.accounts.Update(ctx, f.account); err != nil {
			return nil, &domainErrors.PersistenceError{Op: "accounts", Err: err}
		}
		if f.state == StateLockedOut {
			f.uc.logger.Warn("account locked after failed attempts", slog.Int64("account", f.account.Number))
			return nil, domainErrors.ErrAccountLocked
		}
		return nil, domainErrors.ErrInvalidCredentials
	}

	f.account.FailedAttempts = 0
	if err := f.uc.accounts.Update(ctx, f.account); err != nil {
		return nil, &domainErrors.PersistenceError{Op: "accounts", Err: err}
	}

	f.state = StateAuthenticated
	return &model.Session{
		AccountNumber: f.account.Number,
		HolderName:    f.account.HolderName,
		StartedAt:     time.Now(),
	}, nil
}

// Authenticate runs a full login flow, pulling PIN entries from the
// supplier until the flow reaches a terminal state. The supplier
// receives the number of attempts left and may abort by returning false.
func (u *AuthUseCase) Authenticate(ctx context.Context, number int64, pinSupplier func(attemptsLeft int) (string, bool)) (*model.Session, error) {
	flow := u.NewLoginFlow()
	if err := flow.SubmitAccountNumber(ctx, number); err != nil {
		return nil, err
	}

	for flow.State() == StateAwaitingPin {
		pin, ok := pinSupplier(flow.AttemptsLeft())
		if !ok {
			return nil, domainErrors.ErrCancelled
		}

		session, err := flow.SubmitPIN(ctx, pin)
		if err == nil {
			return session, nil
		}
		if errors.Is(err, domainErrors.ErrInvalidCredentials) && flow.State() == StateAwaitingPin {
			continue
		}
		return nil, err
	}

	return nil, domainErrors.ErrInvalidCredentials
}
