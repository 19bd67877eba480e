package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	pkgAuth "github.com/polkiloo/atm/internal/pkg/auth"
	testhelpers "github.com/polkiloo/atm/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testHasher(t *testing.T) pkgAuth.PINHasher {
	t.Helper()
	return pkgAuth.NewBcryptHasher(bcrypt.MinCost)
}

func hashPin(t *testing.T, hasher pkgAuth.PINHasher, pin string) string {
	t.Helper()
	hash, err := hasher.Hash(pin)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	return hash
}

func TestLoginFlowUnknownAccount(t *testing.T) {
	uc := NewAuthUseCase(testhelpers.NewAccountRepositoryStub(), testHasher(t), testLogger())

	flow := uc.NewLoginFlow()
	if err := flow.SubmitAccountNumber(context.Background(), 9999); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if flow.State() != StateRejected {
		t.Fatalf("expected rejected state, got %v", flow.State())
	}
}

func TestLoginFlowLockedAccountRejectedBeforePin(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"), FailedAttempts: 3, Locked: true,
	})
	uc := NewAuthUseCase(repo, hasher, testLogger())

	flow := uc.NewLoginFlow()
	if err := flow.SubmitAccountNumber(context.Background(), 1001); !errors.Is(err, domainErrors.ErrAccountLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if flow.State() != StateRejected {
		t.Fatalf("expected rejected state, got %v", flow.State())
	}
}

func TestLoginFlowLockoutAfterThreeFailures(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"), Balance: 1000, HolderName: "Zaid",
	})
	uc := NewAuthUseCase(repo, hasher, testLogger())

	flow := uc.NewLoginFlow()
	if err := flow.SubmitAccountNumber(context.Background(), 1001); err != nil {
		t.Fatalf("submit account: %v", err)
	}

	for attempt := 1; attempt <= 2; attempt++ {
		if _, err := flow.SubmitPIN(context.Background(), "0000"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", attempt, err)
		}
		if flow.State() != StateAwaitingPin {
			t.Fatalf("attempt %d: expected to stay awaiting pin", attempt)
		}
	}

	if _, err := flow.SubmitPIN(context.Background(), "0000"); !errors.Is(err, domainErrors.ErrAccountLocked) {
		t.Fatalf("expected locked error on third failure, got %v", err)
	}
	if flow.State() != StateLockedOut {
		t.Fatalf("expected locked out state, got %v", flow.State())
	}

	// The lock must have been flushed the moment it was set.
	last := repo.Updates[len(repo.Updates)-1]
	if !last.Locked || last.FailedAttempts != 3 {
		t.Fatalf("lock not persisted: %+v", last)
	}

	// A fresh attempt with the correct PIN is refused outright.
	fresh := uc.NewLoginFlow()
	if err := fresh.SubmitAccountNumber(context.Background(), 1001); !errors.Is(err, domainErrors.ErrAccountLocked) {
		t.Fatalf("expected locked error on fourth attempt, got %v", err)
	}
}

func TestLoginFlowSuccessResetsCounter(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"), HolderName: "Zaid", FailedAttempts: 2,
	})
	uc := NewAuthUseCase(repo, hasher, testLogger())

	flow := uc.NewLoginFlow()
	if err := flow.SubmitAccountNumber(context.Background(), 1001); err != nil {
		t.Fatalf("submit account: %v", err)
	}
	if left := flow.AttemptsLeft(); left != 1 {
		t.Fatalf("expected 1 attempt left, got %d", left)
	}

	session, err := flow.SubmitPIN(context.Background(), "1234")
	if err != nil {
		t.Fatalf("submit pin: %v", err)
	}
	if flow.State() != StateAuthenticated {
		t.Fatalf("expected authenticated state, got %v", flow.State())
	}
	if session.AccountNumber != 1001 || session.HolderName != "Zaid" {
		t.Fatalf("unexpected session: %+v", session)
	}

	stored, _ := repo.Get(context.Background(), 1001)
	if stored.FailedAttempts != 0 {
		t.Fatalf("expected counter reset, got %d", stored.FailedAttempts)
	}
}

func TestLoginFlowPersistFailureSurfaces(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"),
	})
	repo.UpdateFn = func(context.Context, *model.Account) error {
		return errors.New("disk full")
	}
	uc := NewAuthUseCase(repo, hasher, testLogger())

	flow := uc.NewLoginFlow()
	if err := flow.SubmitAccountNumber(context.Background(), 1001); err != nil {
		t.Fatalf("submit account: %v", err)
	}

	_, err := flow.SubmitPIN(context.Background(), "0000")
	var pErr *domainErrors.PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestAuthenticateRetriesUntilCorrectPin(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"), HolderName: "Zaid",
	})
	uc := NewAuthUseCase(repo, hasher, testLogger())

	pins := []string{"1111", "2222", "1234"}
	var seenAttemptsLeft []int
	session, err := uc.Authenticate(context.Background(), 1001, func(attemptsLeft int) (string, bool) {
		seenAttemptsLeft = append(seenAttemptsLeft, attemptsLeft)
		pin := pins[0]
		pins = pins[1:]
		return pin, true
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session == nil || session.AccountNumber != 1001 {
		t.Fatalf("unexpected session: %+v", session)
	}
	if len(seenAttemptsLeft) != 3 || seenAttemptsLeft[0] != 3 || seenAttemptsLeft[2] != 1 {
		t.Fatalf("unexpected attempts-left sequence: %v", seenAttemptsLeft)
	}
}

func TestAuthenticateSupplierAborts(t *testing.T) {
	hasher := testHasher(t)
	repo := testhelpers.NewAccountRepositoryStub(&model.Account{
		Number: 1001, PINHash: hashPin(t, hasher, "1234"),
	})
	uc := NewAuthUseCase(repo, hasher, testLogger())

	_, err := uc.Authenticate(context.Background(), 1001, func(int) (string, bool) {
		return "", false
	})
	if !errors.Is(err, domainErrors.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}
