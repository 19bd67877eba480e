package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/domain/model"
	pkgAuth "github.com/polkiloo/atm/internal/pkg/auth"
	"github.com/polkiloo/atm/internal/server/console"
	testhelpers "github.com/polkiloo/atm/internal/test"
	"github.com/polkiloo/atm/internal/worker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSeedSampleDataPopulatesEmptyStore(t *testing.T) {
	store := testhelpers.NewStoreStub()
	hasher := pkgAuth.NewBcryptHasher(bcrypt.MinCost)

	err := seedSampleData(seedParams{
		Ctx:    context.Background(),
		Store:  store,
		Hasher: hasher,
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	accounts, err := store.Accounts().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 seeded accounts, got %d", len(accounts))
	}
	if accounts[0].Number != 1001 || accounts[0].HolderName != "Zaid" || accounts[0].Balance != 15000 {
		t.Fatalf("unexpected first account: %+v", accounts[0])
	}
	if err := hasher.Compare(accounts[0].PINHash, "1234"); err != nil {
		t.Fatalf("seeded PIN does not verify: %v", err)
	}
	if len(store.InventoryRepo.Updates) != 1 {
		t.Fatalf("expected inventory flush, got %d updates", len(store.InventoryRepo.Updates))
	}
}

func TestSeedSampleDataSkipsPopulatedStore(t *testing.T) {
	store := testhelpers.NewStoreStub(&model.Account{Number: 2001, HolderName: "Existing"})

	err := seedSampleData(seedParams{
		Ctx:    context.Background(),
		Store:  store,
		Hasher: pkgAuth.NewBcryptHasher(bcrypt.MinCost),
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	accounts, _ := store.Accounts().List(context.Background())
	if len(accounts) != 1 || accounts[0].Number != 2001 {
		t.Fatalf("store was reseeded: %+v", accounts)
	}
	if len(store.InventoryRepo.Updates) != 0 {
		t.Fatal("inventory must not be touched when accounts exist")
	}
}

func TestRegisterLifecycle(t *testing.T) {
	facade, _ := newTestFacade(t)
	cfg := &config.Config{CashPollInterval: time.Minute, CashAlertThreshold: 20000}
	monitor := worker.NewCashMonitor(facade, cfg.CashPollInterval, cfg.CashAlertThreshold, discardLogger())

	var out bytes.Buffer
	shell := console.New(facade, "999999", strings.NewReader("3\n"), &out, discardLogger())

	lifecycle := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}

	registerLifecycle(lifecycleParams{
		Ctx:        context.Background(),
		Lifecycle:  lifecycle,
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Shell:      shell,
		Monitor:    monitor,
		Config:     cfg,
	})

	if len(lifecycle.Hooks) != 1 {
		t.Fatalf("expected one hook, got %d", len(lifecycle.Hooks))
	}
	hook := lifecycle.Hooks[0]

	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(2 * time.Second):
		t.Fatal("shell exit never triggered shutdown")
	}

	if err := hook.OnStop(context.Background()); err != nil {
		t.Fatalf("on stop: %v", err)
	}
	if !strings.Contains(out.String(), "Exiting system. Goodbye!") {
		t.Fatalf("shell never ran:\n%s", out.String())
	}
}
