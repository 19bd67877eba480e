package di

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/atm/internal/app"
	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/server/console"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		AccountsFile:       filepath.Join(dir, "accounts.txt"),
		InventoryFile:      filepath.Join(dir, "atm.txt"),
		LedgerFile:         filepath.Join(dir, "transactions.txt"),
		AdminPIN:           "999999",
		CashAlertThreshold: 20000,
		CashPollInterval:   time.Millisecond,
		ShutdownTimeout:    time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade *app.ATMFacade
		shell  *console.Shell
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
		),
		fx.Populate(&facade, &shell),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected facade instance")
	}
	if shell == nil {
		t.Fatal("expected shell instance")
	}

	// The seed invoke ran against the fresh file store.
	accounts, err := facade.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 seeded accounts, got %d", len(accounts))
	}
}
