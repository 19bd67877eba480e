package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/storage/file"
	testhelpers "github.com/polkiloo/atm/internal/test"
)

func TestNewFactorySelectsFileBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		AccountsFile:  filepath.Join(dir, "accounts.txt"),
		InventoryFile: filepath.Join(dir, "atm.txt"),
		LedgerFile:    filepath.Join(dir, "transactions.txt"),
	}

	factory, err := newFactory(factoryParams{
		Ctx:       context.Background(),
		Lifecycle: &testhelpers.LifecycleRecorder{},
		Config:    cfg,
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := factory.(*file.Store); !ok {
		t.Fatalf("expected file store, got %T", factory)
	}
}

func TestNewFactoryRejectsBadDSN(t *testing.T) {
	cfg := &config.Config{DatabaseURI: ":://bad"}

	_, err := newFactory(factoryParams{
		Ctx:       context.Background(),
		Lifecycle: &testhelpers.LifecycleRecorder{},
		Config:    cfg,
		Logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}
