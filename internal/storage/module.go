package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/domain/repository"
	"github.com/polkiloo/atm/internal/storage/file"
	"github.com/polkiloo/atm/internal/storage/postgres"
)

// Module wires the storage backend: flat files by default, PostgreSQL
// when a DSN is configured.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.AccountRepository { return f.Accounts() },
		func(f repository.Factory) repository.InventoryRepository { return f.Inventory() },
		func(f repository.Factory) repository.LedgerRepository { return f.Ledger() },
	),
)

type factoryParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newFactory(p factoryParams) (repository.Factory, error) {
	if p.Config.DatabaseURI != "" {
		st, err := postgres.New(p.Ctx, p.Config.DatabaseURI, p.Logger)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				st.Close()
				return nil
			},
		})
		return st, nil
	}
	return file.New(p.Config.AccountsFile, p.Config.InventoryFile, p.Config.LedgerFile, p.Logger)
}
