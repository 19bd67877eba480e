package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
	"github.com/polkiloo/atm/internal/pkg/auth"
	"github.com/polkiloo/atm/internal/server/console"
	"github.com/polkiloo/atm/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewATMFacade,
		newCashMonitor,
	),
	fx.Invoke(seedSampleData),
	fx.Invoke(registerLifecycle),
)

type monitorParams struct {
	fx.In

	Facade *ATMFacade
	Config *config.Config
	Logger *slog.Logger
}

func newCashMonitor(p monitorParams) *worker.CashMonitor {
	return worker.NewCashMonitor(
		p.Facade,
		p.Config.CashPollInterval,
		p.Config.CashAlertThreshold,
		p.Logger,
	)
}

type seedParams struct {
	fx.In

	Ctx    context.Context
	Store  repository.Factory
	Hasher auth.PINHasher
	Logger *slog.Logger
}

// seedSampleData creates the sample accounts when the directory
// is empty, so a fresh installation is immediately usable.
func seedSampleData(p seedParams) error {
	accounts := p.Store.Accounts()

	existing, err := accounts.List(p.Ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	samples := []struct {
		number  int64
		pin     string
		balance float64
		name    string
	}{
		{1001, "1234", 15000, "Zaid"},
		{1002, "2345", 5000, "Anita"},
		{1003, "3456", 20000, "Ravi"},
	}

	for _, sample := range samples {
		hash, err := p.Hasher.Hash(sample.pin)
		if err != nil {
			return err
		}
		err = accounts.Create(p.Ctx, &model.Account{
			Number:     sample.number,
			PINHash:    hash,
			Balance:    sample.balance,
			HolderName: sample.name,
		})
		if err != nil {
			return err
		}
	}

	inv, err := p.Store.Inventory().Get(p.Ctx)
	if err != nil {
		return err
	}
	if err := p.Store.Inventory().Update(p.Ctx, inv); err != nil {
		return err
	}

	p.Logger.Info("seeded sample accounts", slog.Int("count", len(samples)))
	return nil
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Shell      *console.Shell
	Monitor    *worker.CashMonitor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting atm")
			p.Monitor.Start(ctx)
			go func() {
				if err := p.Shell.Run(p.Ctx); err != nil {
					p.Logger.Error("shell terminated", slog.String("error", err.Error()))
				}
				_ = p.Shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Monitor.Stop()
			p.Logger.Info("atm stopped")
			return nil
		},
	})
}
