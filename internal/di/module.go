package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/atm/internal/app"
	"github.com/polkiloo/atm/internal/config"
	"github.com/polkiloo/atm/internal/logger"
	"github.com/polkiloo/atm/internal/pkg/auth"
	"github.com/polkiloo/atm/internal/server/console"
	"github.com/polkiloo/atm/internal/storage"
	"github.com/polkiloo/atm/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		usecase.Module,
		fx.Provide(func(f *app.ATMFacade) console.Facade { return f }),
		console.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
