package console

import (
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/polkiloo/atm/internal/config"
)

// Module wires the interactive shell over stdin/stdout.
var Module = fx.Provide(newShell)

type shellParams struct {
	fx.In

	Facade Facade
	Config *config.Config
	Logger *slog.Logger
}

func newShell(p shellParams) *Shell {
	return New(p.Facade, p.Config.AdminPIN, os.Stdin, os.Stdout, p.Logger)
}
