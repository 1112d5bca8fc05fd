package db

import (
	"context"

	"github.com/coptimize/openinventory/internal/config"
	"github.com/coptimize/openinventory/internal/prefs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Prefs *prefs.Preferences
	Log   *zap.Logger
}

type Result struct {
	fx.Out

	Store *Store
	Mode  Mode
}

// ProvideStore opens the store selected by the mode flag, read once at
// startup. The flag only changes through a successful migration, after which
// the process is restarted.
func ProvideStore(p Params) (Result, error) {
	mode := ModeSingleTenant
	path := p.Cfg.StorePath()
	if p.Prefs.IsAuthModeEnabled() {
		mode = ModeMultiTenant
		path = p.Cfg.AuthStorePath()
	}

	store, err := Open(path, mode, p.Log)
	if err != nil {
		return Result{}, err
	}
	return Result{Store: store, Mode: mode}, nil
}

func registerHooks(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return store.Close()
		},
	})
}

var Module = fx.Module("db",
	fx.Provide(ProvideStore),
	fx.Invoke(registerHooks),
)
