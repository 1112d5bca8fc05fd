package prefs

import (
	"github.com/coptimize/openinventory/internal/config"
	"go.uber.org/fx"
)

func Provide(cfg config.Config) (*Preferences, error) {
	return Open(cfg.SettingsPath())
}

var Module = fx.Module("prefs",
	fx.Provide(Provide),
)
