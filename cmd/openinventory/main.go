package main

import (
	"github.com/coptimize/openinventory/internal/analysis"
	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/config"
	"github.com/coptimize/openinventory/internal/discovery"
	"github.com/coptimize/openinventory/internal/logger"
	"github.com/coptimize/openinventory/internal/metrics"
	"github.com/coptimize/openinventory/internal/migration"
	"github.com/coptimize/openinventory/internal/prefs"
	"github.com/coptimize/openinventory/internal/product"
	"github.com/coptimize/openinventory/internal/server"
	"github.com/coptimize/openinventory/internal/sqlexec"
	"github.com/coptimize/openinventory/internal/user"
	"github.com/coptimize/openinventory/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		prefs.Module,
		db.Module,
		fx.Provide(sqlexec.New),

		// Functional domains
		analysis.Module,
		product.Module,
		user.Module,
		discovery.Module,
		migration.Module,

		server.Module,
	).Run()
}
