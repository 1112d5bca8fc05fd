package discovery

import (
	"context"

	"github.com/coptimize/openinventory/internal/discovery/domain"
	"github.com/coptimize/openinventory/internal/discovery/repository"
	"github.com/coptimize/openinventory/internal/discovery/service"
	"go.uber.org/fx"
)

func registerHooks(lc fx.Lifecycle, s *service.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Resume(ctx)
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}

var Module = fx.Module("discovery.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Scheduler) domain.Service { return s }),
	fx.Invoke(registerHooks),
)
