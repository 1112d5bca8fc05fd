package user

import (
	"github.com/coptimize/openinventory/internal/user/repository"
	"github.com/coptimize/openinventory/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
