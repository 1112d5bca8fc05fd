package product

import (
	"github.com/coptimize/openinventory/internal/product/repository"
	"github.com/coptimize/openinventory/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
