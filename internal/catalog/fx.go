package catalog

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/catalog/repository"
	"github.com/smallbiznis/livescan/internal/catalog/service"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
