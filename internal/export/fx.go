package export

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/export/repository"
	"github.com/smallbiznis/livescan/internal/export/service"
)

var Module = fx.Module("export.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
