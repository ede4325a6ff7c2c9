package servicerecord

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/servicerecord/repository"
	"github.com/smallbiznis/livescan/internal/servicerecord/service"
)

var Module = fx.Module("servicerecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
