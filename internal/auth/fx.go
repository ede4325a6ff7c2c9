package auth

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/auth/repository"
	"github.com/smallbiznis/livescan/internal/auth/service"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
