package migration

import (
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/config"
	"github.com/smallbiznis/livescan/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// SQL migrations target postgres. Other dialects (sqlite in local
		// setups and tests) rely on gorm AutoMigrate instead.
		if strings.EqualFold(conn.Dialector.Name(), "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := seed.AutoMigrate(conn); err != nil {
				return err
			}
			log.Info("schema auto-migrated", zap.String("dialect", conn.Dialector.Name()))
		}

		return seed.EnsureAdminUser(conn, cfg)
	}),
)
