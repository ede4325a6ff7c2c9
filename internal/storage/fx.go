package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/config"
)

var Module = fx.Module("storage",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, clk clock.Clock, log *zap.Logger) (ObjectStore, error) {
	switch cfg.Storage.Type {
	case "s3":
		store, err := NewS3Store(context.Background(), cfg.Storage)
		if err != nil {
			return nil, err
		}
		log.Info("object storage ready",
			zap.String("type", "s3"),
			zap.String("bucket", cfg.Storage.S3Bucket),
		)
		return store, nil
	case "local", "":
		store, err := NewLocalStore(cfg.Storage, clk)
		if err != nil {
			return nil, err
		}
		log.Info("object storage ready",
			zap.String("type", "local"),
			zap.String("path", cfg.Storage.LocalPath),
		)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}
