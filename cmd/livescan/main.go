package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/config"
	"github.com/smallbiznis/livescan/internal/migration"
	"github.com/smallbiznis/livescan/internal/observability"
	"github.com/smallbiznis/livescan/internal/server"
	"github.com/smallbiznis/livescan/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		clock.Module,
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
