package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/sponsorloop/sponsorloop/internal/clock"
	"github.com/sponsorloop/sponsorloop/internal/config"
	"github.com/sponsorloop/sponsorloop/internal/logger"
	"github.com/sponsorloop/sponsorloop/internal/migration"
	"github.com/sponsorloop/sponsorloop/internal/server"
	"github.com/sponsorloop/sponsorloop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
