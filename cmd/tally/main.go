package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/observability"
	"github.com/tallyhq/tally/internal/server"
	"github.com/tallyhq/tally/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		server.Module,
	).Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return snowflake.NewNode(nodeID)
}
