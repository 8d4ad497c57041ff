package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/trainingportal/internal/client/cli"
	"github.com/dmitrijs2005/trainingportal/internal/client/config"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel, slog.LevelWarn))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
