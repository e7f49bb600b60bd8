package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gymrecord/internal/client/cli"
	"github.com/dmitrijs2005/gymrecord/internal/client/config"
	"github.com/dmitrijs2005/gymrecord/internal/logging"

	_ "modernc.org/sqlite"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
