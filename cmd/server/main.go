package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mineduel/mineduel-server/internal/app"
	"github.com/mineduel/mineduel-server/internal/config"
	"github.com/mineduel/mineduel-server/internal/logging"
	"github.com/mineduel/mineduel-server/migrations"
)

func main() {
	cfg, err := config.NewApp()
	if err != nil {
		logrus.Fatal("unable to read app config: ", err)
	}

	log, err := logging.New(cfg)
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := app.New(log, cfg, migrations.FS).Start(ctx); err != nil {
		log.Fatal("exit reason: ", err)
	}
}
