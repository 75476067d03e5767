package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/launchpad/app"
	"github.com/dmitrymomot/launchpad/core/config"
	"github.com/dmitrymomot/launchpad/core/logger"
	"github.com/dmitrymomot/launchpad/core/server"
	"github.com/dmitrymomot/launchpad/core/settings"
)

func main() {
	log := logger.New()

	s, err := settings.Resolve(log)
	if err != nil {
		log.Error("refusing to start with invalid configuration", logger.Error(err))
		os.Exit(1)
	}

	var srvCfg server.Config
	if err := config.Load(&srvCfg); err != nil {
		log.Error("invalid server configuration", logger.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(s, log)
	log.Info("starting",
		logger.Provider(string(s.DatabaseProvider)),
		logger.Component("server"),
	)

	srv := server.New(srvCfg, server.WithLogger(log))
	if err := srv.Run(ctx, a.Router()); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
