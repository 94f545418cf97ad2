// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/interfaces/http"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
	}).Info("starting")

	application, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.WithError(err).Warn("failed to close connections")
		}
	}()

	server := http.NewServer(cfg, application, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server exited with error")
		return
	}
	log.Info("server shutdown completed")
}
