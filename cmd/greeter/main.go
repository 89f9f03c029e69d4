package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"lambda-greeter/internal/config"
	"lambda-greeter/internal/greeting"
	"lambda-greeter/pkg/handler"
	"lambda-greeter/pkg/logger"
)

func main() {
	cfg, err := config.Load()

	log := logger.Get()
	zap.ReplaceGlobals(log)
	defer log.Sync()

	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	fn := greeting.New().Handle

	if cfg.UseLambda() {
		log.Info("Starting in lambda mode", zap.String("environment", cfg.Environment))
		handler.StartLambda(fn)
		return
	}

	service := handler.NewServer(cfg.Addr(), fn, log)

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := service.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Greeter started",
		zap.String("address", cfg.Addr()),
		zap.String("environment", cfg.Environment),
	)

	<-stop

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := service.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
