package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"logistics-scheduler-service/internal/config"
	"logistics-scheduler-service/internal/di"
)

// main is the application composition root.
// It loads configuration, wires adapters behind ports and serves HTTP until
// SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := di.InitServer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	logger := server.Logger

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.HTTP.Addr).Msg("server listening")
		if err := server.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.HTTP.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	logger.Info().Msg("gracefully stopped")
}
