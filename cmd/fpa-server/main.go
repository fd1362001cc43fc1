// Command fpa-server runs the function point analysis management service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/LVRodrigues/fpa-management/internal/auth"
	"github.com/LVRodrigues/fpa-management/internal/config"
	"github.com/LVRodrigues/fpa-management/internal/httpapi"
	"github.com/LVRodrigues/fpa-management/internal/logging"
	"github.com/LVRodrigues/fpa-management/internal/middleware"
	"github.com/LVRodrigues/fpa-management/internal/platform/migrations"
	"github.com/LVRodrigues/fpa-management/internal/storage"
	"github.com/LVRodrigues/fpa-management/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("fpa-server", "info", "json").WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := logging.New("fpa-server", cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service terminated")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	db, err := sql.Open(cfg.Database.Engine, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.ConnectionsMax)
	db.SetMaxIdleConns(cfg.Database.ConnectionsMin)
	db.SetConnMaxIdleTime(cfg.Database.TimeoutIdle)
	db.SetConnMaxLifetime(cfg.Database.Lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.TimeoutConnect)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		return err
	}

	if err := migrations.Apply(context.Background(), db); err != nil {
		return err
	}
	logger.Info("Database schema is up to date")

	gate := auth.NewGate(auth.NewKeyCache(), cfg.Auth.JWKS, cfg.Auth.Audience, logger)
	api := httpapi.New(storage.NewSessions(db), postgres.New(), gate, logger, cfg.Server.BaseURL())

	handler := middleware.NewTracing(logger).Handler(api)
	handler = middleware.NewCORS(cfg.Server.CORS).Handler(handler)

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]any{"address": server.Addr}).Info("Server listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.WithFields(map[string]any{"signal": sig.String()}).Info("Shutting down")
	}

	ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
