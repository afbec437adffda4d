// JSTREAM is a personal media discovery server: it browses an external
// metadata catalog, tracks favorites and watch progress per user, and
// hands playback to an external embed provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kayushan/JSTREAM/internal/api"
	"github.com/Kayushan/JSTREAM/internal/config"
	"github.com/Kayushan/JSTREAM/internal/database"
	"github.com/Kayushan/JSTREAM/internal/events"
	"github.com/Kayushan/JSTREAM/internal/logger"
	"github.com/Kayushan/JSTREAM/internal/scheduler"
	"github.com/Kayushan/JSTREAM/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "jstream: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Logging)
	defer appLogger.Close()
	log := appLogger.Logger

	log.Info().Str("address", cfg.Server.Address()).Msg("JSTREAM starting")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	hub := events.NewHub(log)
	go hub.Run()

	server, err := api.NewServer(db.Conn(), hub, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx := context.Background()
	if err := server.UserService().EnsureDefaultAccount(ctx, cfg.Auth.DefaultEmail, cfg.Auth.DefaultPassword); err != nil {
		return fmt.Errorf("failed to seed default account: %w", err)
	}

	sched, err := scheduler.New(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := scheduler.RegisterMaintenanceTasks(sched, server.UserService(), server.ProgressStore(), server.PreviewStore()); err != nil {
		return fmt.Errorf("failed to register maintenance tasks: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	server.SetScheduler(sched)

	if distFS, err := web.DistFS(); err == nil {
		server.RegisterFrontend(distFS)
	} else {
		log.Warn().Err(err).Msg("frontend assets unavailable, serving API only")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}

	log.Info().Msg("shutdown complete")
	return nil
}
