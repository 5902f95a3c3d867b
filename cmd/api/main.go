package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/arena-backend/internal/config"
	"github.com/shinyyama/arena-backend/internal/db"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/repository/memory"
	"github.com/shinyyama/arena-backend/internal/scheduler"
	"github.com/shinyyama/arena-backend/internal/server"
	"github.com/shinyyama/arena-backend/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	images, closeImages, err := storage.NewGCSImageStore(ctx, cfg.StorageBucket)
	if err != nil {
		return err
	}
	defer closeImages()

	srv := server.New(cfg, store, images)

	sched, err := scheduler.New(cfg.SchedulerInterval, srv.Tournaments())
	if err != nil {
		return err
	}
	sched.Start()

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Store).Str("git_sha", cfg.GitSHA).Msg("starting server")
		errCh <- srv.Start(addr)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("http shutdown")
	}
	if serr := sched.Shutdown(); serr != nil {
		log.Error().Err(serr).Msg("scheduler shutdown")
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return nil, nil, fmt.Errorf("auto migrate: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("sql db: %w", err)
	}
	return repository.NewStore(conn, cfg.DBQueryTimeout), func() { _ = sqlDB.Close() }, nil
}
