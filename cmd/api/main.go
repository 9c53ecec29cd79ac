// Package main is the entry point for the gameshelf API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gameshelf/gameshelf/internal/cache"
	"github.com/gameshelf/gameshelf/internal/config"
	"github.com/gameshelf/gameshelf/internal/database"
	"github.com/gameshelf/gameshelf/internal/handlers"
	"github.com/gameshelf/gameshelf/internal/repository"
	"github.com/gameshelf/gameshelf/internal/server"
	"github.com/gameshelf/gameshelf/internal/services"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.App.LogLevel).With("service", "gameshelf", "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(cfg, log)

	if cfg.CacheEnabled() {
		redisClient, err := cache.Dial(ctx, &cfg.Redis)
		if err != nil {
			// The store alone still serves every request.
			log.Warn("redis unavailable, game cache disabled", "error", err.Error())
		} else {
			defer redisClient.Close()
			gameCache := cache.NewGameCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
			repo = repository.NewCachedGameRepository(repo, gameCache, cfg.Cache.TTL)
			srv.AddOptionalReadinessCheck("cache", gameCache.Ping)
			log.Info("game cache enabled", "ttl", cfg.Cache.TTL.String())
		}
	}

	srv.SetGameRepository(repo)
	srv.SetGameHandler(handlers.NewGameHandler(services.NewGameService(repo), log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured game store and returns a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.GameRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		m, err := database.NewMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		repo := repository.NewMongoGameRepository(m.Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = m.Close(context.Background())
			return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		log.Info("connected to mongo", "database", m.DatabaseName(), "collection", cfg.Mongo.Collection)
		return repo, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				log.Error("failed to close mongo", "error", err.Error())
			}
		}, nil

	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, &cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pool.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		log.Info("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.DBName)
		return repository.NewPostgresGameRepository(pool), pool.Close, nil

	case config.DriverMemory:
		log.Warn("using in-memory game store; data is lost on exit")
		return repository.NewMemoryGameRepository(), func() {}, nil

	default:
		return nil, nil, errors.New("unknown storage driver: " + cfg.Storage.Driver)
	}
}
