package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/cli"
	"github.com/talentsphere/talentsphere/internal/core/guard"
	"github.com/talentsphere/talentsphere/internal/core/ports"
	"github.com/talentsphere/talentsphere/internal/core/service"
	"github.com/talentsphere/talentsphere/internal/core/session"
	"github.com/talentsphere/talentsphere/internal/infrastructure/authbackend"
	"github.com/talentsphere/talentsphere/internal/infrastructure/db/memory"
	redisdb "github.com/talentsphere/talentsphere/internal/infrastructure/db/redis"
	"github.com/talentsphere/talentsphere/internal/infrastructure/storage/file"
	"github.com/talentsphere/talentsphere/internal/pkg/config"
	"github.com/talentsphere/talentsphere/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitUsage
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "talentsphere",
	})

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to open session storage")
		return cli.ExitFailure
	}
	defer closeStorage()

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up auth backend")
		return cli.ExitFailure
	}

	store := session.New(ctx, backend, storage, log)
	defer store.Close()

	app := &cli.App{
		Session: store,
		Routes:  guard.DefaultRoutes(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     log,
	}
	return app.Run(ctx, os.Args[1:])
}

func openStorage(ctx context.Context, cfg *config.Config) (ports.SnapshotStorage, func(), error) {
	noop := func() {}

	switch cfg.Storage {
	case config.StorageRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, noop, err
		}
		return redisdb.NewSnapshotStorage(client, session.StorageKey), func() { _ = client.Close() }, nil
	case config.StorageMemory:
		return session.NewMemoryStorage(nil), noop, nil
	default:
		path := cfg.File.Path
		if path == "" {
			p, err := file.DefaultPath(session.StorageKey)
			if err != nil {
				return nil, noop, err
			}
			path = p
		}
		return file.New(path), noop, nil
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AuthBackend, error) {
	if cfg.Backend == config.BackendHTTP {
		return authbackend.NewHTTP(cfg.API.URL, &http.Client{Timeout: cfg.API.Timeout}), nil
	}

	// The mock backend lives for one process; tokens it signs are never exposed.
	svc := service.NewAuthService(memory.NewUserRepository(), nil, nil, uuid.NewString(), time.Hour, log)
	local := authbackend.NewLocal(svc, cfg.Mock.Latency, log)
	if cfg.Mock.Seed {
		if err := local.Seed(ctx); err != nil {
			return nil, fmt.Errorf("seed mock accounts: %w", err)
		}
	}
	return local, nil
}
