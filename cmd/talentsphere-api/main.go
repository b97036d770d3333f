package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/talentsphere/talentsphere/internal/api"
	"github.com/talentsphere/talentsphere/internal/api/handler"
	"github.com/talentsphere/talentsphere/internal/core/ports"
	"github.com/talentsphere/talentsphere/internal/core/service"
	"github.com/talentsphere/talentsphere/internal/infrastructure/config"
	mongodb "github.com/talentsphere/talentsphere/internal/infrastructure/db/mongo"
	redisdb "github.com/talentsphere/talentsphere/internal/infrastructure/db/redis"
	"github.com/talentsphere/talentsphere/internal/infrastructure/llm"
	"github.com/talentsphere/talentsphere/internal/infrastructure/queue"
	"github.com/talentsphere/talentsphere/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           TalentSphere API
// @version         1.0
// @description     Accounts, sessions and company onboarding for TalentSphere.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Output: os.Stderr})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "talentsphere-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "talentsphere-api",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	db := store.DB

	userRepo := mongodb.NewUserRepository(db)
	eventRepo := mongodb.NewEventRepository(db)

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	throttle := redisdb.NewLoginThrottle(redisClient, cfg.Login.MaxFailures, cfg.Login.FailureWindow)

	// Audit workers outlive the HTTP server so in-flight requests can still
	// publish; they are closed and drained once the server has stopped.
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(eventRepo, log), log)
	dispatcher.Start(context.WithoutCancel(ctx))

	authService := service.NewAuthService(userRepo, throttle, dispatcher, cfg.JWTSecret, cfg.TokenTTL, log)

	var parser ports.ResumeParser
	if cfg.Gemini.APIKey != "" {
		model, err := llm.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		parser = service.NewResumeParser(model, log)
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, resume parsing disabled")
	}

	e := api.NewRouter(api.Deps{
		AuthService:  authService,
		ResumeParser: parser,
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(redisClient),
		},
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Close()
	dispatcher.Wait()
	return err
}
