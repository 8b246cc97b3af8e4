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

	"github.com/Jooy-edu/jooy-auth/internal/api"
	"github.com/Jooy-edu/jooy-auth/internal/infrastructure/config"
	mongorepo "github.com/Jooy-edu/jooy-auth/internal/infrastructure/db/mongo"
	redisrepo "github.com/Jooy-edu/jooy-auth/internal/infrastructure/db/redis"
	"github.com/Jooy-edu/jooy-auth/internal/infrastructure/queue"
	"github.com/Jooy-edu/jooy-auth/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	mongoClient, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to mongo")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("creating mongo indexes")
	}

	rdb, err := redisrepo.Connect(ctx, redisrepo.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer rdb.Close()

	// Login attempts are written off the request path through a sharded
	// dispatcher so a slow audit sink never delays a login response.
	audit := queue.NewAuditDispatcher(cfg.Auth.AuditWorkers, mongorepo.NewAuditRepository(db), log)
	audit.Start(ctx)

	e := api.NewRouter(api.Deps{
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Logger: log,
		Audit:  audit,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting auth server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
