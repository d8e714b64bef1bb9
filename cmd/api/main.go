package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ctein-nexus/nexus-backend/config"
	"github.com/ctein-nexus/nexus-backend/internal/auth"
	authmw "github.com/ctein-nexus/nexus-backend/internal/auth/middleware"
	"github.com/ctein-nexus/nexus-backend/internal/bootstrap"
	"github.com/ctein-nexus/nexus-backend/internal/projects/service"
	"github.com/ctein-nexus/nexus-backend/internal/storage/postgres"
	"github.com/ctein-nexus/nexus-backend/internal/sweeper"
)

const serviceName = "nexus-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := bootstrap.NewLogger("", "info", serviceName)
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := bootstrap.NewLogger(cfg.App.Environment, cfg.App.LogLevel, serviceName)
	bootstrap.SetGinMode(cfg.App.Environment)
	ctx := log.WithContext(context.Background())

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open pgx pool")
	}
	defer pool.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; continuing without cache and orphan queue")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	blobs, err := bootstrap.NewBlobGateway(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("init blob storage")
	}

	var verifier authmw.TokenVerifier
	if !cfg.Auth.DevBypass {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatal().Err(err).Msg("init firebase")
		}
		verifier = client
	}

	var orphans service.OrphanRecorder
	var sweep *sweeper.Sweeper
	if redisClient != nil {
		queue := sweeper.NewQueue(redisClient)
		orphans = queue
		if cfg.Sweeper.Enabled {
			sweep = sweeper.New(queue, blobs, log)
			if err := sweep.Start(cfg.Sweeper.Schedule); err != nil {
				log.Fatal().Err(err).Msg("start sweeper")
			}
			defer sweep.Stop()
		}
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Logger:      log,
		SQL:         db,
		Pool:        pool,
		Redis:       redisClient,
		Blobs:       blobs,
		Verifier:    verifier,
		Orphans:     orphans,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server exiting")
}
