package main

import (
	"context"

	"github.com/ctein-nexus/nexus-backend/config"
	"github.com/ctein-nexus/nexus-backend/internal/bootstrap"
	"github.com/ctein-nexus/nexus-backend/internal/projects/repository"
	"github.com/ctein-nexus/nexus-backend/internal/projects/seed"
	"github.com/ctein-nexus/nexus-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := bootstrap.NewLogger("", "info", "nexus-seed")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := bootstrap.NewLogger(cfg.App.Environment, cfg.App.LogLevel, "nexus-seed")
	ctx := log.WithContext(context.Background())

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	n, err := seed.Run(ctx, repository.NewProductTypeRepository(db))
	if err != nil {
		log.Fatal().Err(err).Msg("seed product types")
	}
	log.Info().Int("product_types", n).Msg("seed completed")
}
