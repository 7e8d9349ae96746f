package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wichananm65/inventory-dashboard/internal/branch"
	"github.com/wichananm65/inventory-dashboard/internal/comparison"
	"github.com/wichananm65/inventory-dashboard/internal/config"
	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/overview"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
	"github.com/wichananm65/inventory-dashboard/internal/server"
	"github.com/wichananm65/inventory-dashboard/internal/snapshot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	client := inventoryapi.NewClient(inventoryapi.Options{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Upstream.Timeout,
		RateLimit: cfg.Upstream.RateLimit,
		Burst:     cfg.Upstream.Burst,
	})

	var snapshots snapshot.Repository = snapshot.NewInMemoryRepository(cfg.Recommendation.HistorySize)
	if cfg.Database.URL != "" {
		db := mustOpenDB(cfg.Database.URL)
		defer db.Close()

		repo := snapshot.NewPostgresRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			logging.Fatal().Err(err).Msg("failed to prepare snapshot table")
		}
		cancel()
		snapshots = repo
		logging.Info().Msg("storing comparison snapshots in postgres")
	}

	defaults := reportquery.Defaults{
		WindowDays:  cfg.Recommendation.WindowDays,
		HorizonDays: cfg.Recommendation.HorizonDays,
	}

	comparisonService := comparison.NewService(client, snapshots, comparison.Options{
		TTEWindowDays:    cfg.Recommendation.TTEWindowDays,
		ExpiryWindowDays: cfg.Recommendation.ExpiryWindowDays,
	})
	comparisonHandler := comparison.NewHandler(comparisonService, defaults, cfg.Recommendation.HistorySize)
	branchHandler := branch.NewHandler(branch.NewService(client))
	overviewHandler := overview.NewHandler(overview.NewService(client), defaults)

	app := server.New(server.Config{
		JWTSecret:   cfg.Server.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, comparisonHandler, branchHandler, overviewHandler)

	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Str("upstream", cfg.Upstream.BaseURL).Msg("starting dashboard gateway")
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logging.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to reach database")
	}

	return db
}
