package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/BahodirovaS/take4admin/internal/auth"
	"github.com/BahodirovaS/take4admin/internal/config"
	"github.com/BahodirovaS/take4admin/internal/fare"
	"github.com/BahodirovaS/take4admin/internal/httpapi"
	"github.com/BahodirovaS/take4admin/internal/ingest"
	"github.com/BahodirovaS/take4admin/internal/live"
	"github.com/BahodirovaS/take4admin/internal/logging"
	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/presence"
	"github.com/BahodirovaS/take4admin/internal/storage"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set; all admin endpoints will reject every request")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		drivers storage.DriverStore
		pricing storage.PricingStore
	)
	if cfg.PGDSN != "" {
		pg, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres connect", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if cfg.RunMigrations {
			if err := applyMigrations(pg.DB(), logger); err != nil {
				logger.Error("migrations", "error", err)
				os.Exit(1)
			}
		}
		drivers, pricing = pg, pg
	} else {
		logger.Warn("PG_DSN not set, using in-memory store")
		mem := storage.NewMemoryStore()
		// same values the pricing migration seeds
		mem.SeedPricing(models.PricingConfig{BasePrice: 2.50, PerMileRate: 1.75, PerMinuteRate: 0.35, MinimumPrice: 7.00, FixedPickupTime: 5})
		drivers, pricing = mem, mem
	}

	var liveMirror *presence.RedisLive
	if cfg.RedisAddr != "" {
		liveMirror = presence.NewRedisLive(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisLiveKey)
		defer liveMirror.Close()
	}

	var producer *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}

	api := httpapi.NewServer(httpapi.Deps{
		Logger:   logger,
		Gate:     auth.NewTokenGate(cfg.AdminToken),
		Drivers:  drivers,
		Pricing:  pricing,
		Live:     liveMirror,
		Kafka:    producer,
		Watchers: live.NewRegistry(logger),
		Trip:     fare.ExampleTrip{Miles: cfg.ExampleTripMiles, Minutes: cfg.ExampleTripMinutes},
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("fleet admin listening", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}

// applyMigrations runs every .sql file in migrations/ in name order.
// One-shot, no version table; the statements are written to be rerunnable.
func applyMigrations(db *sql.DB, logger *slog.Logger) error {
	files, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(b)); err != nil {
			return err
		}
		logger.Info("migration applied", "file", f)
	}
	return nil
}
