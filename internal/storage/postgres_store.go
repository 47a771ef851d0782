package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/presence"
)

// PostgresStore is the production store for drivers and pricing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

// DB exposes the handle for one-shot migrations at startup.
func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) UpsertFromPing(ctx context.Context, ping models.PingRequest, now time.Time) error {
	var lastOnline, lastOffline sql.NullTime
	if presence.StatusOnline(ping.Status) {
		lastOnline = sql.NullTime{Time: now, Valid: true}
	} else {
		lastOffline = sql.NullTime{Time: now, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO drivers (driver_id, name, email, phone_number, status, last_lat, last_lng,
		                     last_ping_at, last_online_at, last_offline_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $8, $8)
		ON CONFLICT (driver_id) DO UPDATE SET
			name            = EXCLUDED.name,
			email           = EXCLUDED.email,
			phone_number    = EXCLUDED.phone_number,
			status          = EXCLUDED.status,
			last_lat        = EXCLUDED.last_lat,
			last_lng        = EXCLUDED.last_lng,
			last_ping_at    = EXCLUDED.last_ping_at,
			last_online_at  = COALESCE(EXCLUDED.last_online_at, drivers.last_online_at),
			last_offline_at = COALESCE(EXCLUDED.last_offline_at, drivers.last_offline_at),
			updated_at      = EXCLUDED.updated_at`,
		ping.DriverID, ping.Name, ping.Email, ping.PhoneNumber, ping.Status,
		ping.Lat, ping.Lng, now, lastOnline, lastOffline)
	if err != nil {
		return fmt.Errorf("upsert driver %s: %w", ping.DriverID, err)
	}
	return nil
}

func (p *PostgresStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT driver_id, name, email, phone_number, status, is_active, last_lat, last_lng,
		       last_ping_at, last_online_at, last_offline_at, created_at, updated_at
		FROM drivers
		ORDER BY last_ping_at DESC NULLS LAST, driver_id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.DriverID, &d.Name, &d.Email, &d.PhoneNumber, &d.Status, &d.IsActive,
			&d.LastLat, &d.LastLng, &d.LastPingAt, &d.LastOnlineAt, &d.LastOfflineAt,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresStore) SetDriverActive(ctx context.Context, driverID string, active bool, now time.Time) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE drivers SET is_active=$2, updated_at=$3 WHERE driver_id=$1`,
		driverID, active, now)
	if err != nil {
		return fmt.Errorf("set driver active %s: %w", driverID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) CurrentPricing(ctx context.Context) (models.PricingConfig, error) {
	var cfg models.PricingConfig
	err := p.db.QueryRowContext(ctx, `
		SELECT base_price, per_mile_rate, per_minute_rate, minimum_price, fixed_pickup_time_minutes
		FROM pricing_current WHERE id = 1`).
		Scan(&cfg.BasePrice, &cfg.PerMileRate, &cfg.PerMinuteRate, &cfg.MinimumPrice, &cfg.FixedPickupTime)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PricingConfig{}, ErrNoPricing
	}
	if err != nil {
		return models.PricingConfig{}, fmt.Errorf("read pricing: %w", err)
	}
	return cfg, nil
}

func (p *PostgresStore) ReplacePricing(ctx context.Context, cfg models.PricingConfig, now time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE pricing_current SET
			base_price = $1,
			per_mile_rate = $2,
			per_minute_rate = $3,
			minimum_price = $4,
			fixed_pickup_time_minutes = $5,
			updated_at = $6
		WHERE id = 1`,
		cfg.BasePrice, cfg.PerMileRate, cfg.PerMinuteRate, cfg.MinimumPrice, cfg.FixedPickupTime, now)
	if err != nil {
		return fmt.Errorf("replace pricing: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoPricing
	}
	return nil
}
