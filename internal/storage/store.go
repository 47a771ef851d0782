package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/presence"
)

var (
	// ErrNotFound is returned when a write targets a driver that does not exist.
	ErrNotFound = errors.New("driver not found")
	// ErrNoPricing is returned when the pricing singleton row is missing.
	ErrNoPricing = errors.New("no pricing configured")
)

// DriverStore defines persistence operations for driver records.
type DriverStore interface {
	// UpsertFromPing performs a full-replace upsert keyed by driver id:
	// profile and position fields are overwritten with the ping's values
	// (NULL when absent), last_ping_at/updated_at refresh to now, and the
	// matching presence transition stamp is recorded. is_active and
	// created_at survive the upsert.
	UpsertFromPing(ctx context.Context, ping models.PingRequest, now time.Time) error
	// ListDrivers returns a snapshot of all drivers, most recent ping first.
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	SetDriverActive(ctx context.Context, driverID string, active bool, now time.Time) error
}

// PricingStore defines persistence operations for the pricing singleton.
type PricingStore interface {
	CurrentPricing(ctx context.Context) (models.PricingConfig, error)
	// ReplacePricing overwrites all five fields, last writer wins.
	ReplacePricing(ctx context.Context, cfg models.PricingConfig, now time.Time) error
}

// MemoryStore backs local runs and tests. It implements both store
// interfaces over plain maps.
type MemoryStore struct {
	mu      sync.RWMutex
	drivers map[string]models.Driver
	pricing *models.PricingConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drivers: make(map[string]models.Driver)}
}

func (m *MemoryStore) UpsertFromPing(ctx context.Context, ping models.PingRequest, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, exists := m.drivers[ping.DriverID]
	if !exists {
		d = models.Driver{DriverID: ping.DriverID, IsActive: true, CreatedAt: now}
	}
	d.Name = ping.Name
	d.Email = ping.Email
	d.PhoneNumber = ping.PhoneNumber
	d.LastLat = ping.Lat
	d.LastLng = ping.Lng
	d.Status = ping.Status
	t := now
	d.LastPingAt = &t
	if presence.StatusOnline(ping.Status) {
		d.LastOnlineAt = &t
	} else {
		d.LastOfflineAt = &t
	}
	d.UpdatedAt = now
	m.drivers[ping.DriverID] = d
	return nil
}

func (m *MemoryStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastPingAt, out[j].LastPingAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out, nil
}

func (m *MemoryStore) SetDriverActive(ctx context.Context, driverID string, active bool, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drivers[driverID]
	if !ok {
		return ErrNotFound
	}
	d.IsActive = active
	d.UpdatedAt = now
	m.drivers[driverID] = d
	return nil
}

func (m *MemoryStore) CurrentPricing(ctx context.Context) (models.PricingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pricing == nil {
		return models.PricingConfig{}, ErrNoPricing
	}
	return *m.pricing, nil
}

func (m *MemoryStore) ReplacePricing(ctx context.Context, cfg models.PricingConfig, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pricing = &cfg
	return nil
}

// SeedPricing installs a pricing row directly, for local runs without a DB.
func (m *MemoryStore) SeedPricing(cfg models.PricingConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pricing = &cfg
}

// Get returns a single driver, for tests.
func (m *MemoryStore) Get(id string) (models.Driver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	return d, ok
}
