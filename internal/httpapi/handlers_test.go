package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BahodirovaS/take4admin/internal/auth"
	"github.com/BahodirovaS/take4admin/internal/fare"
	"github.com/BahodirovaS/take4admin/internal/live"
	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/storage"
)

const testToken = "test-token"

func newTestServer(store *storage.MemoryStore) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(Deps{
		Logger:   logger,
		Gate:     auth.NewTokenGate(testToken),
		Drivers:  store,
		Pricing:  store,
		Watchers: live.NewRegistry(logger),
		Trip:     fare.ExampleTrip{Miles: 3.2, Minutes: 12},
	})
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(adminTokenHeader, token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestPingRejectsMissingDriverID(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)

	w := doJSON(t, srv, "POST", "/api/drivers/ping", "", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if drivers, _ := store.ListDrivers(context.Background()); len(drivers) != 0 {
		t.Fatalf("no record should be written, got %d", len(drivers))
	}
}

func TestPingUpsertsAndDefaultsOffline(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)

	w := doJSON(t, srv, "POST", "/api/drivers/ping", "", map[string]any{
		"driverId": "d1", "name": "Ada", "lat": 40.1, "lng": -74.2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	d, ok := store.Get("d1")
	if !ok {
		t.Fatal("driver not stored")
	}
	if d.Status != models.StatusOffline {
		t.Fatalf("status = %q, want default offline", d.Status)
	}
	if d.LastPingAt == nil {
		t.Fatal("last_ping_at not set")
	}
	if d.Name == nil || *d.Name != "Ada" {
		t.Fatalf("name = %v", d.Name)
	}
}

func TestPingIdempotentFullReplace(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)

	first := map[string]any{"driverId": "d1", "name": "Ada", "email": "ada@example.com", "status": "available"}
	second := map[string]any{"driverId": "d1", "status": "available"}
	doJSON(t, srv, "POST", "/api/drivers/ping", "", first)
	doJSON(t, srv, "POST", "/api/drivers/ping", "", second)
	doJSON(t, srv, "POST", "/api/drivers/ping", "", second)

	drivers, _ := store.ListDrivers(context.Background())
	if len(drivers) != 1 {
		t.Fatalf("expected one record, got %d", len(drivers))
	}
	d := drivers[0]
	// second payload wins outright, no merge with the first
	if d.Name != nil || d.Email != nil {
		t.Fatalf("profile should match last payload, got name=%v email=%v", d.Name, d.Email)
	}
	if d.Status != "available" {
		t.Fatalf("status = %q", d.Status)
	}
}

func TestAdminDriversOrderingAndAvailability(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)

	doJSON(t, srv, "POST", "/api/drivers/ping", "", map[string]any{"driverId": "A", "status": "available"})
	time.Sleep(2 * time.Millisecond)
	doJSON(t, srv, "POST", "/api/drivers/ping", "", map[string]any{"driverId": "B", "status": "offline"})

	w := doJSON(t, srv, "GET", "/api/admin/drivers", testToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Drivers []models.DriverView `json:"drivers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(resp.Drivers))
	}
	if resp.Drivers[0].DriverID != "B" || resp.Drivers[1].DriverID != "A" {
		t.Fatalf("want B before A, got %s then %s", resp.Drivers[0].DriverID, resp.Drivers[1].DriverID)
	}
	if resp.Drivers[1].Availability != "online" {
		t.Fatalf("A pinged available, want online, got %s", resp.Drivers[1].Availability)
	}
	if resp.Drivers[0].Availability != "offline" {
		t.Fatalf("B pinged offline, got %s", resp.Drivers[0].Availability)
	}
	if resp.Drivers[0].LastSeenAt == nil {
		t.Fatal("last_seen_at missing")
	}
}

func TestAdminDriversRequiresToken(t *testing.T) {
	srv := newTestServer(storage.NewMemoryStore())

	for _, token := range []string{"", "wrong"} {
		w := doJSON(t, srv, "GET", "/api/admin/drivers", token, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: status = %d, want 401", token, w.Code)
		}
	}
}

func TestDriverPatchValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)
	doJSON(t, srv, "POST", "/api/drivers/ping", "", map[string]any{"driverId": "d1"})

	cases := []struct {
		name string
		body any
		want int
	}{
		{"missing driverId", map[string]any{"isActive": true}, http.StatusBadRequest},
		{"missing isActive", map[string]any{"driverId": "d1"}, http.StatusBadRequest},
		{"non-boolean isActive", map[string]any{"driverId": "d1", "isActive": "yes"}, http.StatusBadRequest},
		{"unknown driver folded to store error", map[string]any{"driverId": "ghost", "isActive": true}, http.StatusInternalServerError},
		{"ok", map[string]any{"driverId": "d1", "isActive": false}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, srv, "PATCH", "/api/admin/drivers", testToken, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}

	d, _ := store.Get("d1")
	if d.IsActive {
		t.Fatal("is_active should be false after the ok case")
	}
}

func TestPricingUpdateUnauthorizedLeavesStoreUntouched(t *testing.T) {
	store := storage.NewMemoryStore()
	seed := models.PricingConfig{BasePrice: 5, PerMileRate: 2, PerMinuteRate: 0.5, MinimumPrice: 12, FixedPickupTime: 5}
	store.SeedPricing(seed)
	srv := newTestServer(store)

	body := models.PricingConfig{BasePrice: 99}
	for _, token := range []string{"", "wrong"} {
		w := doJSON(t, srv, "PUT", "/api/admin/pricing", token, body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: status = %d, want 401", token, w.Code)
		}
	}
	got, _ := store.CurrentPricing(context.Background())
	if got != seed {
		t.Fatalf("pricing changed despite 401: %+v", got)
	}
}

func TestPricingRoundTripWithPreview(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(store)

	cfg := models.PricingConfig{BasePrice: 5, PerMileRate: 2, PerMinuteRate: 0.5, MinimumPrice: 12, FixedPickupTime: 5}
	w := doJSON(t, srv, "PUT", "/api/admin/pricing", testToken, cfg)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/pricing/current", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", w.Code, w.Body.String())
	}
	var resp pricingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PricingConfig != cfg {
		t.Fatalf("round trip mismatch: %+v", resp.PricingConfig)
	}
	want := cfg.BasePrice + cfg.PerMileRate*3.2 + cfg.PerMinuteRate*12 // 17.4, above the floor
	if math.Abs(resp.Preview.Total-want) > 1e-9 {
		t.Fatalf("preview total = %v, want %v", resp.Preview.Total, want)
	}
}

func TestPricingCurrentMissingSingleton(t *testing.T) {
	srv := newTestServer(storage.NewMemoryStore())

	w := doJSON(t, srv, "GET", "/api/pricing/current", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != storage.ErrNoPricing.Error() {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestStreamRequiresToken(t *testing.T) {
	srv := newTestServer(storage.NewMemoryStore())

	w := doJSON(t, srv, "GET", "/api/admin/stream?token=wrong", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
