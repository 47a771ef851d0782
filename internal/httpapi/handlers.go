package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BahodirovaS/take4admin/internal/fare"
	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/observability"
	"github.com/BahodirovaS/take4admin/internal/presence"
)

// handleDriverPing accepts a driver heartbeat and upserts the record.
// Unauthenticated: driver clients hold no admin secret.
func (s *Server) handleDriverPing(w http.ResponseWriter, r *http.Request) {
	var ping models.PingRequest
	if err := json.NewDecoder(r.Body).Decode(&ping); err != nil {
		observability.PingsRejected.Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ping.DriverID == "" {
		observability.PingsRejected.Inc()
		writeError(w, http.StatusBadRequest, "driverId is required")
		return
	}
	ping.Normalize()

	now := time.Now().UTC()
	if err := s.drivers.UpsertFromPing(r.Context(), ping, now); err != nil {
		writeStoreError(w, err)
		return
	}

	observability.PingsTotal.Inc()
	online := presence.StatusOnline(ping.Status)
	if online {
		observability.DriversOnline.Inc()
	}

	ev := models.PingEvent{
		DriverID:   ping.DriverID,
		Status:     ping.Status,
		Online:     online,
		Lat:        ping.Lat,
		Lng:        ping.Lng,
		ReceivedAt: now,
	}
	if s.kafka != nil {
		if err := s.kafka.PublishPing(ev); err != nil {
			s.logger.Warn("kafka publish failed", "driver_id", ev.DriverID, "error", err)
		}
	}
	if s.watchers != nil {
		s.watchers.Broadcast(ev)
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleAdminDrivers returns the full driver snapshot for the dashboard,
// each row annotated with derived availability and a coalesced last-seen.
func (s *Server) handleAdminDrivers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	drivers, err := s.drivers.ListDrivers(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]models.DriverView, 0, len(drivers))
	for _, d := range drivers {
		views = append(views, s.driverView(r.Context(), d))
	}
	// most recently seen first, unseen rows at the tail
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].LastSeenAt, views[j].LastSeenAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	writeJSON(w, http.StatusOK, map[string]any{"drivers": views})
}

// driverView merges the relational row with the Redis live mirror when one
// exists. Live fields win field-by-field; the store row is the base.
func (s *Server) driverView(ctx context.Context, d models.Driver) models.DriverView {
	sig := presence.FromDriver(d)
	lastSeen := presence.LastSeen(d)

	if s.live != nil {
		if ls, checked, ok := s.live.Signals(ctx, d.DriverID); ok {
			if ls.LastOnlineAt != nil {
				sig.LastOnlineAt = ls.LastOnlineAt
			}
			if ls.LastOfflineAt != nil {
				sig.LastOfflineAt = ls.LastOfflineAt
			}
			if ls.Online != nil {
				sig.Online = ls.Online
			}
			if checked != nil && (lastSeen == nil || checked.After(*lastSeen)) {
				lastSeen = checked
			}
		}
	}

	return models.DriverView{
		DriverID:     d.DriverID,
		Name:         d.Name,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		Status:       d.Status,
		IsActive:     d.IsActive,
		Availability: string(presence.Resolve(sig)),
		LastLat:      d.LastLat,
		LastLng:      d.LastLng,
		LastPingAt:   d.LastPingAt,
		LastSeenAt:   lastSeen,
	}
}

type driverPatchRequest struct {
	DriverID string `json:"driverId"`
	IsActive *bool  `json:"isActive"`
}

// handleAdminDriverPatch flips the administrative is_active flag.
func (s *Server) handleAdminDriverPatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req driverPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DriverID == "" {
		writeError(w, http.StatusBadRequest, "driverId is required")
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive must be a boolean")
		return
	}

	if err := s.drivers.SetDriverActive(r.Context(), req.DriverID, *req.IsActive, time.Now().UTC()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// handlePricingUpdate overwrites all five pricing fields. No range
// validation: the original accepted and persisted negatives as-is.
func (s *Server) handlePricingUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var cfg models.PricingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.pricing.ReplacePricing(r.Context(), cfg, time.Now().UTC()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type pricingResponse struct {
	models.PricingConfig
	Preview farePreview `json:"preview"`
}

type farePreview struct {
	Total          float64 `json:"total"`
	ExampleMiles   float64 `json:"exampleMiles"`
	ExampleMinutes float64 `json:"exampleMinutes"`
}

// handlePricingCurrent is unauthenticated: rider and driver clients fetch
// it to display fares. The preview block is for the pricing form.
func (s *Server) handlePricingCurrent(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.pricing.CurrentPricing(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pricingResponse{
		PricingConfig: cfg,
		Preview: farePreview{
			Total:          fare.Preview(cfg, s.trip),
			ExampleMiles:   s.trip.Miles,
			ExampleMinutes: s.trip.Minutes,
		},
	})
}

var upgrader = websocket.Upgrader{}

// handleAdminStream upgrades a dashboard connection onto the live ping
// feed. Browsers cannot set headers on websocket dials, so the token may
// also ride in the query string.
func (s *Server) handleAdminStream(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(adminTokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if !s.gate.Allow(token) {
		observability.AdminUnauthorized.Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if s.watchers == nil {
		writeError(w, http.StatusNotFound, "live feed disabled")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upgrade failed")
		return
	}
	s.watchers.Add(conn)
}
