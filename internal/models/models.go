package models

import "time"

// Driver is the persisted record for one driver, keyed by DriverID.
// Profile fields are pointers because a ping may omit them, and the
// full-replace upsert writes NULL for whatever the client left out.
type Driver struct {
	DriverID      string     `json:"driver_id"`
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	PhoneNumber   *string    `json:"phone_number"`
	Status        string     `json:"status"` // offline, available, on_trip
	IsActive      bool       `json:"is_active"`
	LastLat       *float64   `json:"last_lat"`
	LastLng       *float64   `json:"last_lng"`
	LastPingAt    *time.Time `json:"last_ping_at"`
	LastOnlineAt  *time.Time `json:"last_online_at"`
	LastOfflineAt *time.Time `json:"last_offline_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StatusOffline is the default presence status applied when a ping omits one.
const StatusOffline = "offline"

// PingRequest is the heartbeat body sent by driver clients. Older client
// builds send the phone field camel-cased, so both spellings are accepted.
type PingRequest struct {
	DriverID    string   `json:"driverId"`
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	PhoneNumber *string  `json:"phone_number"`
	PhoneCamel  *string  `json:"phoneNumber"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Status      string   `json:"status"`
}

// Normalize folds legacy field spellings into the canonical ones.
func (p *PingRequest) Normalize() {
	if p.PhoneNumber == nil && p.PhoneCamel != nil {
		p.PhoneNumber = p.PhoneCamel
	}
	p.PhoneCamel = nil
	if p.Status == "" {
		p.Status = StatusOffline
	}
}

// PingEvent is the message published to Kafka for each accepted ping.
type PingEvent struct {
	DriverID   string    `json:"driver_id"`
	Status     string    `json:"status"`
	Online     bool      `json:"online"`
	Lat        *float64  `json:"lat"`
	Lng        *float64  `json:"lng"`
	ReceivedAt time.Time `json:"received_at"`
}

// PricingConfig is the fare-configuration singleton (one row, fixed key).
type PricingConfig struct {
	BasePrice       float64 `json:"basePrice"`
	PerMileRate     float64 `json:"perMileRate"`
	PerMinuteRate   float64 `json:"perMinuteRate"`
	MinimumPrice    float64 `json:"minimumPrice"`
	FixedPickupTime float64 `json:"fixedPickupTime"`
}

// DriverView is one row of the admin drivers list: the stored record
// annotated with derived availability and a coalesced last-seen instant.
type DriverView struct {
	DriverID     string     `json:"driver_id"`
	Name         *string    `json:"name"`
	Email        *string    `json:"email"`
	PhoneNumber  *string    `json:"phone_number"`
	Status       string     `json:"status"`
	IsActive     bool       `json:"is_active"`
	Availability string     `json:"availability"` // online | offline
	LastLat      *float64   `json:"last_lat"`
	LastLng      *float64   `json:"last_lng"`
	LastPingAt   *time.Time `json:"last_ping_at"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
}
