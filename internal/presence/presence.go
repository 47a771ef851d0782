// Package presence normalizes the inconsistent presence signals a driver
// record may carry into a single online/offline availability value.
package presence

import (
	"time"

	"github.com/BahodirovaS/take4admin/internal/models"
)

type Availability string

const (
	Online  Availability = "online"
	Offline Availability = "offline"
)

// Signals is the subset of a driver record that carries presence
// information. Any field may be absent.
type Signals struct {
	LastOnlineAt  *time.Time
	LastOfflineAt *time.Time
	Online        *bool
}

// Resolve derives availability from heterogeneous presence signals.
// The policy is ordered, first match wins:
//  1. both transition timestamps present: the later one wins, equal
//     instants resolve to online
//  2. only a last-online timestamp: online
//  3. only a last-offline timestamp: offline
//  4. a boolean flag: true -> online, false -> offline
//  5. default offline
//
// Timestamps outrank the boolean flag. Earlier revisions of the admin
// trusted only the boolean; the timestamp-first hybrid is canonical now.
func Resolve(s Signals) Availability {
	switch {
	case s.LastOnlineAt != nil && s.LastOfflineAt != nil:
		if s.LastOfflineAt.After(*s.LastOnlineAt) {
			return Offline
		}
		return Online
	case s.LastOnlineAt != nil:
		return Online
	case s.LastOfflineAt != nil:
		return Offline
	case s.Online != nil:
		if *s.Online {
			return Online
		}
		return Offline
	default:
		return Offline
	}
}

// StatusOnline reports whether a free-text driver status counts as online.
// Anything other than the explicit offline status does.
func StatusOnline(status string) bool {
	return status != "" && status != models.StatusOffline
}

// FromDriver extracts presence signals from a stored driver record.
// The free-text status is folded into the boolean slot so pure
// relational deployments still resolve sensibly.
func FromDriver(d models.Driver) Signals {
	s := Signals{
		LastOnlineAt:  d.LastOnlineAt,
		LastOfflineAt: d.LastOfflineAt,
	}
	if d.Status != "" {
		online := StatusOnline(d.Status)
		s.Online = &online
	}
	return s
}

// LastSeen coalesces the differently-named timestamp fields on a driver
// record into one "last seen" instant. The accessor order is explicit and
// fixed: ping beats transition stamps, which beat the record audit columns.
func LastSeen(d models.Driver) *time.Time {
	accessors := []*time.Time{
		d.LastPingAt,
		d.LastOnlineAt,
		d.LastOfflineAt,
	}
	for _, ts := range accessors {
		if ts != nil {
			return ts
		}
	}
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		return &t
	}
	if !d.CreatedAt.IsZero() {
		t := d.CreatedAt
		return &t
	}
	return nil
}
