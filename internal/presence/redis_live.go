package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BahodirovaS/take4admin/internal/models"
)

// RedisLive mirrors the most recent ping per driver into Redis: a metadata
// hash plus a GEOADD entry so ops tooling can query positions. It is a
// second, non-authoritative backing store; the admin list overlays it onto
// the relational rows when it is fresher.
type RedisLive struct {
	client *redis.Client
	geoKey string
}

func NewRedisLive(addr, password, geoKey string) *RedisLive {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisLive{client: c, geoKey: geoKey}
}

func (r *RedisLive) Close() error { return r.client.Close() }

// Ping checks connectivity, used by readiness probes.
func (r *RedisLive) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Update records one ping event. The hash keeps the raw signals the
// resolver understands; the geo set keeps the last coordinate.
func (r *RedisLive) Update(ctx context.Context, ev models.PingEvent) error {
	if ev.Lat != nil && ev.Lng != nil {
		if err := r.client.GeoAdd(ctx, r.geoKey, &redis.GeoLocation{
			Longitude: *ev.Lng,
			Latitude:  *ev.Lat,
			Name:      ev.DriverID,
		}).Err(); err != nil {
			return err
		}
	}
	fields := map[string]interface{}{
		"online":       strconv.FormatBool(ev.Online),
		"status":       ev.Status,
		"last_checked": ev.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}
	if ev.Online {
		fields["last_online_at"] = ev.ReceivedAt.UTC().Format(time.RFC3339Nano)
	} else {
		fields["last_offline_at"] = ev.ReceivedAt.UTC().Format(time.RFC3339Nano)
	}
	return r.client.HSet(ctx, liveKey(ev.DriverID), fields).Err()
}

// Signals fetches the live presence signals for one driver. The second
// return is the last_checked instant; ok is false when the driver has no
// live entry or Redis is unreachable, in which case callers fall back to
// the relational row alone.
func (r *RedisLive) Signals(ctx context.Context, driverID string) (Signals, *time.Time, bool) {
	m, err := r.client.HGetAll(ctx, liveKey(driverID)).Result()
	if err != nil || len(m) == 0 {
		return Signals{}, nil, false
	}
	var s Signals
	if ts := parseInstant(m["last_online_at"]); ts != nil {
		s.LastOnlineAt = ts
	}
	if ts := parseInstant(m["last_offline_at"]); ts != nil {
		s.LastOfflineAt = ts
	}
	if v, ok := m["online"]; ok {
		online := v == "true"
		s.Online = &online
	}
	return s, parseInstant(m["last_checked"]), true
}

func parseInstant(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil
	}
	return &t
}

func liveKey(id string) string { return "driver:live:" + id }
