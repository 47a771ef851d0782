package live

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/BahodirovaS/take4admin/internal/models"
)

type fakeConn struct {
	writes int
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.writes++
	if f.fail {
		return errors.New("broken pipe")
	}
	return nil
}

func (f *fakeConn) Close() error { f.closed = true; return nil }

func TestBroadcastReachesAllSessions(t *testing.T) {
	r := NewRegistry(slog.Default())
	a, b := &fakeConn{}, &fakeConn{}
	r.add(a)
	r.add(b)

	r.Broadcast(models.PingEvent{DriverID: "d1"})

	if a.writes != 1 || b.writes != 1 {
		t.Fatalf("expected one write each, got a=%d b=%d", a.writes, b.writes)
	}
}

func TestBroadcastDropsDeadSessions(t *testing.T) {
	r := NewRegistry(slog.Default())
	dead := &fakeConn{fail: true}
	r.add(dead)

	r.Broadcast(models.PingEvent{DriverID: "d1"})

	if !dead.closed {
		t.Fatal("failed session should be closed")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}
