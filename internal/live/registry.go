package live

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/BahodirovaS/take4admin/internal/models"
)

// Conn is the subset of a websocket connection the registry needs,
// kept small so tests can use fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// session wraps one dashboard watcher. Writes are serialized because
// gorilla/websocket allows a single concurrent writer.
type session struct {
	conn Conn
	mu   sync.Mutex
}

func (s *session) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// Registry holds the open admin dashboard sessions and fans accepted
// pings out to them.
type Registry struct {
	mu       sync.Mutex
	logger   *slog.Logger
	sessions map[*session]struct{}
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger, sessions: make(map[*session]struct{})}
}

// Add registers a watcher connection.
func (r *Registry) Add(conn *websocket.Conn) { r.add(conn) }

func (r *Registry) add(conn Conn) *session {
	s := &session{conn: conn}
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
	return s
}

// Broadcast pushes one driver update to every watcher. Dead sessions are
// dropped on write failure.
func (r *Registry) Broadcast(v models.PingEvent) {
	r.mu.Lock()
	targets := make([]*session, 0, len(r.sessions))
	for s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	for _, s := range targets {
		if err := s.send(v); err != nil {
			r.logger.Warn("drop dashboard session", "error", err)
			r.remove(s)
		}
	}
}

func (r *Registry) remove(s *session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
	_ = s.conn.Close()
}

// Len reports the number of connected watchers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
