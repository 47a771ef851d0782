package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BahodirovaS/take4admin/internal/auth"
	"github.com/BahodirovaS/take4admin/internal/fare"
	"github.com/BahodirovaS/take4admin/internal/ingest"
	"github.com/BahodirovaS/take4admin/internal/live"
	"github.com/BahodirovaS/take4admin/internal/presence"
	"github.com/BahodirovaS/take4admin/internal/storage"
)

// adminTokenHeader carries the shared admin secret on gated routes.
const adminTokenHeader = "x-admin-token"

// Deps are the collaborators a Server needs. Stores and the gate are
// required; Live, Kafka, and Watchers are optional and skipped when nil.
type Deps struct {
	Logger   *slog.Logger
	Gate     auth.Gate
	Drivers  storage.DriverStore
	Pricing  storage.PricingStore
	Live     *presence.RedisLive
	Kafka    *ingest.KafkaProducer
	Watchers *live.Registry
	Trip     fare.ExampleTrip
}

type Server struct {
	logger   *slog.Logger
	gate     auth.Gate
	drivers  storage.DriverStore
	pricing  storage.PricingStore
	live     *presence.RedisLive
	kafka    *ingest.KafkaProducer
	watchers *live.Registry
	trip     fare.ExampleTrip
	mux      *mux.Router
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:   logger,
		gate:     deps.Gate,
		drivers:  deps.Drivers,
		pricing:  deps.Pricing,
		live:     deps.Live,
		kafka:    deps.Kafka,
		watchers: deps.Watchers,
		trip:     deps.Trip,
		mux:      mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/drivers/ping", s.handleDriverPing).Methods("POST")
	s.mux.HandleFunc("/api/admin/drivers", s.handleAdminDrivers).Methods("GET")
	s.mux.HandleFunc("/api/admin/drivers", s.handleAdminDriverPatch).Methods("PATCH", "PUT")
	s.mux.HandleFunc("/api/admin/pricing", s.handlePricingUpdate).Methods("PUT")
	s.mux.HandleFunc("/api/pricing/current", s.handlePricingCurrent).Methods("GET")
	s.mux.HandleFunc("/api/admin/stream", s.handleAdminStream).Methods("GET")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.PathPrefix("/admin").Handler(dashboardHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
