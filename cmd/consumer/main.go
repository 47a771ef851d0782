package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/BahodirovaS/take4admin/internal/models"
	"github.com/BahodirovaS/take4admin/internal/presence"
)

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_pings_consumed_total",
		Help: "Total driver ping events consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_pings_invalid_total",
		Help: "Total invalid ping events received",
	})
	liveUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_live_updates_total",
		Help: "Total successful live-mirror updates",
	})
	liveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consumer_live_errors_total",
		Help: "Total live-mirror update failures",
	})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, liveUpdates, liveErrors)
}

func main() {
	// allow some flags for local runs
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	brokersEnv := os.Getenv("KAFKA_BROKERS")
	if brokersEnv == "" {
		brokersEnv = os.Getenv("KAFKA_BROKER")
	}
	brokers := []string{}
	if brokersEnv != "" {
		for _, b := range strings.Split(brokersEnv, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	} else {
		brokers = []string{"localhost:9092"}
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "driver-pings"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "fleet-admin-consumer"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	liveKey := os.Getenv("REDIS_LIVE_KEY")
	if liveKey == "" {
		liveKey = "drivers_live_geo"
	}
	mirror := presence.NewRedisLive(redisAddr, os.Getenv("REDIS_PASSWORD"), liveKey)

	// start metrics and health server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			// readiness: check redis connectivity
			if err := mirror.Ping(r.Context()); err != nil {
				http.Error(w, "redis not ready", 503)
				return
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer func() {
		_ = r.Close()
		_ = mirror.Close()
	}()

	log.Printf("consumer listening topic=%s brokers=%v group=%s", topic, brokers, group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down consumer")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		// reset backoff on success
		backoff = time.Second

		msgsConsumed.Inc()

		var ev models.PingEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.DriverID == "" {
			msgsInvalid.Inc()
			log.Printf("invalid ping event: %v", err)
			continue
		}

		// mirror into Redis with retries and small backoff
		if err := updateLiveWithRetry(ctx, mirror, ev, 3, 200*time.Millisecond); err != nil {
			liveErrors.Inc()
			log.Printf("live update failed for driver=%s: %v", ev.DriverID, err)
			continue
		}
		liveUpdates.Inc()
	}
}

// LiveUpdater is the small subset of the live mirror we need, split out so
// tests can fake it.
type LiveUpdater interface {
	Update(ctx context.Context, ev models.PingEvent) error
}

// updateLiveWithRetry mirrors one ping event with retry and doubling delay.
func updateLiveWithRetry(ctx context.Context, u LiveUpdater, ev models.PingEvent, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = u.Update(ctx, ev); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
