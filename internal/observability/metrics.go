package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

const namespace = "pearls"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	overlayRefresh    *prometheus.CounterVec
	overlayRefreshDur prometheus.Histogram
	overlayAge        prometheus.Gauge
	overlayVersion    prometheus.Gauge
	overlayRecords    *prometheus.GaugeVec

	resolveDuration prometheus.Histogram
	resolveThreads  *prometheus.GaugeVec
	resolveCache    *prometheus.CounterVec

	mutations     *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
	corpusThreads prometheus.Gauge

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

// Init builds the process-wide metrics once. It returns nil when metrics are
// disabled; every method on a nil *Metrics is a no-op.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New(prometheus.NewRegistry())
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New registers every collector on reg. Tests pass a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		overlayRefresh: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "refresh_total",
			Help: "Overlay refetches by trigger/status.",
		}, []string{"trigger", "status"}),
		overlayRefreshDur: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "refresh_duration_seconds",
			Help:    "Overlay refetch duration in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		overlayAge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "snapshot_age_seconds",
			Help: "Age of the served overlay snapshot.",
		}),
		overlayVersion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "snapshot_version",
			Help: "Version of the served overlay snapshot.",
		}),
		overlayRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "records",
			Help: "Overlay records in the current snapshot by kind.",
		}, []string{"kind"}),
		resolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "duration_seconds",
			Help:    "Resolution duration in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		resolveThreads: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "threads",
			Help: "Threads per outcome in the last resolution.",
		}, []string{"outcome"}),
		resolveCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "resolver", Name: "cache_total",
			Help: "Resolution cache lookups by result.",
		}, []string{"result"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "mutations_total",
			Help: "Mutation commands by command/outcome.",
		}, []string{"command", "outcome"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter by route.",
		}, []string{"route"}),
		corpusThreads: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "corpus", Name: "threads",
			Help: "Threads in the loaded corpus.",
		}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_up",
			Help: "Redis connectivity (1=up, 0=down).",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_ping_seconds",
			Help: "Redis ping latency in seconds.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveOverlayRefresh(trigger string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.overlayRefresh.WithLabelValues(trigger, status).Inc()
	m.overlayRefreshDur.Observe(dur.Seconds())
}

func (m *Metrics) SetOverlaySnapshot(version uint64, deletions, edits int, age time.Duration) {
	if m == nil {
		return
	}
	m.overlayVersion.Set(float64(version))
	m.overlayAge.Set(age.Seconds())
	m.overlayRecords.WithLabelValues("deletion").Set(float64(deletions))
	m.overlayRecords.WithLabelValues("edit").Set(float64(edits))
}

func (m *Metrics) ObserveResolve(dur time.Duration, resolved, evaporated, deleted int) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(dur.Seconds())
	m.resolveThreads.WithLabelValues("resolved").Set(float64(resolved))
	m.resolveThreads.WithLabelValues("evaporated").Set(float64(evaporated))
	m.resolveThreads.WithLabelValues("deleted").Set(float64(deleted))
}

func (m *Metrics) IncResolveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.resolveCache.WithLabelValues("hit").Inc()
		return
	}
	m.resolveCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) IncMutation(command, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) SetCorpusThreads(n int) {
	if m == nil {
		return
	}
	m.corpusThreads.Set(float64(n))
}

// RegisterDBStats exports database/sql pool stats for the gorm connection.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB, name string) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, name)); err != nil && log != nil {
		log.Warn("metrics: db stats register failed", "error", err)
	}
}

// StartRedisCollector pings rdb on the scrape interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
