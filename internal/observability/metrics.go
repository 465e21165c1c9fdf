package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CatalogCollector bundles Prometheus metrics for catalog construction
// and the snapshot read path, and provides helpers to wire them into
// HTTP handlers.
type CatalogCollector struct {
	gatherer prometheus.Gatherer

	SurveyQueries     *prometheus.CounterVec
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	StarsDropped      *prometheus.CounterVec
	StarsLoaded       *prometheus.GaugeVec
	SnapshotDurations *prometheus.HistogramVec

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewCatalogCollector registers catalog Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewCatalogCollector(reg prometheus.Registerer) (*CatalogCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_survey_queries_total",
		Help: "Total cone searches issued to the external survey, labeled by catalog and outcome.",
	}, []string{"catalog", "outcome"})
	queries, err := registerCounterVec(reg, queries, "catalog_survey_queries_total")
	if err != nil {
		return nil, err
	}

	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cone_cache_hits_total",
		Help: "Cone cache hits, labeled by catalog.",
	}, []string{"catalog"})
	hits, err = registerCounterVec(reg, hits, "catalog_cone_cache_hits_total")
	if err != nil {
		return nil, err
	}

	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cone_cache_misses_total",
		Help: "Cone cache misses, labeled by catalog.",
	}, []string{"catalog"})
	misses, err = registerCounterVec(reg, misses, "catalog_cone_cache_misses_total")
	if err != nil {
		return nil, err
	}

	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_stars_dropped_total",
		Help: "Stars dropped at construction for lacking a finite magnitude in every band.",
	}, []string{"catalog"})
	dropped, err = registerCounterVec(reg, dropped, "catalog_stars_dropped_total")
	if err != nil {
		return nil, err
	}

	loaded := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_stars_loaded",
		Help: "Stars retained by the most recent load of each catalog.",
	}, []string{"catalog"})
	loaded, err = registerGaugeVec(reg, loaded, "catalog_stars_loaded")
	if err != nil {
		return nil, err
	}

	snapshots := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_duration_seconds",
		Help:    "Catalog snapshot latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"catalog"})
	snapshots, err = registerHistogramVec(reg, snapshots, "catalog_snapshot_duration_seconds")
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "Total handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})
	requests, err = registerCounterVec(reg, requests, "catalog_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
	durations, err = registerHistogramVec(reg, durations, "catalog_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &CatalogCollector{
		gatherer:          gatherer,
		SurveyQueries:     queries,
		CacheHits:         hits,
		CacheMisses:       misses,
		StarsDropped:      dropped,
		StarsLoaded:       loaded,
		SnapshotDurations: snapshots,
		HTTPRequests:      requests,
		HTTPDurations:     durations,
	}, nil
}

// ObserveLoad records the outcome of one catalog load: how many stars
// were kept and how many were dropped for bad photometry.
func (c *CatalogCollector) ObserveLoad(catalog string, kept, dropped int) {
	if c == nil {
		return
	}
	if c.StarsLoaded != nil {
		c.StarsLoaded.WithLabelValues(catalog).Set(float64(kept))
	}
	if c.StarsDropped != nil && dropped > 0 {
		c.StarsDropped.WithLabelValues(catalog).Add(float64(dropped))
	}
}

// ObserveQuery records one survey query attempt.
func (c *CatalogCollector) ObserveQuery(catalog string, err error) {
	if c == nil || c.SurveyQueries == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.SurveyQueries.WithLabelValues(catalog, outcome).Inc()
}

// ObserveCache records a cache lookup result.
func (c *CatalogCollector) ObserveCache(catalog string, hit bool) {
	if c == nil {
		return
	}
	if hit {
		if c.CacheHits != nil {
			c.CacheHits.WithLabelValues(catalog).Inc()
		}
		return
	}
	if c.CacheMisses != nil {
		c.CacheMisses.WithLabelValues(catalog).Inc()
	}
}

// ObserveSnapshot records a snapshot latency sample.
func (c *CatalogCollector) ObserveSnapshot(catalog string, elapsed time.Duration) {
	if c == nil || c.SnapshotDurations == nil {
		return
	}
	c.SnapshotDurations.WithLabelValues(catalog).Observe(elapsed.Seconds())
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations for an HTTP route.
func (c *CatalogCollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c == nil {
			return
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CatalogCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
