package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveLoadSetsGaugeAndCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCatalogCollector(reg)
	if err != nil {
		t.Fatalf("NewCatalogCollector: %v", err)
	}

	collector.ObserveLoad("UCAC4", 120, 3)

	if got := testutil.ToFloat64(collector.StarsLoaded.WithLabelValues("UCAC4")); got != 120 {
		t.Fatalf("catalog_stars_loaded = %v, want 120", got)
	}
	if got := testutil.ToFloat64(collector.StarsDropped.WithLabelValues("UCAC4")); got != 3 {
		t.Fatalf("catalog_stars_dropped_total = %v, want 3", got)
	}

	// a later load overwrites the gauge, not the counter
	collector.ObserveLoad("UCAC4", 100, 1)
	if got := testutil.ToFloat64(collector.StarsLoaded.WithLabelValues("UCAC4")); got != 100 {
		t.Fatalf("catalog_stars_loaded after reload = %v, want 100", got)
	}
	if got := testutil.ToFloat64(collector.StarsDropped.WithLabelValues("UCAC4")); got != 4 {
		t.Fatalf("catalog_stars_dropped_total after reload = %v, want 4", got)
	}
}

func TestObserveCacheAndQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCatalogCollector(reg)
	if err != nil {
		t.Fatalf("NewCatalogCollector: %v", err)
	}

	collector.ObserveCache("UCAC4", true)
	collector.ObserveCache("UCAC4", false)
	collector.ObserveQuery("UCAC4", nil)
	collector.ObserveQuery("UCAC4", http.ErrServerClosed)

	if got := testutil.ToFloat64(collector.CacheHits.WithLabelValues("UCAC4")); got != 1 {
		t.Fatalf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CacheMisses.WithLabelValues("UCAC4")); got != 1 {
		t.Fatalf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SurveyQueries.WithLabelValues("UCAC4", "ok")); got != 1 {
		t.Fatalf("queries ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SurveyQueries.WithLabelValues("UCAC4", "error")); got != 1 {
		t.Fatalf("queries error = %v, want 1", got)
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCatalogCollector(reg)
	if err != nil {
		t.Fatalf("NewCatalogCollector: %v", err)
	}

	handler := collector.Middleware("/v1/catalogs", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalogs", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/v1/catalogs", "404")); got != 1 {
		t.Fatalf("catalog_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "catalog_http_request_duration_seconds", map[string]string{
		"route": "/v1/catalogs",
	}); count != 1 {
		t.Fatalf("duration sample_count = %d, want 1", count)
	}
}

func TestSnapshotDurationRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCatalogCollector(reg)
	if err != nil {
		t.Fatalf("NewCatalogCollector: %v", err)
	}

	collector.ObserveSnapshot("testpattern_6to16", 2*time.Millisecond)
	if count := histogramSampleCount(t, reg, "catalog_snapshot_duration_seconds", map[string]string{
		"catalog": "testpattern_6to16",
	}); count != 1 {
		t.Fatalf("snapshot sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCatalogCollector(reg)
	if err != nil {
		t.Fatalf("NewCatalogCollector: %v", err)
	}
	collector.ObserveLoad("UCAC4", 5, 0)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalog_stars_loaded") {
		t.Fatal("exposition missing catalog_stars_loaded")
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != want {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}
