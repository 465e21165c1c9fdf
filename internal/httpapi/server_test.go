package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/signalsfoundry/starfield-simulator/core"
	"github.com/signalsfoundry/starfield-simulator/registry"
)

func testServer(t *testing.T) (*Server, *core.Catalog) {
	t.Helper()
	c, err := core.NewTestPattern(core.TestPatternOptions{Size: 600, Spacing: 200, RA: 15, Dec: 40})
	if err != nil {
		t.Fatalf("NewTestPattern: %v", err)
	}
	reg := registry.New()
	if err := reg.Add("grid", c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return NewServer(reg, nil, nil), c
}

func doGet(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListCatalogs(t *testing.T) {
	srv, c := testServer(t)
	rec := doGet(t, srv.Handler(), "/v1/catalogs")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Catalogs []struct {
			Name  string  `json:"name"`
			Stars int     `json:"stars"`
			Epoch float64 `json:"epoch"`
		} `json:"catalogs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Catalogs) != 1 {
		t.Fatalf("got %d catalogs, want 1", len(body.Catalogs))
	}
	if body.Catalogs[0].Name != "grid" || body.Catalogs[0].Stars != c.Len() {
		t.Errorf("catalog summary = %+v, want name=grid stars=%d", body.Catalogs[0], c.Len())
	}
}

func TestCatalogArrays(t *testing.T) {
	srv, c := testServer(t)
	rec := doGet(t, srv.Handler(), "/v1/catalogs/grid/arrays")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Name        string    `json:"name"`
		Epoch       float64   `json:"epoch"`
		RA          []float64 `json:"ra"`
		Tmag        []float64 `json:"tmag"`
		Lightcurves []string  `json:"lightcurves"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Epoch != c.Epoch {
		t.Errorf("epoch = %g, want %g", body.Epoch, c.Epoch)
	}
	if len(body.RA) != c.Len() || len(body.Tmag) != c.Len() || len(body.Lightcurves) != c.Len() {
		t.Errorf("array lengths = %d/%d/%d, want %d", len(body.RA), len(body.Tmag), len(body.Lightcurves), c.Len())
	}
}

func TestCatalogArraysNotFound(t *testing.T) {
	srv, _ := testServer(t)
	rec := doGet(t, srv.Handler(), "/v1/catalogs/nope/arrays")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCatalogSnapshot(t *testing.T) {
	srv, c := testServer(t)
	rec := doGet(t, srv.Handler(), "/v1/catalogs/grid/snapshot?epoch=2018.0")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var body struct {
		BJD   float64   `json:"bjd"`
		Epoch float64   `json:"epoch"`
		RA    []float64 `json:"ra"`
		Tmag  []float64 `json:"tmag"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Epoch != 2018.0 {
		t.Errorf("epoch = %g, want 2018.0", body.Epoch)
	}
	if body.BJD == 0 {
		t.Error("bjd missing from snapshot response")
	}
	if len(body.RA) != c.Len() {
		t.Errorf("got %d positions, want %d", len(body.RA), c.Len())
	}
}

func TestCatalogSnapshotTimeValidation(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.Handler()

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"neither scale", "/v1/catalogs/grid/snapshot", http.StatusBadRequest},
		{"both scales", "/v1/catalogs/grid/snapshot?bjd=2458300&epoch=2018", http.StatusBadRequest},
		{"bad bjd", "/v1/catalogs/grid/snapshot?bjd=abc", http.StatusBadRequest},
		{"negative exptime", "/v1/catalogs/grid/snapshot?bjd=2458300&exptime=-1", http.StatusBadRequest},
		{"bjd only", "/v1/catalogs/grid/snapshot?bjd=2458300", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGet(t, h, tc.url)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/catalogs", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want %q", got, "req-123")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	srv, _ := testServer(t)
	rec := doGet(t, srv.Handler(), "/v1/catalogs")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("no X-Request-Id generated for request without one")
	}
}
