// Package httpapi exposes built catalogs over a small read-only HTTP
// surface: listing, static arrays, and time-resolved snapshots.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/registry"
	"github.com/signalsfoundry/starfield-simulator/timeref"
)

// Server wires catalog endpoints onto a mux.
type Server struct {
	registry *registry.Registry
	log      logging.Logger
	metrics  *observability.CatalogCollector
}

// NewServer builds the handler set over the given registry.
func NewServer(reg *registry.Registry, log logging.Logger, metrics *observability.CatalogCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{registry: reg, log: log, metrics: metrics}
}

// Handler returns the routed handler with request-ID logging and metrics
// middleware applied per route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /v1/catalogs", s.route("/v1/catalogs", s.listCatalogs))
	mux.Handle("GET /v1/catalogs/{name}/arrays", s.route("/v1/catalogs/{name}/arrays", s.catalogArrays))
	mux.Handle("GET /v1/catalogs/{name}/snapshot", s.route("/v1/catalogs/{name}/snapshot", s.catalogSnapshot))
	return mux
}

func (s *Server) route(name string, fn http.HandlerFunc) http.Handler {
	return RequestID(s.log, s.metrics.Middleware(name, fn))
}

type catalogSummary struct {
	Name  string  `json:"name"`
	Stars int     `json:"stars"`
	Epoch float64 `json:"epoch"`
}

func (s *Server) listCatalogs(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	out := struct {
		Catalogs []catalogSummary `json:"catalogs"`
	}{Catalogs: make([]catalogSummary, 0, len(names))}

	for _, name := range names {
		c := s.registry.Get(name)
		if c == nil {
			continue
		}
		out.Catalogs = append(out.Catalogs, catalogSummary{
			Name:  name,
			Stars: c.Len(),
			Epoch: c.Epoch,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) catalogArrays(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c := s.registry.Get(name)
	if c == nil {
		writeError(w, http.StatusNotFound, "catalog "+name+" not found")
		return
	}

	ra, dec, tmag, temperature := c.Arrays()
	writeJSON(w, http.StatusOK, struct {
		Name        string    `json:"name"`
		Epoch       float64   `json:"epoch"`
		RA          []float64 `json:"ra"`
		Dec         []float64 `json:"dec"`
		PMRA        []float64 `json:"pmra"`
		PMDec       []float64 `json:"pmdec"`
		Tmag        []float64 `json:"tmag"`
		Temperature []float64 `json:"temperature"`
		Lightcurves []string  `json:"lightcurves"`
	}{
		Name:        name,
		Epoch:       c.Epoch,
		RA:          ra,
		Dec:         dec,
		PMRA:        c.PMRA,
		PMDec:       c.PMDec,
		Tmag:        tmag,
		Temperature: temperature,
		Lightcurves: c.LightcurveCodes(),
	})
}

func (s *Server) catalogSnapshot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c := s.registry.Get(name)
	if c == nil {
		writeError(w, http.StatusNotFound, "catalog "+name+" not found")
		return
	}

	q := r.URL.Query()
	bjdStr, epochStr := q.Get("bjd"), q.Get("epoch")
	if (bjdStr == "") == (epochStr == "") {
		writeError(w, http.StatusBadRequest, "give exactly one of bjd or epoch")
		return
	}

	var at timeref.Instant
	if bjdStr != "" {
		bjd, err := strconv.ParseFloat(bjdStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid bjd: "+err.Error())
			return
		}
		at = timeref.AtBJD(bjd)
	} else {
		epoch, err := strconv.ParseFloat(epochStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid epoch: "+err.Error())
			return
		}
		at = timeref.AtEpoch(epoch)
	}

	exptime := 0.0
	if v := q.Get("exptime"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid exptime")
			return
		}
		exptime = parsed
	}

	snap, err := c.Snapshot(at, exptime)
	if err != nil {
		s.log.Error(r.Context(), "snapshot failed",
			logging.String("catalog", name),
			logging.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Name        string    `json:"name"`
		BJD         float64   `json:"bjd"`
		Epoch       float64   `json:"epoch"`
		RA          []float64 `json:"ra"`
		Dec         []float64 `json:"dec"`
		Tmag        []float64 `json:"tmag"`
		Temperature []float64 `json:"temperature"`
	}{
		Name:        name,
		BJD:         snap.BJD,
		Epoch:       snap.Epoch,
		RA:          snap.RA,
		Dec:         snap.Dec,
		Tmag:        snap.Tmag,
		Temperature: snap.Temperature,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
