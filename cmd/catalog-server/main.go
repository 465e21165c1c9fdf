package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/starfield-simulator/core"
	"github.com/signalsfoundry/starfield-simulator/internal/config"
	"github.com/signalsfoundry/starfield-simulator/internal/httpapi"
	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/lightcurve"
	"github.com/signalsfoundry/starfield-simulator/registry"
	"github.com/signalsfoundry/starfield-simulator/survey"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP address the catalog API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	scenarioPath := flag.String("scenario", "configs/scenario.json", "Path to a JSON scenario describing the catalog to serve")
	seed := flag.Int64("seed", 0, "Seed for randomized grid options (0 uses wall clock)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error(ctx, "failed to parse configuration", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewCatalogCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	reg := registry.New()
	reg.Subscribe(func(ev registry.Event) {
		log.Info(ctx, "catalog registered",
			logging.String("name", ev.Name),
			logging.Int("stars", ev.Stars),
			logging.Float64("epoch", ev.Epoch),
		)
	})

	cache, err := survey.OpenSQLCache(cfg.ConeCachePath())
	if err != nil {
		log.Error(ctx, "failed to open cone cache", logging.String("path", cfg.ConeCachePath()), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer cache.Close()

	if err := loadScenarioCatalog(ctx, reg, cfg, cache, *scenarioPath, *seed, log, collector); err != nil {
		log.Error(ctx, "failed to build catalog", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	api := httpapi.NewServer(reg, log, collector)
	srv := &http.Server{
		Addr:    *addr,
		Handler: api.Handler(),
	}

	log.Info(ctx, "starting catalog API server", logging.String("addr", *addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down catalog server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadScenarioCatalog(
	ctx context.Context,
	reg *registry.Registry,
	cfg config.Config,
	cache survey.Cache,
	path string,
	seed int64,
	log logging.Logger,
	collector *observability.CatalogCollector,
) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	scenario, err := core.LoadScenario(f)
	f.Close()
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := scenario.FactoryOptions()
	opts.Searcher = survey.NewClient(cfg.SurveyURL, log)
	opts.Cache = cache
	opts.Resolver = survey.NewSesameResolver(cfg.ResolverURL)
	opts.Rand = rand.New(rand.NewSource(seed))
	opts.Log = log
	opts.Metrics = collector

	catalog, err := core.MakeCatalog(ctx, opts)
	if err != nil {
		return err
	}

	if v := scenario.Variability; v != nil {
		catalog.AddLightcurves(core.VariabilityOptions{
			MagMax:   v.MagMax,
			Fraction: v.Fraction,
			Seed:     v.Seed,
			Params:   lightcurve.DefaultParams(),
		})
	}

	return reg.Add(catalog.Name, catalog)
}

func serveMetrics(addr string, collector *observability.CatalogCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
