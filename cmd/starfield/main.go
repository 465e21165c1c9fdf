package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/starfield-simulator/core"
	"github.com/signalsfoundry/starfield-simulator/internal/config"
	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/lightcurve"
	"github.com/signalsfoundry/starfield-simulator/survey"
	"github.com/signalsfoundry/starfield-simulator/timeref"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.json", "Path to a JSON scenario file")
	outDir := flag.String("out", "out", "Directory exposure files are written to")
	seed := flag.Int64("seed", 0, "Seed for randomized grid options (0 uses wall clock)")
	startTime := flag.String("start-time", "", "RFC3339 UTC start of the first exposure, overriding the scenario")
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

	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	scenario, err := core.LoadScenario(f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	cache, err := survey.OpenSQLCache(cfg.ConeCachePath())
	if err != nil {
		log.Error(ctx, "failed to open cone cache", logging.String("path", cfg.ConeCachePath()), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer cache.Close()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	opts := scenario.FactoryOptions()
	opts.Searcher = survey.NewClient(cfg.SurveyURL, log)
	opts.Cache = cache
	opts.Resolver = survey.NewSesameResolver(cfg.ResolverURL)
	opts.Rand = rand.New(rand.NewSource(*seed))
	opts.Log = log
	opts.Metrics = collector

	catalog, err := core.MakeCatalog(ctx, opts)
	if err != nil {
		log.Error(ctx, "failed to build catalog", logging.String("name", scenario.Catalog.Name), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "catalog ready",
		logging.String("name", catalog.Name),
		logging.Int("stars", catalog.Len()),
		logging.Float64("epoch", catalog.Epoch),
	)

	if v := scenario.Variability; v != nil {
		catalog.AddLightcurves(core.VariabilityOptions{
			MagMax:   v.MagMax,
			Fraction: v.Fraction,
			Seed:     v.Seed,
			Params:   lightcurve.DefaultParams(),
		})
	}

	seq := scenario.Exposures
	if *startTime != "" {
		bjd, err := startBJD(*startTime)
		if err != nil {
			log.Error(ctx, "invalid -start-time", logging.String("value", *startTime), logging.String("error", err.Error()))
			os.Exit(1)
		}
		seq.StartBJD = bjd
	}
	if seq.StartBJD == 0 {
		seq.StartBJD = timeref.EpochToBJD(catalog.Epoch)
	}
	if seq.Count == 0 {
		seq.Count = 1
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error(ctx, "failed to create output directory", logging.String("dir", *outDir), logging.String("error", err.Error()))
		os.Exit(1)
	}

	proj := &tangentPlane{ra0: meanOf(catalog.RA), dec0: meanOf(catalog.Dec)}
	exptime := seq.ExptimeDays()
	for i, bjd := range seq.ExposureTimes() {
		path := filepath.Join(*outDir, fmt.Sprintf("exposure_%04d.txt", i))
		if err := writeExposure(catalog, proj, path, bjd, exptime); err != nil {
			log.Error(ctx, "failed to write exposure",
				logging.String("path", path),
				logging.Float64("bjd", bjd),
				logging.String("error", err.Error()),
			)
			os.Exit(1)
		}
		log.Info(ctx, "wrote exposure", logging.String("path", path), logging.Float64("bjd", bjd))
	}
}

// startBJD converts an RFC3339 wall-clock instant to a barycentric
// Julian date for the exposure sequence.
func startBJD(value string) (float64, error) {
	start, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, err
	}
	return timeref.BJDFromTime(start.UTC()), nil
}

func writeExposure(c *core.Catalog, proj core.Projector, path string, bjd, exptime float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WriteProjected(f, proj, bjd, exptime); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// tangentPlane is a gnomonic projection onto a plane tangent at
// (ra0, dec0), in degrees on both sides.
type tangentPlane struct {
	ra0, dec0 float64
}

func (p *tangentPlane) Project(ra, dec []float64) ([]float64, []float64, error) {
	const degToRad = math.Pi / 180
	ra0 := p.ra0 * degToRad
	dec0 := p.dec0 * degToRad

	x := make([]float64, len(ra))
	y := make([]float64, len(dec))
	for i := range ra {
		a := ra[i] * degToRad
		d := dec[i] * degToRad
		cosc := math.Sin(dec0)*math.Sin(d) + math.Cos(dec0)*math.Cos(d)*math.Cos(a-ra0)
		if cosc <= 0 {
			return nil, nil, fmt.Errorf("star %d is behind the tangent plane", i)
		}
		x[i] = math.Cos(d) * math.Sin(a-ra0) / cosc / degToRad
		y[i] = (math.Cos(dec0)*math.Sin(d) - math.Sin(dec0)*math.Cos(d)*math.Cos(a-ra0)) / cosc / degToRad
	}
	return x, y, nil
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
