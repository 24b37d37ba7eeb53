// Package app builds and holds the long-lived services of the search service,
// acting as its dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/api"
	"github.com/JakeFAU/occ-vacantes/internal/artifact"
	"github.com/JakeFAU/occ-vacantes/internal/clock/system"
	"github.com/JakeFAU/occ-vacantes/internal/config"
	"github.com/JakeFAU/occ-vacantes/internal/export"
	collyfetcher "github.com/JakeFAU/occ-vacantes/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/occ-vacantes/internal/fetcher/headless"
	"github.com/JakeFAU/occ-vacantes/internal/geocode"
	"github.com/JakeFAU/occ-vacantes/internal/hash/sha256"
	"github.com/JakeFAU/occ-vacantes/internal/headless/detector"
	"github.com/JakeFAU/occ-vacantes/internal/id/uuid"
	"github.com/JakeFAU/occ-vacantes/internal/metrics"
	"github.com/JakeFAU/occ-vacantes/internal/policy/ratelimit"
	"github.com/JakeFAU/occ-vacantes/internal/publisher/pubsub"
	"github.com/JakeFAU/occ-vacantes/internal/scrape"
	"github.com/JakeFAU/occ-vacantes/internal/search"
	"github.com/JakeFAU/occ-vacantes/internal/storage/gcs"
	"github.com/JakeFAU/occ-vacantes/internal/storage/local"
	"github.com/JakeFAU/occ-vacantes/internal/storage/postgres"
	"github.com/JakeFAU/occ-vacantes/internal/telemetry"
)

type closer struct {
	name  string
	close func() error
}

// App holds the services shared by the CLI commands.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	orchestrator *search.Orchestrator
	server       *api.Server
	closers      []closer
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Search runs one orchestrated search.
func (a *App) Search(ctx context.Context, term string) search.Outcome {
	return a.orchestrator.Handle(ctx, search.Request{SearchTerm: term})
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// New wires every service from cfg. Optional backends (GCS mirror, Postgres
// audit, Pub/Sub) are only dialed when configured; a configured backend that
// cannot be reached fails startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}
	env := cfg.ExecutionEnvironment()
	logger.Info("initializing services", zap.Stringer("environment", env))

	metrics.Init()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Tracing.ServiceName, cfg.Tracing.SampleRatio)
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		a.addCloser("tracing", func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return tp.Shutdown(shutdownCtx)
		})
	}

	store, err := local.New(local.Config{BaseDir: cfg.Artifacts.Dir})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	clock := system.New()
	ids := uuid.New()

	selectors, err := scrape.DefaultSelectors().WithOverrides(cfg.Scraper.Selectors)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("scraper.selectors: %w", err)
	}

	deps := scrape.Deps{
		Probe: collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.Scraper.UserAgent,
			RespectRobots: cfg.Scraper.RespectRobots,
			Timeout:       time.Duration(cfg.Scraper.RequestTimeoutSeconds) * time.Second,
		}),
		Detector: detector.NewHeuristic(cfg.Scraper.Headless.PromotionThreshold, selectors.Card),
		Limiter:  ratelimit.New(ratelimit.Config{RPS: cfg.Scraper.RatePerSecond, Burst: cfg.Scraper.Burst}),
		Exporter: export.New(store, sha256.New(), clock, logger.Named("export")),
		IDs:      ids,
	}

	if cfg.Scraper.Headless.Enabled {
		browser, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Scraper.Headless.MaxParallel,
			UserAgent:         cfg.Scraper.UserAgent,
			NavigationTimeout: time.Duration(cfg.Scraper.Headless.NavTimeoutSeconds) * time.Second,
			WaitSelector:      cfg.Scraper.Headless.WaitSelector,
			Constrained:       env.Constrained(),
		})
		if err != nil {
			logger.Warn("headless fetcher init failed", zap.Error(err))
		} else {
			deps.Headless = browser
			a.addCloser("chromedp", func() error { browser.Close(); return nil })
		}
	}

	if err := a.wireOptional(ctx, &deps); err != nil {
		_ = a.Close()
		return nil, err
	}

	pipeline, err := scrape.New(scrape.Config{
		BaseURL:             cfg.Scraper.BaseURL,
		MaxPages:            cfg.Scraper.MaxPages,
		ConstrainedMaxPages: cfg.Scraper.ConstrainedMaxPages,
		Selectors:           selectors,
		Headers:             http.Header{"Accept-Language": {"es-MX,es;q=0.9"}},
	}, deps, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("scrape pipeline: %w", err)
	}

	var recorder search.Recorder
	if cfg.DB.DSN != "" {
		rec, err := a.dialRecorder(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		recorder = rec
	}

	governor := search.NewGovernor(pipeline, cfg.Deadlines(), logger)
	a.orchestrator = search.NewOrchestrator(governor, env, recorder, ids, clock, logger)

	if cfg.Geocode.APIKey == "" {
		logger.Warn("geocode.api_key is empty; /geocode will relay upstream rejections")
	}
	geocoder := geocode.New(geocode.Config{
		BaseURL:      cfg.Geocode.BaseURL,
		APIKey:       cfg.Geocode.APIKey,
		CountryCodes: cfg.Geocode.CountryCodes,
		UserAgent:    cfg.Geocode.UserAgent,
		Timeout:      time.Duration(cfg.Geocode.TimeoutSeconds) * time.Second,
	}, nil)

	a.server = api.NewServer(a.orchestrator, artifact.NewGateway(store.Dir()), geocoder, cfg, logger)
	logger.Info("services initialized",
		zap.String("artifacts_dir", store.Dir()),
		zap.Duration("deadline", cfg.Deadlines().For(env)),
		zap.Bool("headless", deps.Headless != nil),
		zap.Bool("mirror", deps.Mirror != nil),
		zap.Bool("publisher", deps.Publisher != nil),
		zap.Bool("audit", recorder != nil),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)
	return a, nil
}

func (a *App) wireOptional(ctx context.Context, deps *scrape.Deps) error {
	if bucket := a.cfg.Storage.GCSBucket; bucket != "" {
		mirror, err := gcs.Dial(ctx, gcs.Config{Bucket: bucket, Prefix: a.cfg.Storage.Prefix})
		if err != nil {
			return fmt.Errorf("gcs mirror: %w", err)
		}
		deps.Mirror = mirror
		a.addCloser("gcs", mirror.Close)
	}
	if a.cfg.PubSub.TopicName != "" {
		publisher, err := pubsub.Dial(ctx, a.cfg.PubSub.ProjectID, a.cfg.PubSub.TopicName)
		if err != nil {
			return fmt.Errorf("pubsub publisher: %w", err)
		}
		deps.Publisher = publisher
		a.addCloser("pubsub", publisher.Close)
	}
	return nil
}

func (a *App) dialRecorder(ctx context.Context) (*postgres.SearchStore, error) {
	store, err := postgres.NewSearchStore(ctx, postgres.SearchStoreConfig{
		DSN:      a.cfg.DB.DSN,
		Table:    a.cfg.DB.Table,
		MaxConns: int32(a.cfg.DB.MaxConns), // #nosec G115 -- small configured pool size.
	})
	if err != nil {
		return nil, fmt.Errorf("search audit store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("search audit schema: %w", err)
	}
	a.addCloser("postgres", func() error { store.Close(); return nil })
	return store, nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// Close releases services in reverse construction order. It is safe to call
// more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close failed", zap.String("service", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
