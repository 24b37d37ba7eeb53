package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

// Default deadlines per execution environment.
const (
	DefaultLocalDeadline       = 60 * time.Second
	DefaultConstrainedDeadline = 280 * time.Second
)

// ErrTimeout is returned when the scrape loses the race against the deadline.
// Classify keys on the "Timeout" prefix.
var ErrTimeout = errors.New("Timeout: La búsqueda tomó demasiado tiempo") //nolint:staticcheck // user-facing text

// Environment distinguishes constrained hosting from a local run. It is
// resolved once at startup and never changes afterwards.
type Environment int

// Execution environments.
const (
	EnvironmentLocal Environment = iota
	EnvironmentConstrained
)

// EnvironmentFrom maps the startup flag onto an Environment.
func EnvironmentFrom(constrained bool) Environment {
	if constrained {
		return EnvironmentConstrained
	}
	return EnvironmentLocal
}

// Constrained reports whether the process runs on time-limited hosting.
func (e Environment) Constrained() bool {
	return e == EnvironmentConstrained
}

func (e Environment) String() string {
	if e.Constrained() {
		return "constrained"
	}
	return "local"
}

// Deadlines holds the race deadline per environment. Zero values fall back
// to the defaults.
type Deadlines struct {
	Local       time.Duration
	Constrained time.Duration
}

// For returns the deadline that applies to env.
func (d Deadlines) For(env Environment) time.Duration {
	if env.Constrained() {
		if d.Constrained > 0 {
			return d.Constrained
		}
		return DefaultConstrainedDeadline
	}
	if d.Local > 0 {
		return d.Local
	}
	return DefaultLocalDeadline
}

// Runner executes one bounded scrape.
type Runner interface {
	Run(ctx context.Context, term string, env Environment) ([]jobs.Listing, error)
}

// Governor races a Scraper against a deadline.
type Governor struct {
	scraper   jobs.Scraper
	deadlines Deadlines
	logger    *zap.Logger
}

// NewGovernor constructs a Governor.
func NewGovernor(scraper jobs.Scraper, deadlines Deadlines, logger *zap.Logger) *Governor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{
		scraper:   scraper,
		deadlines: deadlines,
		logger:    logger,
	}
}

type scrapeResult struct {
	listings []jobs.Listing
	err      error
}

// Run starts the scrape and waits for whichever settles first: the scrape,
// the deadline, or ctx. Only the scrape's own outcome is returned unchanged.
// The scrape runs on a context detached from ctx and is never cancelled by
// Run; when it loses, its late result is logged and dropped.
func (g *Governor) Run(ctx context.Context, term string, env Environment) ([]jobs.Listing, error) {
	deadline := g.deadlines.For(env)
	results := make(chan scrapeResult, 1)
	scrapeCtx := context.WithoutCancel(ctx)
	started := time.Now()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				results <- scrapeResult{err: fmt.Errorf("scrape panicked: %v", rec)}
			}
		}()
		listings, err := g.scraper.Scrape(scrapeCtx, term, env.Constrained())
		results <- scrapeResult{listings: listings, err: err}
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.listings, res.err
	case <-timer.C:
		g.logger.Warn("search deadline elapsed",
			zap.String("term", term),
			zap.Stringer("environment", env),
			zap.Duration("deadline", deadline),
		)
		go g.discard(results, term, started)
		return nil, ErrTimeout
	case <-ctx.Done():
		go g.discard(results, term, started)
		return nil, fmt.Errorf("search abandoned: %w", ctx.Err())
	}
}

func (g *Governor) discard(results <-chan scrapeResult, term string, started time.Time) {
	res := <-results
	g.logger.Info("late scrape result discarded",
		zap.String("term", term),
		zap.Int("listings", len(res.listings)),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(res.err),
	)
}
