package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

type scrapeFunc func(ctx context.Context, term string, constrained bool) ([]jobs.Listing, error)

func (f scrapeFunc) Scrape(ctx context.Context, term string, constrained bool) ([]jobs.Listing, error) {
	return f(ctx, term, constrained)
}

func listingsOf(n int) []jobs.Listing {
	out := make([]jobs.Listing, n)
	for i := range out {
		out[i] = jobs.Listing{Title: "Vacante", URL: "https://www.occ.com.mx/empleo/oferta/" + string(rune('a'+i))}
	}
	return out
}

func TestDeadlinesDefaults(t *testing.T) {
	t.Parallel()

	var d Deadlines
	require.Equal(t, 280*time.Second, d.For(EnvironmentConstrained))
	require.Equal(t, 60*time.Second, d.For(EnvironmentLocal))

	custom := Deadlines{Local: time.Second, Constrained: 2 * time.Second}
	require.Equal(t, time.Second, custom.For(EnvironmentLocal))
	require.Equal(t, 2*time.Second, custom.For(EnvironmentConstrained))
}

func TestEnvironmentFrom(t *testing.T) {
	t.Parallel()

	require.Equal(t, EnvironmentConstrained, EnvironmentFrom(true))
	require.Equal(t, EnvironmentLocal, EnvironmentFrom(false))
	require.Equal(t, "constrained", EnvironmentConstrained.String())
	require.Equal(t, "local", EnvironmentLocal.String())
}

func TestGovernorReturnsScrapeResult(t *testing.T) {
	t.Parallel()

	var gotConstrained atomic.Bool
	var gotTerm atomic.Value
	scraper := scrapeFunc(func(_ context.Context, term string, constrained bool) ([]jobs.Listing, error) {
		gotTerm.Store(term)
		gotConstrained.Store(constrained)
		return listingsOf(3), nil
	})
	g := NewGovernor(scraper, Deadlines{Constrained: time.Second}, zap.NewNop())

	listings, err := g.Run(context.Background(), "ingeniero", EnvironmentConstrained)
	require.NoError(t, err)
	require.Len(t, listings, 3)
	require.Equal(t, "ingeniero", gotTerm.Load())
	require.True(t, gotConstrained.Load(), "constrained hint must reach the scraper")
}

func TestGovernorPropagatesEarlyFailureUnwrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("out of memory")
	scraper := scrapeFunc(func(context.Context, string, bool) ([]jobs.Listing, error) {
		return nil, boom
	})
	g := NewGovernor(scraper, Deadlines{Local: time.Second}, zap.NewNop())

	_, err := g.Run(context.Background(), "x", EnvironmentLocal)
	require.Same(t, boom, err)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestGovernorTimesOutAtDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	scraper := scrapeFunc(func(context.Context, string, bool) ([]jobs.Listing, error) {
		<-release
		return listingsOf(5), nil
	})
	deadline := 50 * time.Millisecond
	g := NewGovernor(scraper, Deadlines{Local: deadline}, zap.NewNop())

	start := time.Now()
	listings, err := g.Run(context.Background(), "x", EnvironmentLocal)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	require.Nil(t, listings)
	require.GreaterOrEqual(t, elapsed, deadline)
	require.Less(t, elapsed, deadline+time.Second)
	require.Equal(t, CategoryTimeout, Classify(err.Error()))
}

func TestGovernorUsesEnvironmentDeadline(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	scraper := scrapeFunc(func(context.Context, string, bool) ([]jobs.Listing, error) {
		<-block
		return nil, nil
	})
	g := NewGovernor(scraper, Deadlines{Local: 20 * time.Millisecond, Constrained: 200 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	_, err := g.Run(context.Background(), "x", EnvironmentConstrained)
	require.ErrorIs(t, err, ErrTimeout)
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestGovernorDoesNotCancelLosingScrape(t *testing.T) {
	t.Parallel()

	finished := make(chan error, 1)
	scraper := scrapeFunc(func(ctx context.Context, _ string, _ bool) ([]jobs.Listing, error) {
		time.Sleep(80 * time.Millisecond)
		finished <- ctx.Err()
		return listingsOf(1), nil
	})
	g := NewGovernor(scraper, Deadlines{Local: 10 * time.Millisecond}, zap.NewNop())

	_, err := g.Run(context.Background(), "x", EnvironmentLocal)
	require.ErrorIs(t, err, ErrTimeout)

	select {
	case ctxErr := <-finished:
		require.NoError(t, ctxErr, "orphaned scrape must not observe cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("orphaned scrape never completed")
	}
}

func TestGovernorCallerCancellationLeavesScrapeRunning(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	finished := make(chan error, 1)
	scraper := scrapeFunc(func(ctx context.Context, _ string, _ bool) ([]jobs.Listing, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished <- ctx.Err()
		return nil, nil
	})
	g := NewGovernor(scraper, Deadlines{Local: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := g.Run(ctx, "x", EnvironmentLocal)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrTimeout)

	select {
	case ctxErr := <-finished:
		require.NoError(t, ctxErr)
	case <-time.After(2 * time.Second):
		t.Fatal("scrape never completed")
	}
}

func TestGovernorRecoversScrapePanic(t *testing.T) {
	t.Parallel()

	scraper := scrapeFunc(func(context.Context, string, bool) ([]jobs.Listing, error) {
		panic("nil selection")
	})
	g := NewGovernor(scraper, Deadlines{Local: time.Second}, nil)

	_, err := g.Run(context.Background(), "x", EnvironmentLocal)
	require.ErrorContains(t, err, "scrape panicked: nil selection")
}
