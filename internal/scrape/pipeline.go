package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/export"
	"github.com/JakeFAU/occ-vacantes/internal/jobs"
	"github.com/JakeFAU/occ-vacantes/internal/metrics"
	"github.com/JakeFAU/occ-vacantes/internal/telemetry"
)

// Config controls pagination and parsing.
type Config struct {
	BaseURL             string
	MaxPages            int
	ConstrainedMaxPages int
	Selectors           Selectors
	Headers             http.Header
}

// Promoter decides whether a static response needs the headless browser.
type Promoter interface {
	ShouldPromote(resp jobs.FetchResponse) bool
}

// Limiter paces requests per host.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Exporter renders and persists the artifacts.
type Exporter interface {
	Export(ctx context.Context, term string, listings []jobs.Listing) (export.Manifest, error)
}

// Notification is published after a successful export.
type Notification struct {
	SearchID  string            `json:"search_id"`
	Term      string            `json:"term"`
	Count     int               `json:"count"`
	Artifacts []export.Artifact `json:"artifacts"`
}

// Deps are the collaborators of a Pipeline. Headless, Detector, Limiter,
// Mirror and Publisher are optional.
type Deps struct {
	Probe     jobs.Fetcher
	Headless  jobs.Fetcher
	Detector  Promoter
	Limiter   Limiter
	Exporter  Exporter
	Mirror    jobs.BlobStore
	Publisher jobs.Publisher
	IDs       jobs.IDGenerator
}

// Pipeline implements jobs.Scraper.
type Pipeline struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
}

// New constructs a Pipeline.
func New(cfg Config, deps Deps, logger *zap.Logger) (*Pipeline, error) {
	if deps.Probe == nil {
		return nil, fmt.Errorf("probe fetcher is required")
	}
	if deps.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if deps.IDs == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if cfg.Selectors.Card == "" {
		cfg.Selectors = DefaultSelectors()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: logger.Named("scrape")}, nil
}

func (p *Pipeline) maxPages(constrained bool) int {
	if constrained && p.cfg.ConstrainedMaxPages > 0 {
		return p.cfg.ConstrainedMaxPages
	}
	return p.cfg.MaxPages
}

// Scrape collects every listing for term and, when there is at least one,
// writes the export artifacts. A failure on the first page fails the scrape;
// later page failures end pagination with what was gathered so far.
func (p *Pipeline) Scrape(ctx context.Context, term string, constrained bool) ([]jobs.Listing, error) {
	seen := make(map[string]struct{})
	var all []jobs.Listing

	for page := 1; page <= p.maxPages(constrained); page++ {
		pageURL, err := ListingURL(p.cfg.BaseURL, term, page)
		if err != nil {
			return nil, err
		}
		listings, err := p.scrapePage(ctx, pageURL, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			p.logger.Warn("stopping pagination after page error",
				zap.Int("page", page), zap.String("url", pageURL), zap.Error(err))
			break
		}

		added := 0
		for _, l := range listings {
			key := l.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, l)
			added++
		}
		p.logger.Debug("page scraped",
			zap.Int("page", page), zap.Int("cards", len(listings)), zap.Int("new", added))
		if added == 0 {
			break
		}
	}

	metrics.ObserveListings(len(all))
	if len(all) == 0 {
		return nil, nil
	}

	manifest, err := p.deps.Exporter.Export(ctx, term, all)
	if err != nil {
		return nil, fmt.Errorf("export artifacts: %w", err)
	}
	p.announce(ctx, term, manifest)
	return all, nil
}

func (p *Pipeline) scrapePage(ctx context.Context, pageURL string, page int) (_ []jobs.Listing, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "scrape.page",
		trace.WithAttributes(attribute.Int("page", page), attribute.String("url.full", pageURL)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "page failed")
		}
		span.End()
	}()

	if p.deps.Limiter != nil {
		if err := p.deps.Limiter.Wait(ctx, pageURL); err != nil {
			return nil, err
		}
	}
	resp, err := p.fetch(ctx, jobs.FetchRequest{URL: pageURL, Headers: p.cfg.Headers})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("fetch.mode", resp.Mode()), attribute.Int("http.status_code", resp.StatusCode))
	listings, err := ParseListings(resp.Body, resp.URL, page, p.cfg.Selectors)
	if err != nil {
		metrics.ObserveScrapePage(resp.Mode(), "parse_error")
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	metrics.ObserveScrapePage(resp.Mode(), "ok")
	span.SetAttributes(attribute.Int("listings", len(listings)))
	return listings, nil
}

// fetch probes statically and falls back to the headless browser when the
// probe fails or the detector asks for promotion.
func (p *Pipeline) fetch(ctx context.Context, req jobs.FetchRequest) (jobs.FetchResponse, error) {
	resp, err := p.deps.Probe.Fetch(ctx, req)
	if err != nil {
		metrics.ObserveScrapePage("static", "error")
	}
	if p.deps.Headless == nil {
		if err != nil {
			return jobs.FetchResponse{}, fmt.Errorf("fetch %s: %w", req.URL, err)
		}
		return resp, nil
	}
	if err == nil && (p.deps.Detector == nil || !p.deps.Detector.ShouldPromote(resp)) {
		return resp, nil
	}

	p.logger.Debug("promoting to headless", zap.String("url", req.URL), zap.NamedError("probe_error", err))
	req.UseHeadless = true
	rendered, herr := p.deps.Headless.Fetch(ctx, req)
	if herr != nil {
		metrics.ObserveScrapePage("headless", "error")
		if err == nil {
			p.logger.Warn("headless render failed, using static body",
				zap.String("url", req.URL), zap.Error(herr))
			return resp, nil
		}
		return jobs.FetchResponse{}, fmt.Errorf("fetch %s: %w", req.URL, herr)
	}
	return rendered, nil
}

func (p *Pipeline) announce(ctx context.Context, term string, manifest export.Manifest) {
	searchID, err := p.deps.IDs.NewID()
	if err != nil {
		p.logger.Warn("search id generation failed", zap.Error(err))
		return
	}

	artifacts := manifest.Artifacts
	if p.deps.Mirror != nil {
		artifacts = p.mirror(ctx, searchID, manifest.Artifacts)
	}
	if p.deps.Publisher == nil {
		return
	}
	msgID, err := p.deps.Publisher.Publish(ctx, Notification{
		SearchID:  searchID,
		Term:      term,
		Count:     manifest.Count,
		Artifacts: artifacts,
	})
	if err != nil {
		p.logger.Warn("completion notification failed", zap.String("search_id", searchID), zap.Error(err))
		return
	}
	p.logger.Info("completion notification published",
		zap.String("search_id", searchID), zap.String("message_id", msgID))
}

// mirror copies each artifact and returns the manifest entries rewritten to
// the mirrored URIs. Entries that fail to upload keep their local URI.
func (p *Pipeline) mirror(ctx context.Context, searchID string, artifacts []export.Artifact) []export.Artifact {
	out := make([]export.Artifact, len(artifacts))
	copy(out, artifacts)
	for i, a := range out {
		uri, err := p.deps.Mirror.PutObject(ctx, searchID+"/"+a.Name, a.ContentType, bytes.NewReader(a.Content()))
		if err != nil {
			p.logger.Warn("artifact mirror failed",
				zap.String("search_id", searchID), zap.String("artifact", a.Name), zap.Error(err))
			continue
		}
		out[i].URI = uri
	}
	return out
}
