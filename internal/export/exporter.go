// Package export renders scraped listings into the four downloadable
// artifacts and persists them through a BlobStore.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/occ-vacantes/internal/artifact"
	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

// Artifact describes one persisted export.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	URI         string `json:"uri"`
	Size        int    `json:"size"`
	SHA256      string `json:"sha256"`
	content     []byte
}

// Content returns the rendered bytes.
func (a Artifact) Content() []byte {
	return a.content
}

// Manifest lists the artifacts written for one search.
type Manifest struct {
	Term        string     `json:"term"`
	Count       int        `json:"count"`
	GeneratedAt time.Time  `json:"generated_at"`
	Artifacts   []Artifact `json:"artifacts"`
}

type renderFunc func(listings []jobs.Listing, meta Meta) ([]byte, error)

// Meta is the context rendered into document headers.
type Meta struct {
	Term        string
	GeneratedAt time.Time
}

// Exporter renders and stores artifacts.
type Exporter struct {
	store   jobs.BlobStore
	hasher  jobs.Hasher
	clock   jobs.Clock
	logger  *zap.Logger
	renders map[string]renderFunc
}

// New constructs an Exporter writing through store.
func New(store jobs.BlobStore, hasher jobs.Hasher, clock jobs.Clock, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		store:  store,
		hasher: hasher,
		clock:  clock,
		logger: logger,
		renders: map[string]renderFunc{
			artifact.JSON.Name: renderJSON,
			artifact.CSV.Name:  renderCSV,
			artifact.XLSX.Name: renderXLSX,
			artifact.PDF.Name:  renderPDF,
		},
	}
}

// Export renders every artifact kind concurrently and writes them to the
// store. Any render or write failure fails the whole export.
func (e *Exporter) Export(ctx context.Context, term string, listings []jobs.Listing) (Manifest, error) {
	meta := Meta{Term: term, GeneratedAt: e.clock.Now()}
	kinds := artifact.Kinds()
	out := make([]Artifact, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			a, err := e.write(gctx, kind, listings, meta)
			if err != nil {
				return fmt.Errorf("export %s: %w", kind.Name, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	e.logger.Info("artifacts exported",
		zap.String("term", term),
		zap.Int("listings", len(listings)),
		zap.Int("artifacts", len(out)),
	)
	return Manifest{Term: term, Count: len(listings), GeneratedAt: meta.GeneratedAt, Artifacts: out}, nil
}

func (e *Exporter) write(ctx context.Context, kind artifact.Kind, listings []jobs.Listing, meta Meta) (Artifact, error) {
	render, ok := e.renders[kind.Name]
	if !ok {
		return Artifact{}, fmt.Errorf("no renderer")
	}
	data, err := render(listings, meta)
	if err != nil {
		return Artifact{}, err
	}
	sum, err := e.hasher.Hash(data)
	if err != nil {
		return Artifact{}, fmt.Errorf("hash: %w", err)
	}
	uri, err := e.store.PutObject(ctx, kind.Name, kind.ContentType, bytes.NewReader(data))
	if err != nil {
		return Artifact{}, fmt.Errorf("store: %w", err)
	}
	return Artifact{
		Name:        kind.Name,
		ContentType: kind.ContentType,
		URI:         uri,
		Size:        len(data),
		SHA256:      sum,
		content:     data,
	}, nil
}
