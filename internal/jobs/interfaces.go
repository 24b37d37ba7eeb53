package jobs

import (
	"context"
	"io"
	"time"
)

// Scraper runs a full search against the listing site. Implementations
// persist the export artifacts as a side effect of a successful run.
type Scraper interface {
	Scrape(ctx context.Context, term string, constrained bool) ([]Listing, error)
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// BlobStore writes artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// Hasher computes digests for artifact integrity.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces search IDs.
type IDGenerator interface {
	NewID() (string, error)
}
