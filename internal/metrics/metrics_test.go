package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}

func TestObserveSearchDefaultsCategory(t *testing.T) {
	before := testutil.ToFloat64(searchesTotal.WithLabelValues("success", "none"))
	ObserveSearch("success", "", 2*time.Second)
	if got := testutil.ToFloat64(searchesTotal.WithLabelValues("success", "none")); got != before+1 {
		t.Fatalf("expected success/none to increment, got %f", got)
	}
}

func TestObserveListingsIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(listingsTotal)
	ObserveListings(0)
	ObserveListings(-3)
	ObserveListings(4)
	if got := testutil.ToFloat64(listingsTotal); got != before+4 {
		t.Fatalf("expected listings to grow by 4, got %f", got-before)
	}
}

func TestObserveArtifactAndGeocode(t *testing.T) {
	ObserveArtifactRequest("resultados.csv", "missing")
	ObserveGeocode("upstream_error")
	if got := testutil.ToFloat64(artifactRequestsTotal.WithLabelValues("resultados.csv", "missing")); got < 1 {
		t.Fatalf("expected artifact counter to be observed, got %f", got)
	}
	if got := testutil.ToFloat64(geocodeRequestsTotal.WithLabelValues("upstream_error")); got < 1 {
		t.Fatalf("expected geocode counter to be observed, got %f", got)
	}
}
