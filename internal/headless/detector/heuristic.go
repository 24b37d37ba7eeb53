// Package detector decides when a static results page must be re-fetched
// with the headless browser.
package detector

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

const defaultThreshold = 2048

// Heuristic implements a handful of rule-based promotions.
type Heuristic struct {
	BodyLengthThreshold int
	// CardSelector matches one job card. A page without any is treated as a
	// client-rendered shell.
	CardSelector string
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int, cardSelector string) *Heuristic {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	return &Heuristic{BodyLengthThreshold: threshold, CardSelector: cardSelector}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
}

// ShouldPromote decides whether a headless fetch is required.
func (h *Heuristic) ShouldPromote(resp jobs.FetchResponse) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	body := resp.Body
	if len(body) == 0 {
		return true
	}
	if h.CardSelector != "" {
		// Cards in the static HTML are all we need, whatever framework
		// produced them.
		return !hasCards(body, h.CardSelector)
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

func hasCards(body []byte, selector string) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

// scriptDensityHigh reports whether script tags cover at least a quarter of
// the document.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	covered := 0
	for pos := 0; pos < total; {
		rel := strings.Index(lower[pos:], openTag)
		if rel < 0 {
			break
		}
		start := pos + rel
		end := total
		if rel := strings.Index(lower[start:], closeTag); rel >= 0 {
			end = start + rel + len(closeTag)
		}
		covered += end - start
		pos = end
	}
	return covered*100/total >= 25
}
