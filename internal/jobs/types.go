// Package jobs defines the types shared by the scrape pipeline, the search
// orchestrator, and the export/storage layers.
package jobs

import (
	"net/http"
	"strings"
	"time"
)

// Listing is a single vacancy scraped from an OCC results page.
type Listing struct {
	Title    string `json:"titulo"`
	Company  string `json:"empresa"`
	Salary   string `json:"salario"`
	Location string `json:"ubicacion"`
	Posted   string `json:"fecha"`
	URL      string `json:"url"`
	Page     int    `json:"pagina"`
}

// Key identifies a listing for de-duplication across result pages.
func (l Listing) Key() string {
	if l.URL != "" {
		return l.URL
	}
	return strings.ToLower(l.Title) + "|" + strings.ToLower(l.Company)
}

// FetchRequest captures everything needed to fetch a results page.
type FetchRequest struct {
	URL         string
	UseHeadless bool
	Headers     http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Mode labels how a page was retrieved.
func (r FetchResponse) Mode() string {
	if r.UsedHeadless {
		return "headless"
	}
	return "static"
}
