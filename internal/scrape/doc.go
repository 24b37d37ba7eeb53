// Package scrape implements the OCC listing scrape: it walks the paginated
// keyword results, fetching each page statically and promoting to headless
// Chrome when the static HTML carries no job cards, then exports the
// collected listings and announces the result.
package scrape
