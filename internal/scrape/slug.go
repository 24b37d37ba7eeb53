package scrape

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug turns a free-text search term into the path segment OCC uses for
// keyword searches: lowercase ASCII words joined by '-'.
func Slug(term string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(term),
	)
	if err != nil {
		folded = strings.ToLower(term)
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}

// ListingURL builds the results URL for term on page (1-based).
func ListingURL(baseURL, term string, page int) (string, error) {
	slug := Slug(term)
	if slug == "" {
		return "", fmt.Errorf("term %q has no searchable characters", term)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/empleos/de-" + slug + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if page > 1 {
		q := u.Query()
		q.Set("page", fmt.Sprint(page))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
