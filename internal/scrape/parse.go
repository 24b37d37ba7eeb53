package scrape

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

// Selectors locate listing fields inside a results page. Field selectors are
// evaluated relative to each card.
type Selectors struct {
	Card     string
	Title    string
	Company  string
	Salary   string
	Location string
	Posted   string
	Link     string
}

// DefaultSelectors match the OCC results markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:     `div[id^="jobcard-"]`,
		Title:    "h2",
		Company:  `a[href*="/empleos/bolsa-de-trabajo-"], span[data-company]`,
		Salary:   `span[class*="salary"], span.mr-2`,
		Location: `p[data-location], div[class*="location"] p`,
		Posted:   "label",
		Link:     `a[href*="/empleo/oferta/"]`,
	}
}

// WithOverrides replaces the selectors named in m (card, title, company,
// salary, location, posted, link). Unknown keys are reported.
func (s Selectors) WithOverrides(m map[string]string) (Selectors, error) {
	for key, value := range m {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(key) {
		case "card":
			s.Card = value
		case "title":
			s.Title = value
		case "company":
			s.Company = value
		case "salary":
			s.Salary = value
		case "location":
			s.Location = value
		case "posted":
			s.Posted = value
		case "link":
			s.Link = value
		default:
			return s, fmt.Errorf("unknown selector %q", key)
		}
	}
	return s, nil
}

// ParseListings extracts the job cards from body. Relative links are resolved
// against pageURL. Cards without a title are skipped.
func ParseListings(body []byte, pageURL string, page int, sel Selectors) ([]jobs.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var out []jobs.Listing
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		title := text(card, sel.Title)
		if title == "" {
			return
		}
		out = append(out, jobs.Listing{
			Title:    title,
			Company:  text(card, sel.Company),
			Salary:   text(card, sel.Salary),
			Location: text(card, sel.Location),
			Posted:   text(card, sel.Posted),
			URL:      link(card, sel.Link, base),
			Page:     page,
		})
	})
	return out, nil
}

func text(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(card.Find(selector).First().Text()), " ")
}

// link resolves the card's offer URL. Cards rendered without an anchor carry
// the offer id in their element id ("jobcard-<id>").
func link(card *goquery.Selection, selector string, base *url.URL) string {
	if selector != "" {
		if href, ok := card.Find(selector).First().Attr("href"); ok {
			if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
				resolved := base.ResolveReference(ref)
				resolved.RawQuery = ""
				resolved.Fragment = ""
				return resolved.String()
			}
		}
	}
	if id, ok := card.Attr("id"); ok {
		if offer := strings.TrimPrefix(id, "jobcard-"); offer != id && offer != "" {
			return base.ResolveReference(&url.URL{Path: "/empleo/oferta/" + offer + "/"}).String()
		}
	}
	return ""
}
