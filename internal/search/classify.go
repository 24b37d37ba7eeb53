package search

import "strings"

// Category is the user-facing class of a failed search.
type Category int

// Failure categories, in classification priority order after Generic.
const (
	CategoryGeneric Category = iota
	CategoryTimeout
	CategoryBrowser
	CategoryResourceExhaustion
)

// browserMarkers identify errors raised by the browser-automation layer.
var browserMarkers = []string{"puppeteer", "chromedp"}

// Classify maps a raw failure message to a Category. Matching is
// case-sensitive and the first rule that matches wins.
func Classify(message string) Category {
	switch {
	case strings.Contains(message, "Timeout"):
		return CategoryTimeout
	case containsAny(message, browserMarkers):
		return CategoryBrowser
	case strings.Contains(message, "memory"):
		return CategoryResourceExhaustion
	default:
		return CategoryGeneric
	}
}

func (c Category) String() string {
	switch c {
	case CategoryTimeout:
		return "timeout"
	case CategoryBrowser:
		return "browser"
	case CategoryResourceExhaustion:
		return "resource_exhaustion"
	default:
		return "generic"
	}
}

// UserMessage renders the localized message shown to the client. Generic
// failures carry the raw message so the user has something to report.
func (c Category) UserMessage(raw string) string {
	switch c {
	case CategoryTimeout:
		return "La búsqueda tomó demasiado tiempo. Intenta con un término más específico."
	case CategoryBrowser:
		return "Error con el navegador. Intenta de nuevo."
	case CategoryResourceExhaustion:
		return "Error de memoria. Intenta con menos resultados."
	default:
		return "Error al procesar la búsqueda: " + raw
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
