package search

import (
	"errors"
	"fmt"
)

// ErrSearchTermRequired is returned for empty or whitespace-only terms.
var ErrSearchTermRequired = errors.New("search term required")

// Request is the inbound search action.
type Request struct {
	SearchTerm string `json:"searchTerm"`
}

// Kind tags which variant of Outcome holds.
type Kind int

// Outcome kinds.
const (
	KindSuccess Kind = iota + 1
	KindEmpty
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindEmpty:
		return "empty"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome summarizes a search for the caller. It never carries the scraped
// records; Count is only meaningful for KindSuccess, Category and RawMessage
// only for KindFailure.
type Outcome struct {
	Kind       Kind
	Count      int
	Category   Category
	RawMessage string
	Err        error
}

// Success builds the outcome for a search that found n > 0 listings.
func Success(n int) Outcome {
	return Outcome{Kind: KindSuccess, Count: n}
}

// Empty builds the outcome for a search that completed with no listings.
func Empty() Outcome {
	return Outcome{Kind: KindEmpty}
}

// Failure classifies err and wraps it in a failed outcome.
func Failure(err error) Outcome {
	msg := err.Error()
	return Outcome{
		Kind:       KindFailure,
		Category:   Classify(msg),
		RawMessage: msg,
		Err:        err,
	}
}

func invalidTerm() Outcome {
	return Outcome{
		Kind:       KindFailure,
		Category:   CategoryGeneric,
		RawMessage: ErrSearchTermRequired.Error(),
		Err:        ErrSearchTermRequired,
	}
}

// OK reports whether the search produced listings.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// CategoryLabel is the category for failures and empty otherwise.
func (o Outcome) CategoryLabel() string {
	if o.Kind != KindFailure {
		return ""
	}
	return o.Category.String()
}

// UserMessage renders the localized text sent back to the client.
func (o Outcome) UserMessage() string {
	switch o.Kind {
	case KindSuccess:
		return fmt.Sprintf("Se encontraron %d vacantes y se generaron los archivos", o.Count)
	case KindEmpty:
		return "No se encontraron vacantes"
	}
	if errors.Is(o.Err, ErrSearchTermRequired) {
		return "Término de búsqueda requerido"
	}
	return o.Category.UserMessage(o.RawMessage)
}
