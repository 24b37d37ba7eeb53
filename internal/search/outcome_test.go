package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutcomeUserMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Se encontraron 12 vacantes y se generaron los archivos", Success(12).UserMessage())
	require.Equal(t, "No se encontraron vacantes", Empty().UserMessage())
	require.Equal(t, "Término de búsqueda requerido", invalidTerm().UserMessage())
	require.Equal(t,
		"La búsqueda tomó demasiado tiempo. Intenta con un término más específico.",
		Failure(ErrTimeout).UserMessage(),
	)
	require.Equal(t, "Error al procesar la búsqueda: parse page 1: bad html", Failure(errors.New("parse page 1: bad html")).UserMessage())
}

func TestFailureKeepsOriginalMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetch page: %w", errors.New("chromedp run: net::ERR_NAME_NOT_RESOLVED"))
	out := Failure(err)
	require.Equal(t, KindFailure, out.Kind)
	require.Equal(t, CategoryBrowser, out.Category)
	require.Equal(t, err.Error(), out.RawMessage)
	require.ErrorIs(t, out.Err, err)
	require.False(t, out.OK())
	require.Equal(t, "browser", out.CategoryLabel())
}

func TestInvalidTermIsGenericFailure(t *testing.T) {
	t.Parallel()

	out := invalidTerm()
	require.Equal(t, KindFailure, out.Kind)
	require.Equal(t, CategoryGeneric, out.Category)
	require.Equal(t, "search term required", out.RawMessage)
	require.ErrorIs(t, out.Err, ErrSearchTermRequired)
}

func TestOutcomeKinds(t *testing.T) {
	t.Parallel()

	require.True(t, Success(1).OK())
	require.Empty(t, Success(1).CategoryLabel())
	require.False(t, Empty().OK())
	require.Equal(t, "success", KindSuccess.String())
	require.Equal(t, "empty", KindEmpty.String())
	require.Equal(t, "failure", KindFailure.String())
	require.Equal(t, "unknown", Kind(0).String())
}
