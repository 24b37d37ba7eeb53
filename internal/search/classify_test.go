package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    Category
	}{
		{name: "timeout", message: "Timeout: La búsqueda tomó demasiado tiempo", want: CategoryTimeout},
		{name: "puppeteer", message: "puppeteer: browser disconnected", want: CategoryBrowser},
		{name: "chromedp", message: "chromedp run: context deadline exceeded", want: CategoryBrowser},
		{name: "memory", message: "out of memory while rendering", want: CategoryResourceExhaustion},
		{name: "generic", message: "colly visit failed: Not Found", want: CategoryGeneric},
		{name: "empty", message: "", want: CategoryGeneric},
		{name: "timeout beats memory", message: "Timeout while allocating memory", want: CategoryTimeout},
		{name: "timeout beats browser", message: "chromedp: Timeout waiting for body", want: CategoryTimeout},
		{name: "browser beats memory", message: "puppeteer ran out of memory", want: CategoryBrowser},
		{name: "case sensitive timeout", message: "timeout waiting", want: CategoryGeneric},
		{name: "case sensitive memory", message: "Memory pressure", want: CategoryGeneric},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	msg := "Timeout and memory and puppeteer"
	first := Classify(msg)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Classify(msg))
	}
}

func TestCategoryUserMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"La búsqueda tomó demasiado tiempo. Intenta con un término más específico.",
		CategoryTimeout.UserMessage("ignored"),
	)
	require.Equal(t, "Error con el navegador. Intenta de nuevo.", CategoryBrowser.UserMessage("ignored"))
	require.Equal(t, "Error de memoria. Intenta con menos resultados.", CategoryResourceExhaustion.UserMessage("x"))
	require.Equal(t, "Error al procesar la búsqueda: boom", CategoryGeneric.UserMessage("boom"))
}

func TestCategoryString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "timeout", CategoryTimeout.String())
	require.Equal(t, "browser", CategoryBrowser.String())
	require.Equal(t, "resource_exhaustion", CategoryResourceExhaustion.String())
	require.Equal(t, "generic", CategoryGeneric.String())
}
