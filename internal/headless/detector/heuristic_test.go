package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/occ-vacantes/internal/jobs"
)

func ok(body string) jobs.FetchResponse {
	return jobs.FetchResponse{StatusCode: 200, Body: []byte(body)}
}

func TestShouldPromoteEmptyBody(t *testing.T) {
	t.Parallel()

	require.True(t, NewHeuristic(100, "").ShouldPromote(ok("")))
}

func TestShouldPromoteSPAMarkers(t *testing.T) {
	t.Parallel()

	require.True(t, NewHeuristic(100, "").ShouldPromote(ok(`<div id="__next"></div>`)))
}

func TestShouldPromoteScriptDensity(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(1000, "")
	require.True(t, h.ShouldPromote(ok(`<html><script>var a=1;</script><p>t</p></html>`)))
	require.True(t, h.ShouldPromote(ok(`<p>x</p><script>never closed`)))
}

func TestShouldPromoteDisabledForNon200(t *testing.T) {
	t.Parallel()

	resp := jobs.FetchResponse{StatusCode: 404, Body: []byte("not found")}
	require.False(t, NewHeuristic(100, "div.card").ShouldPromote(resp))
}

func TestShouldPromotePlainHTML(t *testing.T) {
	t.Parallel()

	body := "<html><body>" + strings.Repeat("<p>vacante</p>", 300) + "</body></html>"
	require.False(t, NewHeuristic(0, "").ShouldPromote(ok(body)))
}

func TestShouldPromoteCardSelector(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, `[id^="jobcard-"]`)
	require.False(t, h.ShouldPromote(ok(`<div id="__next"><div id="jobcard-1">Dev</div></div>`)))
	require.True(t, h.ShouldPromote(ok(`<html><body><p>Cargando...</p></body></html>`)))
}

func TestNewHeuristicDefaultsThreshold(t *testing.T) {
	t.Parallel()

	require.Equal(t, defaultThreshold, NewHeuristic(-5, "").BodyLengthThreshold)
}
