package artifact

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMissingArtifactIs404(t *testing.T) {
	t.Parallel()

	g := NewGateway(t.TempDir())
	rec := httptest.NewRecorder()
	g.Serve(XLSX, nil)(rec, httptest.NewRequest(http.MethodGet, "/resultados.xlsx", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No hay resultados.xlsx", body["error"])
}

func TestServeStreamsAttachment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := []byte("\uFEFFtitulo,empresa\nDev,ACME\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, CSV.Name), content, 0o600))

	rec := httptest.NewRecorder()
	NewGateway(dir).Serve(CSV, nil)(rec, httptest.NewRequest(http.MethodGet, "/resultados.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resultados.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestServeJSONIsInline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, JSON.Name), []byte(`[]`), 0o600))

	rec := httptest.NewRecorder()
	NewGateway(dir).Serve(JSON, nil)(rec, httptest.NewRequest(http.MethodGet, "/resultados.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "[]", rec.Body.String())
}
