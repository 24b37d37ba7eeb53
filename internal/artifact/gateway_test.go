package artifact

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatewayOpenMissing(t *testing.T) {
	t.Parallel()

	g := NewGateway(t.TempDir())
	for _, kind := range Kinds() {
		_, _, err := g.Open(kind)
		require.ErrorIs(t, err, ErrNotFound, kind.Name)
	}
}

func TestGatewayOpenReturnsBytesUnmodified(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0x0a}
	require.NoError(t, os.WriteFile(filepath.Join(dir, PDF.Name), payload, 0o600))

	f, info, err := NewGateway(dir).Open(PDF)
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, int64(len(payload)), info.Size())
}

func TestGatewayRechecksExistenceEachCall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := NewGateway(dir)

	_, _, err := g.Open(CSV)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, CSV.Name), []byte("a,b\n"), 0o600))
	f, _, err := g.Open(CSV)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, os.Remove(filepath.Join(dir, CSV.Name)))
	_, _, err = g.Open(CSV)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGatewayDirectoryIsNotAnArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, JSON.Name), 0o750))

	_, _, err := NewGateway(dir).Open(JSON)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKindsAndDisposition(t *testing.T) {
	t.Parallel()

	require.Len(t, Kinds(), 4)
	require.False(t, JSON.Attachment)
	for _, k := range []Kind{CSV, XLSX, PDF} {
		require.True(t, k.Attachment, k.Name)
	}
	require.Equal(t, `attachment; filename="resultados.xlsx"`, XLSX.Disposition())
	require.Equal(t, filepath.Join(".", "resultados.csv"), NewGateway("").Path(CSV))
}
