package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStorePutAndGet(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "b/resultados.csv", "text/csv", bytes.NewReader([]byte("a,b")))
	require.NoError(t, err)
	require.Equal(t, "memory://b/resultados.csv", uri)

	_, err = store.PutObject(context.Background(), "a/resultados.json", "application/json", bytes.NewReader([]byte("[]")))
	require.NoError(t, err)

	obj, ok := store.Get("b/resultados.csv")
	require.True(t, ok)
	require.Equal(t, "text/csv", obj.ContentType)
	require.Equal(t, "a,b", string(obj.Data))

	obj.Data[0] = 'X'
	again, _ := store.Get("b/resultados.csv")
	require.Equal(t, "a,b", string(again.Data))

	require.Equal(t, []string{"a/resultados.json", "b/resultados.csv"}, store.Paths())
}

func TestBlobStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewBlobStore().PutObject(context.Background(), "", "", bytes.NewReader(nil))
	require.Error(t, err)

	_, ok := NewBlobStore().Get("missing")
	require.False(t, ok)
}
