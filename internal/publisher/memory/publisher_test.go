package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisherRecordsPayloads(t *testing.T) {
	t.Parallel()

	p := New()
	id, err := p.Publish(context.Background(), "first")
	require.NoError(t, err)
	require.Equal(t, "memory-1", id)

	id, err = p.Publish(context.Background(), "second")
	require.NoError(t, err)
	require.Equal(t, "memory-2", id)

	msgs := p.Messages()
	require.Equal(t, []any{"first", "second"}, msgs)
	msgs[0] = "mutated"
	require.Equal(t, "first", p.Messages()[0])
}
