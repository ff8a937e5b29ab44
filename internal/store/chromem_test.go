package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/models"
)

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := OpenChromem(&config.DatabaseConfig{
		Collection: "test",
		InMemory:   true,
	})
	require.NoError(t, err)
	return idx
}

func record(id, source string, index int, embedding []float32) Record {
	return Record{
		ID:        id,
		Content:   "content of " + id,
		Metadata:  map[string]string{models.MetaSource: source, models.MetaChunkIndex: strconv.Itoa(index)},
		Embedding: embedding,
	}
}

func TestChromemAddAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(ctx, []Record{
		record("a-0", "a", 0, []float32{1, 0, 0}),
		record("b-0", "b", 0, []float32{0, 1, 0}),
		record("c-0", "c", 0, []float32{0.8, 0.6, 0}),
	}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a-0", hits[0].ID)
	assert.Equal(t, "c-0", hits[1].ID)
	assert.Equal(t, "b-0", hits[2].ID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance, "hits must be ascending by distance")
	}
	assert.InDelta(t, 0, hits[0].Distance, 1e-5)
}

func TestChromemQueryClampsK(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits, "empty index must yield an empty result, not an error")

	require.NoError(t, idx.Add(ctx, []Record{record("a-0", "a", 0, []float32{1, 0, 0})}))
	hits, err = idx.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestChromemDeleteBySource(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(ctx, []Record{
		record("a-0", "a", 0, []float32{1, 0, 0}),
		record("a-1", "a", 1, []float32{0, 1, 0}),
		record("b-0", "b", 0, []float32{0, 0, 1}),
	}))

	require.NoError(t, idx.DeleteBySource(ctx, "a"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Query(ctx, []float32{0, 0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b-0", hits[0].ID)
}
