package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/docqa/internal/embedding"
	"github.com/bull/docqa/internal/index"
)

func buildIndex(t *testing.T, provider embedding.Provider, texts map[string]string) *index.Index {
	t.Helper()
	ix, err := index.New(provider.Dimension())
	require.NoError(t, err)

	var entries []index.Entry
	for name, text := range texts {
		vec, err := provider.Embed(context.Background(), text)
		require.NoError(t, err)
		entries = append(entries, index.Entry{
			ID:     name,
			Vector: vec,
			Meta:   index.ChunkMeta{Filename: name, Text: text},
		})
	}
	require.NoError(t, ix.Add(entries))
	return ix
}

func TestRetrieveEmptyIndex(t *testing.T) {
	provider := embedding.NewLocalProvider(0)
	ix, err := index.New(provider.Dimension())
	require.NoError(t, err)

	r := New(provider, ix, nil)
	_, err = r.Retrieve(context.Background(), "anything", 4)
	assert.ErrorIs(t, err, ErrIndexEmpty)
}

func TestRetrieveInvalidTopK(t *testing.T) {
	provider := embedding.NewLocalProvider(0)
	ix := buildIndex(t, provider, map[string]string{"a.txt": "refund policy"})

	r := New(provider, ix, nil)
	_, err := r.Retrieve(context.Background(), "refunds", -1)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	provider := embedding.NewLocalProvider(0)
	texts := map[string]string{
		"a.txt": "returns are accepted within thirty days of purchase",
		"b.txt": "shipping takes five business days on average",
		"c.txt": "gift cards never expire and hold their value",
		"d.txt": "support is available by email around the clock",
		"e.txt": "warranty covers manufacturing defects for one year",
	}
	r := New(provider, buildIndex(t, provider, texts), nil)

	hits, err := r.Retrieve(context.Background(), "how long do returns take", 0)
	require.NoError(t, err)
	assert.Len(t, hits, DefaultTopK)
}

func TestRetrieveRanksByLexicalOverlap(t *testing.T) {
	provider := embedding.NewLocalProvider(0)
	texts := map[string]string{
		"policy.txt":   "customers may return products within 30 days for a full refund",
		"shipping.txt": "orders ship from the warehouse on the next business morning",
	}
	r := New(provider, buildIndex(t, provider, texts), nil)

	hits, err := r.Retrieve(context.Background(), "can customers return products for a refund", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "policy.txt", hits[0].Meta.Filename)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRetrieveFewerThanK(t *testing.T) {
	provider := embedding.NewLocalProvider(0)
	r := New(provider, buildIndex(t, provider, map[string]string{"only.txt": "a single document"}), nil)

	hits, err := r.Retrieve(context.Background(), "document", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
