package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	p := NewLocalProvider(0)
	ctx := context.Background()

	a, err := p.Embed(ctx, "Customers may return products within 30 days.")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "Customers may return products within 30 days.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, LocalDimension)
}

func TestLocalProvider_BatchMatchesSingle(t *testing.T) {
	p := NewLocalProvider(128)
	ctx := context.Background()
	texts := []string{
		"the first document talks about refunds",
		"the second document covers shipping times",
	}

	batch, err := p.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, text := range texts {
		single, err := p.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "batch and single embeddings must be identical")
	}
}

func TestLocalProvider_UnitLength(t *testing.T) {
	p := NewLocalProvider(0)
	vec, err := p.Embed(context.Background(), "vectors are normalized to unit length")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalProvider_NoTokensZeroVector(t *testing.T) {
	p := NewLocalProvider(0)
	vec, err := p.Embed(context.Background(), "12345 --- !!!")
	require.NoError(t, err)

	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestSelect_LocalWithoutKey(t *testing.T) {
	p, err := Select(Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())
}

func TestSelect_OpenAIWithKey(t *testing.T) {
	p, err := Select(Options{APIKey: "sk-test", Model: DefaultEmbedModel}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, 1536, p.Dimension())
}
