package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitBudgetDropsLowestRanked(t *testing.T) {
	passages := []Passage{
		{Filename: "a.txt", Text: strings.Repeat("a", 40)},
		{Filename: "b.txt", Text: strings.Repeat("b", 40)},
		{Filename: "c.txt", Text: strings.Repeat("c", 40)},
	}

	kept := FitBudget(passages, 90)
	require.Len(t, kept, 2)
	assert.Equal(t, "a.txt", kept[0].Filename)
	assert.Equal(t, "b.txt", kept[1].Filename)
}

func TestFitBudgetTruncatesLoneOversizedPassage(t *testing.T) {
	passages := []Passage{
		{Filename: "big.txt", Text: strings.Repeat("x", 500)},
		{Filename: "small.txt", Text: "tiny"},
	}

	kept := FitBudget(passages, 100)
	require.Len(t, kept, 1)
	assert.Equal(t, "big.txt", kept[0].Filename)
	assert.Len(t, kept[0].Text, 100)
}

func TestFitBudgetEmpty(t *testing.T) {
	assert.Nil(t, FitBudget(nil, 100))
}

func TestLocalGeneratorExtractsRelevantSentence(t *testing.T) {
	g := NewLocalGenerator()
	passages := []Passage{
		{
			Filename: "policy.md",
			Text: "Customers may return products within 30 days of delivery. " +
				"Shipping labels are emailed on request. " +
				"Gift cards are not eligible for return.",
		},
	}

	answer, err := g.Generate(context.Background(), "How many days do customers have to return products?", passages)
	require.NoError(t, err)
	assert.Contains(t, answer, "30 days")
}

func TestLocalGeneratorDontKnow(t *testing.T) {
	g := NewLocalGenerator()
	passages := []Passage{
		{Filename: "doc.txt", Text: "Completely unrelated material about orbital mechanics."},
	}

	answer, err := g.Generate(context.Background(), "quarterly fiscal budget", passages)
	require.NoError(t, err)
	assert.Equal(t, dontKnowAnswer, answer)
}

func TestLocalGeneratorEmptyContext(t *testing.T) {
	g := NewLocalGenerator()
	_, err := g.Generate(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, ErrEmptyContext)
}

func TestLocalGeneratorDeterministic(t *testing.T) {
	g := NewLocalGenerator()
	passages := []Passage{
		{Filename: "a.txt", Text: "Refunds arrive within five business days. Exchanges ship immediately."},
		{Filename: "b.txt", Text: "Refunds require the original receipt."},
	}

	first, err := g.Generate(context.Background(), "when do refunds arrive", passages)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), "when do refunds arrive", passages)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelectLocalWithoutKey(t *testing.T) {
	g, err := Select(Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", g.Name())
}

func TestSelectOpenAIWithKey(t *testing.T) {
	g, err := Select(Options{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", g.Name())
}

func TestFormatContextLabelsSources(t *testing.T) {
	got := formatContext([]Passage{
		{Filename: "a.md", Text: "alpha"},
		{Filename: "b.md", Text: "beta"},
	})
	assert.Contains(t, got, "[1] (a.md)\nalpha")
	assert.Contains(t, got, "[2] (b.md)\nbeta")
}
