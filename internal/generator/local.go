package generator

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// dontKnowAnswer is returned when no context sentence shares vocabulary
// with the question.
const dontKnowAnswer = "I don't know based on the provided documents."

var (
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// LocalGenerator is a deterministic extractive backend: it scores each
// context sentence by vocabulary overlap with the question and returns
// the best-scoring sentences verbatim. Because every output sentence
// comes from the passages, answers are grounded by construction.
type LocalGenerator struct {
	maxSentences int
}

// NewLocalGenerator creates the local generation backend.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{maxSentences: 2}
}

// Name identifies the backend.
func (g *LocalGenerator) Name() string { return "local" }

// Generate extracts the context sentences most relevant to the question.
func (g *LocalGenerator) Generate(_ context.Context, question string, passages []Passage) (string, error) {
	if len(passages) == 0 {
		return "", ErrEmptyContext
	}

	qTokens := tokenSet(question)

	type scored struct {
		text  string
		rank  int // passage rank, lower is more relevant
		order int // position within the passage
		score float64
	}
	var candidates []scored
	for rank, p := range passages {
		for order, sentence := range splitSentences(p.Text) {
			s := overlapScore(qTokens, sentence)
			if s > 0 {
				candidates = append(candidates, scored{
					text:  sentence,
					rank:  rank,
					order: order,
					score: s,
				})
			}
		}
	}
	if len(candidates) == 0 {
		return dontKnowAnswer, nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		if candidates[a].rank != candidates[b].rank {
			return candidates[a].rank < candidates[b].rank
		}
		return candidates[a].order < candidates[b].order
	})

	n := g.maxSentences
	if n > len(candidates) {
		n = len(candidates)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = candidates[i].text
	}
	return strings.Join(parts, " "), nil
}

func splitSentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		set[tok] = struct{}{}
	}
	return set
}

// overlapScore is the fraction of question tokens present in the
// sentence.
func overlapScore(qTokens map[string]struct{}, sentence string) float64 {
	if len(qTokens) == 0 {
		return 0
	}
	matched := 0
	for tok := range tokenSet(sentence) {
		if _, ok := qTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}
