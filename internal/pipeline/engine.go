// Package pipeline orchestrates retrieval and generation into a single
// question-answering step. Two engines implement the same contract: a
// linear engine that calls the stages in sequence, and a graph engine
// that walks an explicit state machine. Given the same inputs they
// produce identical retrieval sets and source lists.
package pipeline

import (
	"context"

	"github.com/bull/docqa/internal/generator"
	"github.com/bull/docqa/internal/index"
	"github.com/bull/docqa/internal/retriever"
)

// Engine names accepted in configuration and per-request overrides.
const (
	EngineLinear = "linear"
	EngineGraph  = "graph"
)

// Answer is the result of one question-answering run.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
	Engine  string   `json:"engine"`
}

// Engine runs the retrieve-then-generate pipeline for one question.
type Engine interface {
	Name() string
	Answer(ctx context.Context, question string, k int) (Answer, error)
}

// deps are the stages both engines share.
type deps struct {
	retriever *retriever.Retriever
	generator generator.Generator
	budget    int
}

// toPassages converts retrieval hits into ranked generation passages,
// fitted to the context budget.
func (d deps) toPassages(hits []index.ScoredChunk) []generator.Passage {
	passages := make([]generator.Passage, len(hits))
	for i, h := range hits {
		passages[i] = generator.Passage{
			Filename: h.Meta.Filename,
			Text:     h.Meta.Text,
			Score:    h.Score,
		}
	}
	return generator.FitBudget(passages, d.budget)
}

// sources lists the distinct filenames behind the passages, ordered by
// the rank of each file's best chunk.
func sources(passages []generator.Passage) []string {
	seen := make(map[string]struct{}, len(passages))
	var out []string
	for _, p := range passages {
		if _, ok := seen[p.Filename]; ok {
			continue
		}
		seen[p.Filename] = struct{}{}
		out = append(out, p.Filename)
	}
	return out
}
