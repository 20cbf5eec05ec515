package pipeline

import (
	"context"
	"fmt"

	"github.com/bull/docqa/internal/generator"
	"github.com/bull/docqa/internal/retriever"
)

// Linear runs the pipeline as a fixed call sequence: retrieve, fit,
// generate.
type Linear struct {
	deps
}

// NewLinear creates the sequential engine.
func NewLinear(r *retriever.Retriever, g generator.Generator, budget int) *Linear {
	return &Linear{deps{retriever: r, generator: g, budget: budget}}
}

// Name identifies the engine.
func (e *Linear) Name() string { return EngineLinear }

// Answer retrieves the top chunks for the question and generates a
// grounded answer from them.
func (e *Linear) Answer(ctx context.Context, question string, k int) (Answer, error) {
	hits, err := e.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	passages := e.toPassages(hits)
	text, err := e.generator.Generate(ctx, question, passages)
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}

	return Answer{
		Text:    text,
		Sources: sources(passages),
		Engine:  EngineLinear,
	}, nil
}
