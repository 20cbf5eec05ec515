// Package retriever turns a natural-language question into the ranked
// set of indexed chunks most similar to it.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bull/docqa/internal/embedding"
	"github.com/bull/docqa/internal/index"
)

// DefaultTopK is the number of chunks retrieved when the caller does not
// ask for a specific count.
const DefaultTopK = 4

var (
	// ErrIndexEmpty means retrieval was attempted before any document
	// was indexed.
	ErrIndexEmpty = errors.New("index is empty")

	// ErrInvalidTopK means the requested result count is negative.
	ErrInvalidTopK = errors.New("top-k must be positive")
)

// Retriever embeds questions with the same backend that indexed the
// chunks and queries the vector index.
type Retriever struct {
	provider embedding.Provider
	index    *index.Index
	logger   *slog.Logger
}

// New creates a retriever over the given backend and index.
func New(provider embedding.Provider, ix *index.Index, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{provider: provider, index: ix, logger: logger}
}

// Retrieve returns the k chunks most similar to the question, ordered
// by descending similarity. k <= 0 falls back to DefaultTopK. Fewer
// than k chunks in the index is not an error; an empty index is.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]index.ScoredChunk, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, k)
	}
	if k == 0 {
		k = DefaultTopK
	}
	if r.index.Size() == 0 {
		return nil, ErrIndexEmpty
	}

	vector, err := r.provider.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := r.index.Query(vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	r.logger.Debug("retrieved chunks",
		"requested", k,
		"returned", len(hits),
		"index_size", r.index.Size())
	return hits, nil
}
