// Package embedding maps text to fixed-dimension vectors. Two backends
// exist: a remote OpenAI-backed provider and a local deterministic
// provider. The backend is selected once at startup and never
// re-evaluated per call.
package embedding

import (
	"context"
	"log/slog"
	"time"
)

// Provider converts text into fixed-dimension embedding vectors.
// Batch and single-item embedding are numerically equivalent.
type Provider interface {
	// Name identifies the backend ("openai" or "local").
	Name() string
	// Model identifies the embedding model within the backend.
	Model() string
	// Dimension is the fixed vector size produced by this provider.
	Dimension() int
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns embeddings for all texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options configures provider selection.
type Options struct {
	// APIKey selects the OpenAI backend when non-empty.
	APIKey string
	// Model is the OpenAI embedding model (ignored by the local backend).
	Model string
	// Timeout bounds each remote API call.
	Timeout time.Duration
	// LocalDimension is the local backend's vector size (0 uses the default).
	LocalDimension int
}

// Select resolves the embedding backend once from configuration: the
// OpenAI provider when an API key is configured, the local provider
// otherwise. A misconfigured remote backend is a startup error.
func Select(opts Options, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.APIKey != "" {
		p, err := NewOpenAIProvider(opts.APIKey, opts.Model, opts.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("using OpenAI embeddings", "model", p.Model(), "dimension", p.Dimension())
		return p, nil
	}
	p := NewLocalProvider(opts.LocalDimension)
	logger.Info("using local embeddings", "model", p.Model(), "dimension", p.Dimension())
	return p, nil
}
