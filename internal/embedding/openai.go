package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultEmbedModel is the OpenAI model used for embeddings.
	DefaultEmbedModel = "text-embedding-3-small"

	// DefaultTimeout bounds a single embedding API call.
	DefaultTimeout = 30 * time.Second

	// maxRetries is the bounded retry count for transient backend failures.
	maxRetries = 2
)

// OpenAIProvider generates embeddings via the OpenAI API. Transient
// failures (rate limits, server errors, network errors) are retried with
// exponential backoff; authentication and request errors are not.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	dim     int
	timeout time.Duration
}

// NewOpenAIProvider creates the remote embedding backend. A missing API
// key is a configuration error.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedding provider requires an API key")
	}
	if model == "" {
		model = DefaultEmbedModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dim := 1536 // text-embedding-3-small
	if model == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAIProvider{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		dim:     dim,
		timeout: timeout,
	}, nil
}

// Name identifies the backend.
func (p *OpenAIProvider) Name() string { return "openai" }

// Model identifies the embedding model.
func (p *OpenAIProvider) Model() string { return p.model }

// Dimension is the fixed vector size for the configured model.
func (p *OpenAIProvider) Dimension() int { return p.dim }

// Embed returns the embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one API call, retrying transient
// failures with exponential backoff.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		resp, err := p.client.Embeddings.New(callCtx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.WithMaxRetries(newBackOff(), maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}

	for i, v := range vectors {
		if len(v) != p.dim {
			return nil, fmt.Errorf("embedding %d has %d dimensions, expected %d", i, len(v), p.dim)
		}
	}
	return vectors, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return b
}

// isTransient reports whether an API error is worth retrying: rate
// limits, server errors, or transport failures. Authentication and other
// client errors are permanent.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// Non-API errors are network-level and assumed transient.
	return true
}

// toFloat32 narrows the API's float64 vectors for in-memory storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
