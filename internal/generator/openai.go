package generator

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
	// DefaultChatModel is the OpenAI model used for answer generation.
	DefaultChatModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single chat completion call.
	DefaultTimeout = 60 * time.Second

	maxRetries = 2
)

const systemPrompt = "You are an assistant that answers the user's question strictly using " +
	"the provided context. If the context does not contain the answer, say you don't know. " +
	"Answer concisely."

// OpenAIGenerator answers questions via the OpenAI chat completions API.
// Transient failures are retried with exponential backoff, mirroring the
// embedding backend.
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates the remote generation backend.
func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai generator requires an API key")
	}
	if model == "" {
		model = DefaultChatModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}, nil
}

// Name identifies the backend.
func (g *OpenAIGenerator) Name() string { return "openai" }

// Model identifies the chat model.
func (g *OpenAIGenerator) Model() string { return g.model }

// Generate sends the question and its context to the chat API and
// returns the completion text.
func (g *OpenAIGenerator) Generate(ctx context.Context, question string, passages []Passage) (string, error) {
	if len(passages) == 0 {
		return "", ErrEmptyContext
	}

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", formatContext(passages), question)

	var answer string
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(g.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(user),
			},
			Temperature: openai.Float(0),
		})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("completion returned no choices"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.WithMaxRetries(newBackOff(), maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return b
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}
