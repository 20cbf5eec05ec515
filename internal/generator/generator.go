// Package generator produces grounded answers from retrieved context.
// Two backends implement it: a remote chat-completion backend and a
// deterministic extractive backend that needs no network.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultContextBudget caps the total characters of context sent to a
// backend in one generation call.
const DefaultContextBudget = 6000

// ErrEmptyContext means generation was attempted with no passages.
var ErrEmptyContext = errors.New("no context passages")

// Passage is one retrieved chunk handed to the generator, already
// ordered by descending relevance.
type Passage struct {
	Filename string
	Text     string
	Score    float32
}

// Generator answers a question strictly from the provided passages.
type Generator interface {
	// Name identifies the backend.
	Name() string

	// Generate returns the answer text. Passages arrive ranked most
	// relevant first and already fitted to the context budget.
	Generate(ctx context.Context, question string, passages []Passage) (string, error)
}

// Options selects and configures a generation backend.
type Options struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Budget  int
}

// Select picks the generation backend the same way the embedding layer
// does: remote when an API key is configured, local otherwise. The
// choice is made once at startup.
func Select(opts Options, logger *slog.Logger) (Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.APIKey != "" {
		g, err := NewOpenAIGenerator(opts.APIKey, opts.Model, opts.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("using openai generation backend", "model", g.Model())
		return g, nil
	}
	logger.Info("no api key configured, using local extractive backend")
	return NewLocalGenerator(), nil
}

// FitBudget trims a ranked passage list to at most budget total
// characters of text by dropping the lowest-ranked passages first. The
// top passage always survives; if it alone exceeds the budget its text
// is truncated rather than dropped, so generation always has context.
func FitBudget(passages []Passage, budget int) []Passage {
	if len(passages) == 0 {
		return nil
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	kept := make([]Passage, 0, len(passages))
	total := 0
	for _, p := range passages {
		if total+len(p.Text) > budget {
			break
		}
		kept = append(kept, p)
		total += len(p.Text)
	}
	if len(kept) == 0 {
		p := passages[0]
		p.Text = truncate(p.Text, budget)
		kept = append(kept, p)
	}
	return kept
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary.
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// formatContext renders passages as a numbered, source-labelled block
// for the chat prompt.
func formatContext(passages []Passage) string {
	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] (%s)\n%s", i+1, p.Filename, p.Text)
	}
	return b.String()
}
