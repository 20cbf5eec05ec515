// Package config reads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime knob. Values come from environment
// variables, with .env loading handled by the entrypoint.
type Config struct {
	// OpenAIAPIKey selects the remote backends when set; empty selects
	// the local backends.
	OpenAIAPIKey string

	// OpenAIModel is the chat model for answer generation.
	OpenAIModel string

	// OpenAIEmbedModel is the embedding model.
	OpenAIEmbedModel string

	// RequestTimeout bounds a single backend API call.
	RequestTimeout time.Duration

	// ChunkSize and ChunkOverlap control document splitting, in runes.
	ChunkSize    int
	ChunkOverlap int

	// TopK is the default number of chunks retrieved per question.
	TopK int

	// ContextBudget caps total context characters per generation call.
	ContextBudget int

	// AnswerEngine is the default orchestration engine.
	AnswerEngine string

	// IndexDir is where index snapshots are persisted.
	IndexDir string

	// QALog is the JSONL file answered questions are appended to.
	// Empty disables question logging.
	QALog string

	// ListenAddr is the HTTP listen address.
	ListenAddr string
}

// FromEnv builds the configuration from the environment, applying
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 150),
		TopK:             getEnvInt("TOP_K", 4),
		ContextBudget:    getEnvInt("CONTEXT_BUDGET", 6000),
		AnswerEngine:     getEnv("ANSWER_ENGINE", "graph"),
		IndexDir:         getEnv("INDEX_DIR", "data/index"),
		QALog:            getEnv("QA_LOG", "logs/qa.jsonl"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
