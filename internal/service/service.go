// Package service is the application core: it owns the index lifecycle
// and exposes the two operations the system is for, uploading documents
// and asking questions.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bull/docqa/internal/chunker"
	"github.com/bull/docqa/internal/embedding"
	"github.com/bull/docqa/internal/index"
	"github.com/bull/docqa/internal/pipeline"
	"github.com/bull/docqa/internal/sink"
)

// UploadResult reports what indexing a document produced.
type UploadResult struct {
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Config wires the service together.
type Config struct {
	Chunker       *chunker.Chunker
	Provider      embedding.Provider
	Index         *index.Index
	Engines       map[string]pipeline.Engine
	DefaultEngine string
	Sink          sink.Sink
	IndexDir      string
	Logger        *slog.Logger
}

// Service coordinates document ingestion and question answering. A
// single mutex serializes uploads so the embed-add-save sequence of one
// document never interleaves with another; questions only take read
// access through the index's own locking.
type Service struct {
	mu sync.Mutex

	chunker       *chunker.Chunker
	provider      embedding.Provider
	index         *index.Index
	engines       map[string]pipeline.Engine
	defaultEngine string
	sink          sink.Sink
	indexDir      string
	logger        *slog.Logger
}

// New creates the service.
func New(cfg Config) (*Service, error) {
	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = pipeline.EngineGraph
	}
	if _, ok := cfg.Engines[cfg.DefaultEngine]; !ok {
		return nil, fmt.Errorf("%w: default engine %q", ErrUnknownEngine, cfg.DefaultEngine)
	}
	if cfg.Sink == nil {
		cfg.Sink = sink.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		chunker:       cfg.Chunker,
		provider:      cfg.Provider,
		index:         cfg.Index,
		engines:       cfg.Engines,
		defaultEngine: cfg.DefaultEngine,
		sink:          cfg.Sink,
		indexDir:      cfg.IndexDir,
		logger:        cfg.Logger,
	}, nil
}

// Ready reports whether at least one document is indexed.
func (s *Service) Ready() bool { return s.index.Size() > 0 }

// IndexSize returns the number of indexed chunks.
func (s *Service) IndexSize() int { return s.index.Size() }

// Upload chunks, embeds and indexes one document, then persists the
// index. The filename's extension decides the chunking strategy and
// whether the file is accepted at all.
func (s *Service) Upload(ctx context.Context, filename, content string) (UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".txt" && ext != ".md" {
		return UploadResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index.HasDocument(filename) {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrDuplicateDocument, filename)
	}

	chunks := s.chunker.Chunk(filename, content)
	if len(chunks) == 0 {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return UploadResult{}, fmt.Errorf("embed document: %w", err)
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Meta: index.ChunkMeta{
				Filename: filename,
				Ordinal:  c.Index,
				Text:     c.Text,
			},
		}
	}
	if err := s.index.Add(entries); err != nil {
		return UploadResult{}, fmt.Errorf("index document: %w", err)
	}

	if err := s.save(); err != nil {
		return UploadResult{}, fmt.Errorf("persist index: %w", err)
	}

	s.logger.Info("document indexed",
		"filename", filename,
		"chunks", len(chunks),
		"index_size", s.index.Size())
	return UploadResult{Filename: filename, ChunksIndexed: len(chunks)}, nil
}

// Ask answers a question with the requested engine, or the configured
// default when engine is empty. The answer is recorded in the sink; a
// sink failure is logged but never fails the request.
func (s *Service) Ask(ctx context.Context, question, engine string, k int) (pipeline.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return pipeline.Answer{}, ErrEmptyQuestion
	}

	name := engine
	if name == "" {
		name = s.defaultEngine
	}
	eng, ok := s.engines[name]
	if !ok {
		return pipeline.Answer{}, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}

	answer, err := eng.Answer(ctx, question, k)
	if err != nil {
		return pipeline.Answer{}, err
	}

	if err := s.sink.Write(sink.Record{
		Question: question,
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Engine:   answer.Engine,
	}); err != nil {
		s.logger.Warn("failed to record answer", "error", err)
	}
	return answer, nil
}

// Manifest describes the running embedding configuration, used to stamp
// snapshots and validate loaded ones.
func (s *Service) Manifest() index.Manifest {
	return index.Manifest{
		Provider:  s.provider.Name(),
		Model:     s.provider.Model(),
		Dimension: s.provider.Dimension(),
		Metric:    index.MetricCosine,
	}
}

func (s *Service) save() error {
	if s.indexDir == "" {
		return nil
	}
	return s.index.Save(s.indexDir, s.Manifest())
}
