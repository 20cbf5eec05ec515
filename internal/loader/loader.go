// Package loader bulk-indexes a directory of documents, for seeding the
// index from the command line instead of one upload at a time.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bull/docqa/internal/service"
)

// Result summarizes one bulk-indexing run.
type Result struct {
	TotalDocs      int
	TotalChunks    int
	SuccessfulDocs int
	FailedDocs     int
}

// Loader feeds documents found on disk through the service's normal
// upload path, so bulk indexing and HTTP upload share validation and
// persistence behavior.
type Loader struct {
	svc    *service.Service
	logger *slog.Logger
}

// New creates a loader over the given service.
func New(svc *service.Service, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{svc: svc, logger: logger}
}

// IndexDir walks root and indexes every .txt and .md file found. Files
// that fail to index are logged and counted but do not stop the run.
func (l *Loader) IndexDir(ctx context.Context, root string) (Result, error) {
	var res Result

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res.TotalDocs++
		content, err := os.ReadFile(path)
		if err != nil {
			res.FailedDocs++
			l.logger.Warn("failed to read document", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		upload, err := l.svc.Upload(ctx, filepath.ToSlash(rel), string(content))
		if err != nil {
			res.FailedDocs++
			l.logger.Warn("failed to index document", "path", path, "error", err)
			return nil
		}

		res.SuccessfulDocs++
		res.TotalChunks += upload.ChunksIndexed
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", root, err)
	}

	l.logger.Info("bulk indexing complete",
		"total", res.TotalDocs,
		"indexed", res.SuccessfulDocs,
		"failed", res.FailedDocs,
		"chunks", res.TotalChunks)
	return res, nil
}
