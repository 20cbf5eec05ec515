// Package sink records answered questions for offline inspection.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one answered question.
type Record struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Engine    string    `json:"engine"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink accepts answered questions. Implementations must be safe for
// concurrent use.
type Sink interface {
	Write(rec Record) error
}

// FileSink appends records to a JSONL file, one object per line.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates the sink and its parent directory.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sink dir: %w", err)
	}
	return &FileSink{path: path}, nil
}

// Write appends one record. The file is opened per call so an external
// log rotation never strands an open handle.
func (s *FileSink) Write(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Discard is a Sink that drops every record, for callers that disable
// question logging.
type Discard struct{}

func (Discard) Write(Record) error { return nil }
