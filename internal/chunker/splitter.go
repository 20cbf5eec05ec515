package chunker

import "strings"

const (
	// DefaultChunkSize is the window size in characters.
	DefaultChunkSize = 1000

	// DefaultOverlap is the number of characters shared by consecutive windows.
	DefaultOverlap = 150
)

// Splitter cuts text into overlapping fixed-size character windows.
// Splitting is a pure function of (text, size, overlap): the same input
// always produces the same window boundaries.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter with the given window size and overlap.
// Non-positive size falls back to DefaultChunkSize; overlap is clamped so
// that every step makes forward progress.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the ordered sequence of windows for the given text.
// Each window is at most size characters and consecutive windows share
// overlap characters. Empty or whitespace-only input yields no windows.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := s.size - s.overlap

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			windows = append(windows, window)
		}
		if end == len(runes) {
			break
		}
	}

	return windows
}
