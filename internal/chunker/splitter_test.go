package chunker

import (
	"strings"
	"testing"
)

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	s := NewSplitter(200, 40)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) == 0 {
		t.Fatal("expected at least one window")
	}
	if len(first) != len(second) {
		t.Fatalf("window counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("window %d differs between runs", i)
		}
	}
}

func TestSplit_WindowSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100) // 1000 chars
	s := NewSplitter(300, 50)

	windows := s.Split(text)
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}

	for i, w := range windows {
		if len([]rune(w)) > 300 {
			t.Errorf("window %d exceeds size: %d chars", i, len([]rune(w)))
		}
	}

	// Consecutive windows share the configured overlap.
	for i := 1; i < len(windows); i++ {
		prev := []rune(windows[i-1])
		curr := []rune(windows[i])
		tail := string(prev[len(prev)-50:])
		head := string(curr[:50])
		if tail != head {
			t.Errorf("windows %d/%d do not share 50-char overlap", i-1, i)
		}
	}
}

func TestSplit_ShortInputSingleWindow(t *testing.T) {
	s := NewSplitter(1000, 150)
	windows := s.Split("Customers may return products within 30 days for a full refund.")

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if !strings.Contains(windows[0], "30 days") {
		t.Errorf("window missing expected content")
	}
}

func TestSplit_BlankInput(t *testing.T) {
	s := NewSplitter(1000, 150)

	if got := s.Split(""); got != nil {
		t.Errorf("empty input: expected no windows, got %d", len(got))
	}
	if got := s.Split("   \n\t  \n"); got != nil {
		t.Errorf("whitespace input: expected no windows, got %d", len(got))
	}
}

func TestNewSplitter_ClampsBadConfig(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.size != DefaultChunkSize {
		t.Errorf("expected default size %d, got %d", DefaultChunkSize, s.size)
	}
	if s.overlap != 0 {
		t.Errorf("expected zero overlap, got %d", s.overlap)
	}

	s = NewSplitter(100, 100)
	if s.overlap >= s.size {
		t.Errorf("overlap %d not clamped below size %d", s.overlap, s.size)
	}
}
