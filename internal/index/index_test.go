package index

import (
	"errors"
	"testing"
)

func mustNew(t *testing.T, dim int) *Index {
	t.Helper()
	ix, err := New(dim)
	if err != nil {
		t.Fatalf("New(%d): %v", dim, err)
	}
	return ix
}

func TestNewRejectsBadDimension(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("expected error for zero dimension")
	}
	if _, err := New(-3); err == nil {
		t.Error("expected error for negative dimension")
	}
}

func TestAddRejectsMismatchedDimension(t *testing.T) {
	ix := mustNew(t, 3)
	err := ix.Add([]Entry{
		{ID: "a", Vector: []float32{1, 0, 0}},
		{ID: "b", Vector: []float32{1, 0}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if ix.Size() != 0 {
		t.Errorf("failed batch must not mutate index, size = %d", ix.Size())
	}
}

func TestQueryOrdersByScore(t *testing.T) {
	ix := mustNew(t, 2)
	err := ix.Add([]Entry{
		{ID: "x", Vector: []float32{1, 0}, Meta: ChunkMeta{Filename: "a.txt"}},
		{ID: "y", Vector: []float32{0, 1}, Meta: ChunkMeta{Filename: "b.txt"}},
		{ID: "z", Vector: []float32{1, 1}, Meta: ChunkMeta{Filename: "c.txt"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := ix.Query([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "x" || hits[1].ID != "z" || hits[2].ID != "y" {
		t.Errorf("unexpected order: %s, %s, %s", hits[0].ID, hits[1].ID, hits[2].ID)
	}
}

func TestQueryTiesBreakByInsertionOrder(t *testing.T) {
	ix := mustNew(t, 2)
	// Identical vectors score identically against any query.
	err := ix.Add([]Entry{
		{ID: "first", Vector: []float32{1, 1}},
		{ID: "second", Vector: []float32{1, 1}},
		{ID: "third", Vector: []float32{1, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := ix.Query([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if hits[i].ID != w {
			t.Errorf("hit %d = %s, want %s", i, hits[i].ID, w)
		}
	}
}

func TestQueryClampsK(t *testing.T) {
	ix := mustNew(t, 2)
	if err := ix.Add([]Entry{{ID: "only", Vector: []float32{1, 0}}}); err != nil {
		t.Fatal(err)
	}

	hits, err := ix.Query([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	ix := mustNew(t, 2)
	hits, err := ix.Query([]float32{1, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestHasDocument(t *testing.T) {
	ix := mustNew(t, 2)
	err := ix.Add([]Entry{
		{ID: "a", Vector: []float32{1, 0}, Meta: ChunkMeta{Filename: "doc.md", Ordinal: 0}},
		{ID: "b", Vector: []float32{0, 1}, Meta: ChunkMeta{Filename: "doc.md", Ordinal: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !ix.HasDocument("doc.md") {
		t.Error("expected doc.md to be present")
	}
	if ix.HasDocument("other.md") {
		t.Error("other.md must not be present")
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	got := cosineSimilarity([]float32{0, 0}, []float32{1, 1})
	if got != 0 {
		t.Errorf("zero vector similarity = %f, want 0", got)
	}
}
