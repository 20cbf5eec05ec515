// Package index provides the in-process vector index: an incrementally
// growing store of chunk embeddings with cosine similarity search, a
// citation side-table, and atomic disk persistence.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// MetricCosine is the similarity metric this index implements. It is
// recorded in persisted snapshots so load can validate compatibility.
const MetricCosine = "cosine"

// ChunkMeta is the citation side-table entry for an indexed chunk.
type ChunkMeta struct {
	Filename string // source document, exactly one per chunk
	Ordinal  int    // chunk position within its document
	Text     string // chunk text, used as generation context
}

// Entry is one chunk submitted for indexing.
type Entry struct {
	ID     string
	Vector []float32
	Meta   ChunkMeta
}

// ScoredChunk is a query hit: a chunk with its similarity score.
type ScoredChunk struct {
	ID    string
	Meta  ChunkMeta
	Score float32
}

// Index is the process-wide vector index. Writes append whole batches
// under the write lock, so readers only ever observe fully committed
// state. Ties in similarity are broken by insertion order.
type Index struct {
	mu      sync.RWMutex
	dim     int
	ids     []string
	vectors [][]float32
	meta    map[string]ChunkMeta
	docs    map[string]int // filename -> chunk count
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dimension)
	}
	return &Index{
		dim:  dimension,
		meta: make(map[string]ChunkMeta),
		docs: make(map[string]int),
	}, nil
}

// Dimension returns the fixed vector size of this index.
func (ix *Index) Dimension() int { return ix.dim }

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// HasDocument reports whether any chunk of the given filename is indexed.
func (ix *Index) HasDocument(filename string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docs[filename] > 0
}

// Add appends a batch of entries. The batch is validated up front and
// committed atomically: a failed batch leaves the index unchanged, and
// concurrent queries never observe a partially added batch.
func (ix *Index) Add(entries []Entry) error {
	for i, e := range entries {
		if len(e.Vector) != ix.dim {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Vector), ix.dim)
		}
		if e.ID == "" {
			return fmt.Errorf("entry %d has empty id", i)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, e := range entries {
		ix.ids = append(ix.ids, e.ID)
		ix.vectors = append(ix.vectors, e.Vector)
		ix.meta[e.ID] = e.Meta
		ix.docs[e.Meta.Filename]++
	}
	return nil
}

// Query returns up to k chunks ordered by descending cosine similarity
// to the given vector. Equal scores rank earlier-inserted chunks first,
// which keeps retrieval deterministic.
func (ix *Index) Query(vector []float32, k int) ([]ScoredChunk, error) {
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), ix.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid k %d", k)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = cosineSimilarity(vector, v)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]ScoredChunk, 0, k)
	for _, i := range order[:k] {
		id := ix.ids[i]
		results = append(results, ScoredChunk{
			ID:    id,
			Meta:  ix.meta[id],
			Score: scores[i],
		})
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// 0 when either vector is zero.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
