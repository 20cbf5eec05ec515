package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const snapshotFile = "index.gob"

// Manifest records the configuration an index snapshot was built with.
// Load refuses snapshots whose manifest is incompatible with the running
// configuration rather than silently serving wrong similarities.
type Manifest struct {
	Provider  string
	Model     string
	Dimension int
	Metric    string
	SavedAt   time.Time
}

// snapshot is the on-disk representation of the index.
type snapshot struct {
	Manifest Manifest
	IDs      []string
	Vectors  [][]float32
	Meta     map[string]ChunkMeta
}

// Save writes the full index state to dir as a single snapshot. The
// snapshot is written to a temporary file and renamed into place, so a
// crash mid-write never leaves a partial snapshot behind.
func (ix *Index) Save(dir string, m Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	ix.mu.RLock()
	snap := snapshot{
		Manifest: Manifest{
			Provider:  m.Provider,
			Model:     m.Model,
			Dimension: ix.dim,
			Metric:    MetricCosine,
			SavedAt:   time.Now().UTC(),
		},
		IDs:     ix.ids,
		Vectors: ix.vectors,
		Meta:    ix.meta,
	}
	ix.mu.RUnlock()

	tmp, err := os.CreateTemp(dir, snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, snapshotFile)); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from dir and returns the reconstructed index.
// A missing snapshot yields ErrNoSnapshot and an unreadable one
// ErrCorruptSnapshot; callers typically degrade both to an empty index.
// Manifest mismatches against want are configuration errors and are
// returned as the corresponding sentinel.
func Load(dir string, want Manifest) (*Index, error) {
	f, err := os.Open(filepath.Join(dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	m := snap.Manifest
	if m.Metric != MetricCosine {
		return nil, fmt.Errorf("%w: snapshot uses %q", ErrMetricMismatch, m.Metric)
	}
	if want.Dimension > 0 && m.Dimension != want.Dimension {
		return nil, fmt.Errorf("%w: snapshot has %d dimensions, configured backend has %d",
			ErrDimensionMismatch, m.Dimension, want.Dimension)
	}
	if want.Provider != "" && (m.Provider != want.Provider || m.Model != want.Model) {
		return nil, fmt.Errorf("%w: snapshot built with %s/%s, configured backend is %s/%s",
			ErrProviderMismatch, m.Provider, m.Model, want.Provider, want.Model)
	}
	if len(snap.IDs) != len(snap.Vectors) {
		return nil, fmt.Errorf("%w: %d ids but %d vectors", ErrCorruptSnapshot,
			len(snap.IDs), len(snap.Vectors))
	}

	ix, err := New(m.Dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	ix.ids = snap.IDs
	ix.vectors = snap.Vectors
	if snap.Meta != nil {
		ix.meta = snap.Meta
	}
	for _, id := range ix.ids {
		ix.docs[ix.meta[id].Filename]++
	}
	return ix, nil
}
