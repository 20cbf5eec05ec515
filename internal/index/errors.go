package index

import "errors"

var (
	// ErrDimensionMismatch means a vector's size differs from the index's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMetricMismatch means a persisted index was built with a different
	// similarity metric.
	ErrMetricMismatch = errors.New("similarity metric mismatch")

	// ErrProviderMismatch means a persisted index was built by a different
	// embedding backend or model.
	ErrProviderMismatch = errors.New("embedding provider mismatch")

	// ErrNoSnapshot means no persisted index exists at the given directory.
	ErrNoSnapshot = errors.New("no index snapshot")

	// ErrCorruptSnapshot means a persisted index exists but cannot be read.
	ErrCorruptSnapshot = errors.New("corrupt index snapshot")
)
