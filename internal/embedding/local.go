package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalDimension is the default vector size for the local backend.
const LocalDimension = 256

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// LocalProvider is a deterministic feature-hashing bag-of-words embedder.
// It needs no external service: each token is hashed into a fixed-size
// vector which is then L2-normalized, so cosine similarity over the
// resulting vectors reflects lexical overlap. The same text always maps
// to the same vector.
type LocalProvider struct {
	dim int
}

// NewLocalProvider creates the local embedding backend. Non-positive
// dimension falls back to LocalDimension.
func NewLocalProvider(dimension int) *LocalProvider {
	if dimension <= 0 {
		dimension = LocalDimension
	}
	return &LocalProvider{dim: dimension}
}

// Name identifies the backend.
func (p *LocalProvider) Name() string { return "local" }

// Model identifies the hashing scheme.
func (p *LocalProvider) Model() string { return "feature-hash" }

// Dimension is the fixed vector size.
func (p *LocalProvider) Dimension() int { return p.dim }

// Embed computes the feature-hashed embedding for the given text.
// Text with no word tokens yields the zero vector.
func (p *LocalProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dim)
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(p.dim)]++
	}
	l2normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently; by construction the result
// is identical to calling Embed per item.
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
