// internal/casematch/vector.go
package casematch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmbedderUnavailable = errors.New("EMBEDDER_UNAVAILABLE")
	ErrDimensionMismatch   = errors.New("EMBEDDING_DIMENSION_MISMATCH")
	ErrInvalidEmbedding    = errors.New("INVALID_EMBEDDING")
)

// Embedder turns text into a vector. Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// VectorScorer rates semantic closeness of query and candidate text.
type VectorScorer struct {
	embedder Embedder
	timeout  time.Duration
}

func NewVectorScorer(embedder Embedder, timeout time.Duration) *VectorScorer {
	return &VectorScorer{embedder: embedder, timeout: timeout}
}

// QueryVector is the embedded query, computed once per ranking request.
type QueryVector struct {
	vec   []float32
	empty bool
	err   error
}

func (s *VectorScorer) Prepare(ctx context.Context, q *Query) QueryVector {
	text := q.SemanticText()
	if text == "" {
		return QueryVector{empty: true}
	}
	vec, err := s.embed(ctx, text)
	if err != nil {
		return QueryVector{err: fmt.Errorf("embed query: %w", err)}
	}
	return QueryVector{vec: vec}
}

// Score returns the similarity in [0,100]. A non-nil error means the value is
// degraded to 0.
func (s *VectorScorer) Score(ctx context.Context, qv QueryVector, c *CandidateCase) (float64, error) {
	if qv.empty {
		return 0, nil
	}
	if qv.err != nil {
		return 0, qv.err
	}
	if s.embedder == nil {
		return 0, ErrEmbedderUnavailable
	}

	vec := c.Embedding
	if len(vec) == 0 || c.EmbeddingModel != s.embedder.Model() {
		text := c.SemanticText()
		if text == "" {
			return 0, nil
		}
		var err error
		vec, err = s.embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed case %s: %w", c.ID, err)
		}
	}

	sim, err := CosineSimilarity(qv.vec, vec)
	if err != nil {
		return 0, fmt.Errorf("case %s: %w", c.ID, err)
	}
	return sim, nil
}

func (s *VectorScorer) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.embedder.Embed(ctx, text)
}

// CosineSimilarity rescales cosine similarity to a percentage. Negative
// similarity maps to 0; a zero vector has similarity 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if math.IsNaN(dot) || math.IsInf(dot, 0) || math.IsNaN(na) || math.IsNaN(nb) {
		return 0, ErrInvalidEmbedding
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return clampPercent(math.Max(0, cos) * 100), nil
}
