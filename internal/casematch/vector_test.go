// internal/casematch/vector_test.go
package casematch

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr error
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 100, nil},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 100, nil},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, nil},
		{"opposite clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0, nil},
		{"partial", []float32{1, 0, 0}, []float32{0.8, 0.6, 0}, 80, nil},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0, nil},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0, ErrDimensionMismatch},
		{"nan component", []float32{float32(math.NaN()), 0}, []float32{1, 0}, 0, ErrInvalidEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

func TestVectorScorer_EmptyQueryText(t *testing.T) {
	emb := newFakeEmbedder()
	s := NewVectorScorer(emb, time.Second)
	c := soeumCase()

	qv := s.Prepare(context.Background(), &Query{})
	got, err := s.Score(context.Background(), qv, &c)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, int64(0), emb.callCount())
}

func TestVectorScorer_ReusesPrecomputedEmbedding(t *testing.T) {
	emb := newFakeEmbedder()
	emb.vectors["두통 어지러움"] = []float32{1, 0, 0}
	s := NewVectorScorer(emb, time.Second)

	c := soeumCase()
	c.Embedding = []float32{0.8, 0.6, 0}
	c.EmbeddingModel = emb.Model()

	qv := s.Prepare(context.Background(), soeumQuery())
	got, err := s.Score(context.Background(), qv, &c)

	require.NoError(t, err)
	assert.InDelta(t, 80.0, got, 1e-4)
	assert.Equal(t, int64(1), emb.callCount())
}

func TestVectorScorer_ReembedsOnModelMismatch(t *testing.T) {
	emb := newFakeEmbedder()
	emb.vectors["두통 현훈"] = []float32{0, 1, 0}
	s := NewVectorScorer(emb, time.Second)

	c := soeumCase()
	c.Embedding = []float32{1, 0, 0}
	c.EmbeddingModel = "older-model"

	qv := s.Prepare(context.Background(), soeumQuery())
	got, err := s.Score(context.Background(), qv, &c)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, int64(2), emb.callCount())
}

func TestVectorScorer_TimeoutDegrades(t *testing.T) {
	emb := newFakeEmbedder()
	emb.block = true
	s := NewVectorScorer(emb, 20*time.Millisecond)
	c := soeumCase()

	start := time.Now()
	qv := s.Prepare(context.Background(), soeumQuery())
	got, err := s.Score(context.Background(), qv, &c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0.0, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestVectorScorer_NilEmbedder(t *testing.T) {
	s := NewVectorScorer(nil, time.Second)
	c := soeumCase()

	qv := s.Prepare(context.Background(), soeumQuery())
	_, err := s.Score(context.Background(), qv, &c)
	assert.True(t, errors.Is(err, ErrEmbedderUnavailable))
}

func TestVectorScorer_Deterministic(t *testing.T) {
	emb := newFakeEmbedder()
	emb.vectors["두통 어지러움"] = []float32{0.3, 0.5, 0.81}
	emb.vectors["두통 현훈"] = []float32{0.2, 0.7, 0.69}
	s := NewVectorScorer(emb, time.Second)
	c := soeumCase()

	first, err := s.Score(context.Background(), s.Prepare(context.Background(), soeumQuery()), &c)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Score(context.Background(), s.Prepare(context.Background(), soeumQuery()), &c)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
