// internal/casematch/aggregate_test.go
package casematch

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeFor_Boundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  Grade
	}{
		{100, GradeS},
		{90.0, GradeS},
		{89.9, GradeA},
		{75.0, GradeA},
		{74.9999, GradeB},
		{60.0, GradeB},
		{59.9, GradeC},
		{40.0, GradeC},
		{39.9, GradeD},
		{0, GradeD},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total), "total=%v", tt.total)
	}
}

func TestGradeFor_Monotonic(t *testing.T) {
	prev := GradeFor(0)
	for i := 1; i <= 10000; i++ {
		total := float64(i) / 100
		g := GradeFor(total)
		assert.GreaterOrEqual(t, g.Rank(), prev.Rank(), "grade dropped at total=%v", total)
		prev = g
	}
}

func TestAggregate_WeightedTotal(t *testing.T) {
	tests := []struct {
		name      string
		v, k, m   float64
		wantTotal float64
		wantGrade Grade
	}{
		{"all zero", 0, 0, 0, 0, GradeD},
		{"all max", 100, 100, 100, 100, GradeS},
		{"exact S boundary", 90, 90, 90, 90, GradeS},
		{"vector only", 80, 0, 0, 32, GradeD},
		{"mixed", 80, 50, 100, 77, GradeA},
		{"exact B boundary", 60, 60, 60, 60, GradeB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Aggregate(tt.v, tt.k, tt.m)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, score.Total, 1e-9)
			assert.Equal(t, tt.wantGrade, score.Grade)
			assert.Equal(t, tt.v, score.VectorSimilarity)
			assert.Equal(t, tt.k, score.KeywordMatch)
			assert.Equal(t, tt.m, score.MetadataMatch)
		})
	}
}

func TestAggregate_WeightedTotalGrid(t *testing.T) {
	for v := 0.0; v <= 100; v += 12.5 {
		for k := 0.0; k <= 100; k += 12.5 {
			for m := 0.0; m <= 100; m += 12.5 {
				score, err := Aggregate(v, k, m)
				require.NoError(t, err)
				assert.InDelta(t, 0.4*v+0.3*k+0.3*m, score.Total, 1e-4)
				assert.GreaterOrEqual(t, score.Total, 0.0)
				assert.LessOrEqual(t, score.Total, 100.0)
				assert.Equal(t, GradeFor(score.Total), score.Grade)
			}
		}
	}
}

func TestAggregate_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		v, k, m float64
		field   string
	}{
		{"NaN vector", math.NaN(), 10, 10, "vectorSimilarity"},
		{"Inf keyword", 10, math.Inf(1), 10, "keywordMatch"},
		{"negative metadata", 10, 10, -1, "metadataMatch"},
		{"above range vector", 100.5, 10, 10, "vectorSimilarity"},
		{"negative infinity metadata", 10, 10, math.Inf(-1), "metadataMatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(tt.v, tt.k, tt.m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScoreInput))

			var inputErr *ScoreInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestAggregate_ClampsFloatNoise(t *testing.T) {
	score, err := Aggregate(100+1e-12, -1e-12, 50)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.VectorSimilarity)
	assert.Equal(t, 0.0, score.KeywordMatch)
}

func TestNewAggregator_CustomThresholds(t *testing.T) {
	opts := DefaultOptions()
	opts.Grades = GradeThresholds{S: 95, A: 80, B: 65, C: 45}

	agg, err := NewAggregator(opts)
	require.NoError(t, err)
	assert.Equal(t, GradeA, agg.Grade(90))
	assert.Equal(t, GradeS, agg.Grade(95))
	assert.Equal(t, GradeD, agg.Grade(44.99))
}

func TestNewAggregator_InvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Weights = Weights{Vector: 0.5, Keyword: 0.3, Metadata: 0.3}

	_, err := NewAggregator(opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}
