// internal/casematch/aggregate.go
package casematch

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidScoreInput = errors.New("INVALID_SCORE_INPUT")

// ScoreInputError names the sub-score that failed validation.
type ScoreInputError struct {
	Field string
	Value float64
}

func (e *ScoreInputError) Error() string {
	return fmt.Sprintf("%s: %s=%v outside [0,100]", ErrInvalidScoreInput.Error(), e.Field, e.Value)
}

func (e *ScoreInputError) Unwrap() error {
	return ErrInvalidScoreInput
}

// rangeSlack absorbs float noise from producers that already clamp.
const rangeSlack = 1e-9

// Aggregator combines sub-scores into a total and grade.
type Aggregator struct {
	weights Weights
	grades  GradeThresholds
}

func NewAggregator(opts Options) (*Aggregator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: opts.Weights, grades: opts.Grades}, nil
}

var defaultAggregator = &Aggregator{
	weights: DefaultOptions().Weights,
	grades:  DefaultOptions().Grades,
}

// Aggregate uses the default 40/30/30 weights and 90/75/60/40 thresholds.
func Aggregate(vector, keyword, metadata float64) (MatchScore, error) {
	return defaultAggregator.Aggregate(vector, keyword, metadata)
}

// GradeFor grades a total against the default thresholds.
func GradeFor(total float64) Grade {
	return defaultAggregator.Grade(total)
}

func (a *Aggregator) Aggregate(vector, keyword, metadata float64) (MatchScore, error) {
	v, err := checkSubScore("vectorSimilarity", vector)
	if err != nil {
		return MatchScore{}, err
	}
	k, err := checkSubScore("keywordMatch", keyword)
	if err != nil {
		return MatchScore{}, err
	}
	m, err := checkSubScore("metadataMatch", metadata)
	if err != nil {
		return MatchScore{}, err
	}

	total := a.weights.Vector*v + a.weights.Keyword*k + a.weights.Metadata*m
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return MatchScore{}, &ScoreInputError{Field: "total", Value: total}
	}
	total = roundTo(clampPercent(total), 4)

	return MatchScore{
		VectorSimilarity: roundTo(v, 4),
		KeywordMatch:     roundTo(k, 4),
		MetadataMatch:    roundTo(m, 4),
		Total:            total,
		Grade:            a.Grade(total),
	}, nil
}

// Grade maps a total to its tier; lower bounds are inclusive.
func (a *Aggregator) Grade(total float64) Grade {
	switch {
	case total >= a.grades.S:
		return GradeS
	case total >= a.grades.A:
		return GradeA
	case total >= a.grades.B:
		return GradeB
	case total >= a.grades.C:
		return GradeC
	default:
		return GradeD
	}
}

func checkSubScore(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -rangeSlack || v > 100+rangeSlack {
		return 0, &ScoreInputError{Field: field, Value: v}
	}
	return clampPercent(v), nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
