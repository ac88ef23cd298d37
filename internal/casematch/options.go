// internal/casematch/options.go
package casematch

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidOptions = errors.New("INVALID_SCORING_OPTIONS")

// Weights combine the three sub-scores into the total. They must sum to 1.
type Weights struct {
	Vector   float64
	Keyword  float64
	Metadata float64
}

// MetadataWeights split the metadata sub-score. They must sum to 100.
type MetadataWeights struct {
	Constitution float64
	Age          float64
	Gender       float64
}

// KeywordFieldWeights are relative; they are renormalized over the fields a query supplies.
type KeywordFieldWeights struct {
	ChiefComplaint float64
	Symptom        float64
	Diagnosis      float64
	Formula        float64
}

// GradeThresholds are inclusive lower bounds of each tier; below C is D.
type GradeThresholds struct {
	S float64
	A float64
	B float64
	C float64
}

type Options struct {
	Weights       Weights
	Metadata      MetadataWeights
	KeywordFields KeywordFieldWeights
	Grades        GradeThresholds
	AgeTolerance  int
	VectorTimeout time.Duration
	Concurrency   int
}

func DefaultOptions() Options {
	return Options{
		Weights:  Weights{Vector: 0.4, Keyword: 0.3, Metadata: 0.3},
		Metadata: MetadataWeights{Constitution: 40, Age: 30, Gender: 30},
		KeywordFields: KeywordFieldWeights{
			ChiefComplaint: 0.35,
			Symptom:        0.35,
			Diagnosis:      0.20,
			Formula:        0.10,
		},
		Grades:        GradeThresholds{S: 90, A: 75, B: 60, C: 40},
		AgeTolerance:  5,
		VectorTimeout: 3 * time.Second,
		Concurrency:   8,
	}
}

const weightEpsilon = 1e-9

func (o Options) Validate() error {
	w := o.Weights
	if w.Vector < 0 || w.Keyword < 0 || w.Metadata < 0 {
		return fmt.Errorf("%w: negative sub-score weight", ErrInvalidOptions)
	}
	if math.Abs(w.Vector+w.Keyword+w.Metadata-1) > weightEpsilon {
		return fmt.Errorf("%w: sub-score weights sum to %.4f, want 1", ErrInvalidOptions, w.Vector+w.Keyword+w.Metadata)
	}

	m := o.Metadata
	if m.Constitution < 0 || m.Age < 0 || m.Gender < 0 {
		return fmt.Errorf("%w: negative metadata weight", ErrInvalidOptions)
	}
	if math.Abs(m.Constitution+m.Age+m.Gender-100) > weightEpsilon {
		return fmt.Errorf("%w: metadata weights sum to %.2f, want 100", ErrInvalidOptions, m.Constitution+m.Age+m.Gender)
	}

	k := o.KeywordFields
	if k.ChiefComplaint < 0 || k.Symptom < 0 || k.Diagnosis < 0 || k.Formula < 0 {
		return fmt.Errorf("%w: negative keyword field weight", ErrInvalidOptions)
	}
	if k.ChiefComplaint+k.Symptom+k.Diagnosis+k.Formula <= 0 {
		return fmt.Errorf("%w: keyword field weights are all zero", ErrInvalidOptions)
	}

	g := o.Grades
	if !(g.S > g.A && g.A > g.B && g.B > g.C && g.C > 0 && g.S <= 100) {
		return fmt.Errorf("%w: grade thresholds must satisfy 100 >= S > A > B > C > 0", ErrInvalidOptions)
	}

	if o.AgeTolerance < 0 {
		return fmt.Errorf("%w: negative age tolerance", ErrInvalidOptions)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.VectorTimeout <= 0 {
		o.VectorTimeout = DefaultOptions().VectorTimeout
	}
	return o
}
