// internal/casematch/metadata.go
package casematch

import "strings"

// MetadataResult records which patient dimensions matched.
type MetadataResult struct {
	Score        float64
	Constitution bool
	Age          bool
	Gender       bool
}

// MetadataScorer compares constitution, age and gender. Unknown values on
// either side contribute nothing.
type MetadataScorer struct {
	weights   MetadataWeights
	tolerance int
}

func NewMetadataScorer(weights MetadataWeights, ageTolerance int) *MetadataScorer {
	return &MetadataScorer{weights: weights, tolerance: ageTolerance}
}

func (s *MetadataScorer) Score(q *Query, c *CandidateCase) MetadataResult {
	var r MetadataResult

	if q.Constitution != nil && c.PatientConstitution != nil {
		if normalizeTerm(string(*q.Constitution)) == normalizeTerm(*c.PatientConstitution) {
			r.Constitution = true
			r.Score += s.weights.Constitution
		}
	}

	if q.Age != nil && c.PatientAge != nil {
		diff := *q.Age - *c.PatientAge
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.tolerance {
			r.Age = true
			r.Score += s.weights.Age
		}
	}

	if q.Gender != nil && c.PatientGender != nil {
		if strings.EqualFold(string(*q.Gender), string(*c.PatientGender)) {
			r.Gender = true
			r.Score += s.weights.Gender
		}
	}

	r.Score = clampPercent(r.Score)
	return r
}
