// internal/casematch/keyword.go
package casematch

import "math"

// KeywordField is the per-field breakdown of a keyword score.
type KeywordField struct {
	Type    ReasonType
	Terms   int
	Matched []string
	// Share is the fraction of the keyword score one matched term carries.
	Share float64
}

// KeywordResult is the keyword sub-score and the fields that produced it.
type KeywordResult struct {
	Score  float64
	Fields []KeywordField
}

// KeywordScorer computes weighted term overlap between a query and a candidate.
type KeywordScorer struct {
	weights KeywordFieldWeights
}

func NewKeywordScorer(weights KeywordFieldWeights) *KeywordScorer {
	return &KeywordScorer{weights: weights}
}

type keywordGroup struct {
	typ    ReasonType
	weight float64
	terms  []term
	target termIndex
}

func (s *KeywordScorer) Score(q *Query, c *CandidateCase) KeywordResult {
	clinical := newTermIndex(append(termKeys(splitTerms(c.ChiefComplaint)), termKeys(atomicTerms(c.Symptoms))...))

	groups := []keywordGroup{
		{typ: ReasonChiefComplaint, weight: s.weights.ChiefComplaint, terms: splitTerms(q.ChiefComplaint), target: clinical},
		{typ: ReasonSymptom, weight: s.weights.Symptom, terms: atomicTerms(q.Symptoms), target: clinical},
	}
	if q.Diagnosis != nil {
		groups = append(groups, keywordGroup{
			typ:    ReasonDiagnosis,
			weight: s.weights.Diagnosis,
			terms:  splitTerms(*q.Diagnosis),
			target: newTermIndex(termKeys(splitTerms(c.Diagnosis))),
		})
	}
	if q.Formula != nil {
		names := []string{c.FormulaName}
		if c.FormulaHanja != nil {
			names = append(names, *c.FormulaHanja)
		}
		groups = append(groups, keywordGroup{
			typ:    ReasonFormula,
			weight: s.weights.Formula,
			terms:  splitTerms(*q.Formula),
			target: newTermIndex(termKeys(atomicTerms(names))),
		})
	}

	var present float64
	for _, g := range groups {
		if len(g.terms) > 0 {
			present += g.weight
		}
	}
	if present <= 0 {
		return KeywordResult{}
	}

	var result KeywordResult
	var sum float64
	for _, g := range groups {
		if len(g.terms) == 0 || g.weight <= 0 {
			continue
		}
		field := KeywordField{
			Type:  g.typ,
			Terms: len(g.terms),
			Share: g.weight / present / float64(len(g.terms)),
		}
		for _, t := range g.terms {
			if g.target.contains(t.key) {
				field.Matched = append(field.Matched, t.text)
			}
		}
		sum += field.Share * float64(len(field.Matched))
		result.Fields = append(result.Fields, field)
	}

	result.Score = clampPercent(sum * 100)
	return result
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
