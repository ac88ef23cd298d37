// internal/casematch/reasons.go
package casematch

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ReasonExtractor explains a score field by field.
type ReasonExtractor struct {
	opts     Options
	keyword  *KeywordScorer
	metadata *MetadataScorer
}

func NewReasonExtractor(opts Options) *ReasonExtractor {
	return &ReasonExtractor{
		opts:     opts,
		keyword:  NewKeywordScorer(opts.KeywordFields),
		metadata: NewMetadataScorer(opts.Metadata, opts.AgeTolerance),
	}
}

// Extract returns display-sorted reasons for a scored pair. Dimensions whose
// sub-score is zero produce no reasons.
func (e *ReasonExtractor) Extract(q *Query, c *CandidateCase, score MatchScore) []MatchReason {
	var kw KeywordResult
	if score.KeywordMatch > 0 {
		kw = e.keyword.Score(q, c)
	}
	var md MetadataResult
	if score.MetadataMatch > 0 {
		md = e.metadata.Score(q, c)
	}
	return e.build(q, c, kw, md)
}

func (e *ReasonExtractor) build(q *Query, c *CandidateCase, kw KeywordResult, md MetadataResult) []MatchReason {
	reasons := make([]MatchReason, 0, 8)
	keywordPoints := e.opts.Weights.Keyword * 100

	for _, f := range kw.Fields {
		if len(f.Matched) == 0 {
			continue
		}
		switch f.Type {
		case ReasonSymptom:
			for _, m := range f.Matched {
				reasons = appendReason(reasons, ReasonSymptom, fmt.Sprintf("증상 일치: %s", m), keywordPoints*f.Share)
			}
		case ReasonChiefComplaint:
			reasons = appendReason(reasons, f.Type, fmt.Sprintf("주소증 일치: %s", strings.Join(f.Matched, ", ")),
				keywordPoints*f.Share*float64(len(f.Matched)))
		case ReasonDiagnosis:
			reasons = appendReason(reasons, f.Type, fmt.Sprintf("진단 일치: %s", strings.Join(f.Matched, ", ")),
				keywordPoints*f.Share*float64(len(f.Matched)))
		case ReasonFormula:
			reasons = appendReason(reasons, f.Type, fmt.Sprintf("처방 일치: %s", formulaLabel(c)),
				keywordPoints*f.Share*float64(len(f.Matched)))
		}
	}

	metaWeight := e.opts.Weights.Metadata
	if md.Constitution {
		reasons = appendReason(reasons, ReasonConstitution,
			fmt.Sprintf("체질 일치: %s", *q.Constitution), metaWeight*e.opts.Metadata.Constitution)
	}
	if md.Age {
		reasons = appendReason(reasons, ReasonAge,
			fmt.Sprintf("연령 유사: %d세 (±%d세)", *c.PatientAge, e.opts.AgeTolerance), metaWeight*e.opts.Metadata.Age)
	}
	if md.Gender {
		reasons = appendReason(reasons, ReasonGender,
			fmt.Sprintf("성별 일치: %s", c.PatientGender.Label()), metaWeight*e.opts.Metadata.Gender)
	}

	SortReasons(reasons)
	return reasons
}

func formulaLabel(c *CandidateCase) string {
	if c.FormulaHanja != nil && strings.TrimSpace(*c.FormulaHanja) != "" {
		return fmt.Sprintf("%s(%s)", c.FormulaName, strings.TrimSpace(*c.FormulaHanja))
	}
	return c.FormulaName
}

func appendReason(reasons []MatchReason, t ReasonType, desc string, points float64) []MatchReason {
	if !(points > 0) {
		return reasons
	}
	return append(reasons, MatchReason{Type: t, Description: desc, Contribution: RoundContribution(points)})
}

// RoundContribution keeps one decimal at or above 1 point and two below,
// never showing a real positive contribution as 0.
func RoundContribution(points float64) float64 {
	if math.IsNaN(points) || points <= 0 {
		return 0
	}
	if points >= 1 {
		return roundTo(points, 1)
	}
	r := roundTo(points, 2)
	if r < 0.01 {
		return 0.01
	}
	return r
}

// SortReasons orders by contribution, then type priority, then extraction order.
func SortReasons(reasons []MatchReason) {
	sort.SliceStable(reasons, func(i, j int) bool {
		if reasons[i].Contribution != reasons[j].Contribution {
			return reasons[i].Contribution > reasons[j].Contribution
		}
		return reasons[i].Type.priority() < reasons[j].Type.priority()
	})
}
