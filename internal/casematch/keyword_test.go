// internal/casematch/keyword_test.go
package casematch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"list punctuation", "두통, 어지러움; 불면/구갈", []string{"두통", "어지러움", "불면", "구갈"}},
		{"multi-word term kept whole", "소화 불량, 복부  팽만", []string{"소화 불량", "복부 팽만"}},
		{"middle dot and ideographic comma", "두통·현훈、이명", []string{"두통", "현훈", "이명"}},
		{"case folded", "Headache, NAUSEA", []string{"headache", "nausea"}},
		{"fullwidth normalized", "ＡＢＣ，두통", []string{"abc", "두통"}},
		{"duplicates dropped", "두통, 두통 ,두통", []string{"두통"}},
		{"newline separated", "두통\n어지러움", []string{"두통", "어지러움"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, termKeys(splitTerms(tt.in)))
		})
	}
}

func TestKeywordScorer_EmptyQueryIsZero(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	c := soeumCase()

	res := s.Score(&Query{}, &c)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, math.IsNaN(res.Score))
	assert.Empty(t, res.Fields)

	res = s.Score(&Query{ChiefComplaint: "  ", Symptoms: []string{"", " "}, Diagnosis: strPtr("")}, &c)
	assert.Equal(t, 0.0, res.Score)
}

func TestKeywordScorer_PartialSymptomOverlap(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	c := soeumCase()

	res := s.Score(soeumQuery(), &c)
	assert.InDelta(t, 50.0, res.Score, 1e-9)
	require.Len(t, res.Fields, 1)
	assert.Equal(t, ReasonSymptom, res.Fields[0].Type)
	assert.Equal(t, []string{"두통"}, res.Fields[0].Matched)
	assert.Equal(t, 2, res.Fields[0].Terms)
}

func TestKeywordScorer_MultiWordTermsAreAtomic(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)

	q := &Query{Symptoms: []string{"소화 불량"}}
	split := CandidateCase{Symptoms: []string{"소화", "불량"}}
	whole := CandidateCase{Symptoms: []string{"만성 소화 불량"}}

	assert.Equal(t, 0.0, s.Score(q, &split).Score)
	assert.Equal(t, 100.0, s.Score(q, &whole).Score)
}

func TestKeywordScorer_CaseInsensitive(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	q := &Query{ChiefComplaint: "Migraine"}
	c := CandidateCase{ChiefComplaint: "MIGRAINE, nausea"}

	assert.Equal(t, 100.0, s.Score(q, &c).Score)
}

func TestKeywordScorer_RenormalizesOverPresentFields(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	c := CandidateCase{
		ChiefComplaint: "두통",
		Symptoms:       []string{"두통"},
		Diagnosis:      "간양상항",
		FormulaName:    "천마구등음",
		FormulaHanja:   strPtr("天麻鉤藤飮"),
	}

	t.Run("diagnosis only", func(t *testing.T) {
		res := s.Score(&Query{Diagnosis: strPtr("간양상항")}, &c)
		assert.InDelta(t, 100.0, res.Score, 1e-9)
	})

	t.Run("formula by hanja", func(t *testing.T) {
		res := s.Score(&Query{Formula: strPtr("天麻鉤藤飮")}, &c)
		assert.InDelta(t, 100.0, res.Score, 1e-9)
	})

	t.Run("chief complaint hit, diagnosis miss", func(t *testing.T) {
		res := s.Score(&Query{ChiefComplaint: "두통", Diagnosis: strPtr("비위허약")}, &c)
		// 0.35 / (0.35 + 0.20)
		assert.InDelta(t, 100*0.35/0.55, res.Score, 1e-9)
	})

	t.Run("all four fields", func(t *testing.T) {
		q := &Query{
			ChiefComplaint: "두통",
			Symptoms:       []string{"두통", "불면"},
			Diagnosis:      strPtr("간양상항"),
			Formula:        strPtr("반하백출천마탕"),
		}
		res := s.Score(q, &c)
		want := 100 * (0.35*1 + 0.35*0.5 + 0.20*1 + 0.10*0)
		assert.InDelta(t, want, res.Score, 1e-9)
	})
}

func TestKeywordScorer_ChiefComplaintMatchesCandidateSymptoms(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	q := &Query{ChiefComplaint: "어지러움"}
	c := CandidateCase{ChiefComplaint: "두통", Symptoms: []string{"어지러움"}}

	assert.Equal(t, 100.0, s.Score(q, &c).Score)
}

func TestKeywordScorer_NoCrossTermMatches(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	q := &Query{Symptoms: []string{"통어"}}
	c := CandidateCase{Symptoms: []string{"두통", "어지러움"}}

	assert.Equal(t, 0.0, s.Score(q, &c).Score)
}

func TestKeywordScorer_ScoreInRange(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	for _, c := range sampleCases() {
		c := c
		res := s.Score(soeumQuery(), &c)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestKeywordScorer_SyllablesInsideTermsDoNotMatch(t *testing.T) {
	s := NewKeywordScorer(DefaultOptions().KeywordFields)
	tests := []struct {
		name      string
		query     string
		candidate []string
		want      float64
	}{
		{"fever vs no fever", "열", []string{"무열"}, 0},
		{"cold vs chills", "한", []string{"오한"}, 0},
		{"pain vs headache", "통", []string{"두통"}, 0},
		{"word prefix of a word", "소화", []string{"소화불량"}, 0},
		{"leading words", "소화 불량", []string{"소화 불량 악화"}, 100},
		{"trailing word", "불량", []string{"소화 불량"}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CandidateCase{Symptoms: tt.candidate}
			res := s.Score(&Query{Symptoms: []string{tt.query}}, &c)
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestTermIndex_Contains(t *testing.T) {
	idx := newTermIndex([]string{"만성 소화 불량", "무열"})

	assert.True(t, idx.contains("만성 소화 불량"))
	assert.True(t, idx.contains("소화 불량"))
	assert.True(t, idx.contains("만성"))
	assert.False(t, idx.contains("열"))
	assert.False(t, idx.contains("화 불"))
	assert.False(t, idx.contains("불량 무열"))
	assert.False(t, idx.contains(""))
}
