// internal/casematch/models.go
package casematch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuery = errors.New("INVALID_QUERY")
)

// Constitution is one of the four Sasang constitution types.
type Constitution string

const (
	ConstitutionTaeyang Constitution = "태양인"
	ConstitutionTaeeum  Constitution = "태음인"
	ConstitutionSoyang  Constitution = "소양인"
	ConstitutionSoeum   Constitution = "소음인"
)

func (c Constitution) Valid() bool {
	switch c {
	case ConstitutionTaeyang, ConstitutionTaeeum, ConstitutionSoyang, ConstitutionSoeum:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "남성"
	case GenderFemale:
		return "여성"
	}
	return string(g)
}

// Outcome is the recorded treatment result of a historical case.
type Outcome string

const (
	OutcomeCured       Outcome = "완치"
	OutcomeImproved    Outcome = "호전"
	OutcomeIneffective Outcome = "무효"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeCured, OutcomeImproved, OutcomeIneffective:
		return true
	}
	return false
}

// Query is the practitioner's search input. Optional fields are nil when unknown.
type Query struct {
	ChiefComplaint string        `json:"chiefComplaint"`
	Symptoms       []string      `json:"symptoms"`
	Diagnosis      *string       `json:"diagnosis,omitempty"`
	Formula        *string       `json:"formula,omitempty"`
	Constitution   *Constitution `json:"constitution,omitempty"`
	Age            *int          `json:"age,omitempty"`
	Gender         *Gender       `json:"gender,omitempty"`
}

// Validate rejects field values that would otherwise be silently coerced during scoring.
func (q *Query) Validate() error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidQuery)
	}
	if q.Constitution != nil && !q.Constitution.Valid() {
		return fmt.Errorf("%w: unknown constitution %q", ErrInvalidQuery, *q.Constitution)
	}
	if q.Age != nil && (*q.Age < 0 || *q.Age > 150) {
		return fmt.Errorf("%w: age %d out of range", ErrInvalidQuery, *q.Age)
	}
	if q.Gender != nil && !q.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidQuery, *q.Gender)
	}
	return nil
}

// SemanticText is the text sent to the embedding service for this query.
func (q *Query) SemanticText() string {
	return semanticText(q.ChiefComplaint, q.Symptoms)
}

// HasMetadata reports whether any of constitution, age or gender is known.
func (q *Query) HasMetadata() bool {
	return q.Constitution != nil || q.Age != nil || q.Gender != nil
}

// CandidateCase is a historical clinical record available for matching.
type CandidateCase struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	ChiefComplaint      string    `json:"chiefComplaint"`
	Symptoms            []string  `json:"symptoms"`
	Diagnosis           string    `json:"diagnosis"`
	FormulaName         string    `json:"formulaName"`
	FormulaHanja        *string   `json:"formulaHanja,omitempty"`
	PatientAge          *int      `json:"patientAge,omitempty"`
	PatientGender       *Gender   `json:"patientGender,omitempty"`
	PatientConstitution *string   `json:"patientConstitution,omitempty"`
	Outcome             *Outcome  `json:"treatmentOutcome,omitempty"`
	ClinicalNotes       string    `json:"clinicalNotes,omitempty"`
	OriginalText        string    `json:"originalText,omitempty"`
	DataSource          string    `json:"dataSource,omitempty"`
	Embedding           []float32 `json:"embedding,omitempty"`
	EmbeddingModel      string    `json:"embeddingModel,omitempty"`
}

func (c *CandidateCase) SemanticText() string {
	return semanticText(c.ChiefComplaint, c.Symptoms)
}

func semanticText(chiefComplaint string, symptoms []string) string {
	parts := make([]string, 0, len(symptoms)+1)
	if s := strings.TrimSpace(chiefComplaint); s != "" {
		parts = append(parts, s)
	}
	for _, sym := range symptoms {
		if s := strings.TrimSpace(sym); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Grade is the letter classification of a total score.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Rank orders grades; a higher rank is a better grade.
func (g Grade) Rank() int {
	switch g {
	case GradeS:
		return 4
	case GradeA:
		return 3
	case GradeB:
		return 2
	case GradeC:
		return 1
	}
	return 0
}

func (g Grade) Valid() bool {
	switch g {
	case GradeS, GradeA, GradeB, GradeC, GradeD:
		return true
	}
	return false
}

// MatchScore is the derived score of one (query, candidate) pair.
type MatchScore struct {
	VectorSimilarity float64 `json:"vectorSimilarity"`
	KeywordMatch     float64 `json:"keywordMatch"`
	MetadataMatch    float64 `json:"metadataMatch"`
	Total            float64 `json:"total"`
	Grade            Grade   `json:"grade"`
	Degraded         bool    `json:"degraded,omitempty"`
	DegradedReason   string  `json:"degradedReason,omitempty"`
}

type ReasonType string

const (
	ReasonChiefComplaint ReasonType = "chief_complaint"
	ReasonSymptom        ReasonType = "symptom"
	ReasonDiagnosis      ReasonType = "diagnosis"
	ReasonFormula        ReasonType = "formula"
	ReasonConstitution   ReasonType = "constitution"
	ReasonAge            ReasonType = "age"
	ReasonGender         ReasonType = "gender"
)

// priority breaks contribution ties; lower sorts first.
func (t ReasonType) priority() int {
	switch t {
	case ReasonChiefComplaint:
		return 0
	case ReasonSymptom:
		return 1
	case ReasonDiagnosis:
		return 2
	case ReasonFormula:
		return 3
	case ReasonConstitution:
		return 4
	case ReasonAge:
		return 5
	case ReasonGender:
		return 6
	}
	return 7
}

type MatchReason struct {
	Type         ReasonType `json:"type"`
	Description  string     `json:"description"`
	Contribution float64    `json:"contribution"`
}

type MatchedCase struct {
	Case    CandidateCase `json:"case"`
	Score   MatchScore    `json:"matchScore"`
	Reasons []MatchReason `json:"matchReasons"`
}
