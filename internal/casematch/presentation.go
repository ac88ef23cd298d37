// internal/casematch/presentation.go
package casematch

import (
	"fmt"
	"math"
)

// GradeDisplay is the fixed color and label of a grade.
type GradeDisplay struct {
	Grade Grade  `json:"grade"`
	Color string `json:"color"`
	Label string `json:"label"`
}

var gradeDisplays = map[Grade]GradeDisplay{
	GradeS: {Grade: GradeS, Color: "purple", Label: "최상"},
	GradeA: {Grade: GradeA, Color: "blue", Label: "상"},
	GradeB: {Grade: GradeB, Color: "green", Label: "중상"},
	GradeC: {Grade: GradeC, Color: "yellow", Label: "중"},
	GradeD: {Grade: GradeD, Color: "gray", Label: "하"},
}

func DisplayForGrade(g Grade) GradeDisplay {
	if d, ok := gradeDisplays[g]; ok {
		return d
	}
	return gradeDisplays[GradeD]
}

// PercentBadge floors the total so a badge never reads above its grade threshold.
func PercentBadge(total float64) string {
	if math.IsNaN(total) {
		total = 0
	}
	return fmt.Sprintf("%d%%", int(math.Floor(clampPercent(total))))
}

// OverflowLabel reports reasons hidden by the badge cap.
func OverflowLabel(hidden int) string {
	if hidden <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d개 추가 근거", hidden)
}

type CardView string

const (
	ViewSummary  CardView = "summary"
	ViewExpanded CardView = "expanded"
)

func (v CardView) Valid() bool {
	return v == ViewSummary || v == ViewExpanded
}

// CaseDetail is the clinical content shown only in the expanded view.
type CaseDetail struct {
	ChiefComplaint string   `json:"chiefComplaint"`
	Symptoms       []string `json:"symptoms"`
	Diagnosis      string   `json:"diagnosis"`
	Formula        string   `json:"formula"`
	Outcome        *Outcome `json:"treatmentOutcome,omitempty"`
	PatientAge     *int     `json:"patientAge,omitempty"`
	PatientGender  string   `json:"patientGender,omitempty"`
	Constitution   *string  `json:"patientConstitution,omitempty"`
	ClinicalNotes  string   `json:"clinicalNotes,omitempty"`
	DataSource     string   `json:"dataSource,omitempty"`
}

type MatchCard struct {
	CaseID        string        `json:"caseId"`
	Title         string        `json:"title"`
	Grade         GradeDisplay  `json:"grade"`
	Percent       string        `json:"percent"`
	Total         float64       `json:"total"`
	Badges        []MatchReason `json:"badges"`
	OverflowCount int           `json:"overflowCount"`
	OverflowLabel string        `json:"overflowLabel,omitempty"`
	Degraded      bool          `json:"degraded,omitempty"`
	Scores        *MatchScore   `json:"scores,omitempty"`
	Reasons       []MatchReason `json:"reasons,omitempty"`
	Detail        *CaseDetail   `json:"detail,omitempty"`
}

type PageInfo struct {
	Offset   int  `json:"offset"`
	Limit    int  `json:"limit"`
	Returned int  `json:"returned"`
	Total    int  `json:"total"`
	HasMore  bool `json:"hasMore"`
}

// MatchPage is the rendered response for one ranking.
type MatchPage struct {
	RunID         string        `json:"runId"`
	View          CardView      `json:"view"`
	Cards         []MatchCard   `json:"cards"`
	Page          PageInfo      `json:"page"`
	GradeCounts   map[Grade]int `json:"gradeCounts"`
	DegradedCount int           `json:"degradedCount"`
	ExcludedCount int           `json:"excludedCount"`
}

type Presenter struct {
	BadgeCap int
}

const DefaultBadgeCap = 3

func NewPresenter(badgeCap int) Presenter {
	if badgeCap <= 0 {
		badgeCap = DefaultBadgeCap
	}
	return Presenter{BadgeCap: badgeCap}
}

func (p Presenter) Card(m MatchedCase, view CardView) MatchCard {
	limit := p.BadgeCap
	if limit <= 0 {
		limit = DefaultBadgeCap
	}
	badges := m.Reasons
	hidden := 0
	if len(badges) > limit {
		hidden = len(badges) - limit
		badges = badges[:limit]
	}

	card := MatchCard{
		CaseID:        m.Case.ID,
		Title:         m.Case.Title,
		Grade:         DisplayForGrade(m.Score.Grade),
		Percent:       PercentBadge(m.Score.Total),
		Total:         m.Score.Total,
		Badges:        append([]MatchReason{}, badges...),
		OverflowCount: hidden,
		OverflowLabel: OverflowLabel(hidden),
		Degraded:      m.Score.Degraded,
	}

	if view == ViewExpanded {
		score := m.Score
		card.Scores = &score
		card.Reasons = append([]MatchReason{}, m.Reasons...)
		card.Detail = &CaseDetail{
			ChiefComplaint: m.Case.ChiefComplaint,
			Symptoms:       m.Case.Symptoms,
			Diagnosis:      m.Case.Diagnosis,
			Formula:        formulaLabel(&m.Case),
			Outcome:        m.Case.Outcome,
			PatientAge:     m.Case.PatientAge,
			Constitution:   m.Case.PatientConstitution,
			ClinicalNotes:  m.Case.ClinicalNotes,
			DataSource:     m.Case.DataSource,
		}
		if m.Case.PatientGender != nil {
			card.Detail.PatientGender = m.Case.PatientGender.Label()
		}
	}
	return card
}

func (p Presenter) Render(res *RankResult, view CardView) MatchPage {
	if !view.Valid() {
		view = ViewSummary
	}
	page := MatchPage{
		View:        view,
		Cards:       []MatchCard{},
		GradeCounts: map[Grade]int{},
	}
	if res == nil {
		return page
	}

	for _, m := range res.Matches {
		page.Cards = append(page.Cards, p.Card(m, view))
	}
	page.RunID = res.RunID
	page.GradeCounts = res.GradeCounts
	page.DegradedCount = res.DegradedCount
	page.ExcludedCount = len(res.Excluded)
	page.Page = PageInfo{
		Offset:   res.Offset,
		Limit:    res.Limit,
		Returned: len(res.Matches),
		Total:    res.TotalMatched,
		HasMore:  res.Offset+len(res.Matches) < res.TotalMatched,
	}
	return page
}
