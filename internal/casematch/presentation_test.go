// internal/casematch/presentation_test.go
package casematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayForGrade(t *testing.T) {
	tests := []struct {
		grade Grade
		color string
		label string
	}{
		{GradeS, "purple", "최상"},
		{GradeA, "blue", "상"},
		{GradeB, "green", "중상"},
		{GradeC, "yellow", "중"},
		{GradeD, "gray", "하"},
		{Grade("?"), "gray", "하"},
	}

	for _, tt := range tests {
		d := DisplayForGrade(tt.grade)
		assert.Equal(t, tt.color, d.Color, string(tt.grade))
		assert.Equal(t, tt.label, d.Label, string(tt.grade))
	}
}

func TestPercentBadge(t *testing.T) {
	assert.Equal(t, "87%", PercentBadge(87.4))
	assert.Equal(t, "89%", PercentBadge(89.99))
	assert.Equal(t, "100%", PercentBadge(100))
	assert.Equal(t, "0%", PercentBadge(0))
	assert.Equal(t, "0%", PercentBadge(-3))
}

func TestOverflowLabel(t *testing.T) {
	assert.Equal(t, "", OverflowLabel(0))
	assert.Equal(t, "+2개 추가 근거", OverflowLabel(2))
}

func sampleMatched() MatchedCase {
	return MatchedCase{
		Case: soeumCase(),
		Score: MatchScore{
			VectorSimilarity: 80, KeywordMatch: 50, MetadataMatch: 100, Total: 77, Grade: GradeA,
		},
		Reasons: []MatchReason{
			{Type: ReasonSymptom, Description: "증상 일치: 두통", Contribution: 15},
			{Type: ReasonConstitution, Description: "체질 일치: 소음인", Contribution: 12},
			{Type: ReasonAge, Description: "연령 유사: 44세 (±5세)", Contribution: 9},
			{Type: ReasonGender, Description: "성별 일치: 여성", Contribution: 9},
			{Type: ReasonDiagnosis, Description: "진단 일치: 기혈양허", Contribution: 6},
		},
	}
}

func TestPresenter_SummaryCard(t *testing.T) {
	p := NewPresenter(0)
	card := p.Card(sampleMatched(), ViewSummary)

	assert.Equal(t, "case-soeum-44f", card.CaseID)
	assert.Equal(t, "77%", card.Percent)
	assert.Equal(t, "blue", card.Grade.Color)
	require.Len(t, card.Badges, 3)
	assert.Equal(t, ReasonSymptom, card.Badges[0].Type)
	assert.Equal(t, 2, card.OverflowCount)
	assert.Equal(t, "+2개 추가 근거", card.OverflowLabel)
	assert.Nil(t, card.Scores)
	assert.Nil(t, card.Detail)
	assert.Empty(t, card.Reasons)
}

func TestPresenter_ExpandedCard(t *testing.T) {
	p := NewPresenter(5)
	card := p.Card(sampleMatched(), ViewExpanded)

	assert.Len(t, card.Badges, 5)
	assert.Equal(t, 0, card.OverflowCount)
	assert.Empty(t, card.OverflowLabel)
	require.NotNil(t, card.Scores)
	assert.Equal(t, 80.0, card.Scores.VectorSimilarity)
	require.NotNil(t, card.Detail)
	assert.Equal(t, "보중익기탕(補中益氣湯)", card.Detail.Formula)
	assert.Equal(t, "여성", card.Detail.PatientGender)
	assert.Len(t, card.Reasons, 5)
}

func TestPresenter_CardDoesNotAliasReasons(t *testing.T) {
	m := sampleMatched()
	card := NewPresenter(3).Card(m, ViewSummary)
	card.Badges[0].Description = "changed"

	assert.Equal(t, "증상 일치: 두통", m.Reasons[0].Description)
}

func TestPresenter_Render(t *testing.T) {
	res := &RankResult{
		RunID:         "run-1",
		Matches:       []MatchedCase{sampleMatched(), sampleMatched()},
		TotalMatched:  5,
		Offset:        0,
		Limit:         2,
		DegradedCount: 1,
		Excluded:      []Exclusion{{CaseID: "bad", Reason: "INVALID_SCORE_INPUT"}},
		GradeCounts:   map[Grade]int{GradeA: 2, GradeC: 3},
	}

	page := NewPresenter(3).Render(res, "bogus")

	assert.Equal(t, ViewSummary, page.View)
	assert.Equal(t, "run-1", page.RunID)
	assert.Len(t, page.Cards, 2)
	assert.Equal(t, PageInfo{Offset: 0, Limit: 2, Returned: 2, Total: 5, HasMore: true}, page.Page)
	assert.Equal(t, 1, page.ExcludedCount)
	assert.Equal(t, 1, page.DegradedCount)
	assert.Equal(t, 3, page.GradeCounts[GradeC])
}

func TestPresenter_RenderEmpty(t *testing.T) {
	page := NewPresenter(3).Render(&RankResult{Matches: []MatchedCase{}, GradeCounts: map[Grade]int{}}, ViewExpanded)
	assert.NotNil(t, page.Cards)
	assert.Empty(t, page.Cards)
	assert.False(t, page.Page.HasMore)

	page = NewPresenter(3).Render(nil, ViewSummary)
	assert.Empty(t, page.Cards)
}
