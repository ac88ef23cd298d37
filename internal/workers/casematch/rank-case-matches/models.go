// internal/workers/casematch/rank-case-matches/models.go
package rankcasematches

import "casematch-workers/internal/casematch"

type Input struct {
	Query      casematch.Query           `json:"query"`
	Candidates []casematch.CandidateCase `json:"candidates"`
	MinGrade   casematch.Grade           `json:"minGrade,omitempty"`
	Offset     int                       `json:"offset,omitempty"`
	Limit      int                       `json:"limit,omitempty"`
}

type Output struct {
	RankResult *casematch.RankResult `json:"rankResult"`
}
