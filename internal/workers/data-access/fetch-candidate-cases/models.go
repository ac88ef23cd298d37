// internal/workers/data-access/fetch-candidate-cases/models.go
package fetchcandidatecases

import "casematch-workers/internal/casematch"

// Input selects candidates by id when candidateIds is present (even if empty),
// otherwise by filter.
type Input struct {
	CandidateIDs []string     `json:"candidateIds"`
	Filter       *FilterInput `json:"filter,omitempty"`
}

type FilterInput struct {
	Constitution string `json:"constitution,omitempty"`
	Gender       string `json:"gender,omitempty"`
	MinAge       *int   `json:"minAge,omitempty"`
	MaxAge       *int   `json:"maxAge,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type Output struct {
	Candidates []casematch.CandidateCase `json:"candidates"`
	Count      int                       `json:"count"`
}
