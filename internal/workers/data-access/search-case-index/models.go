// internal/workers/data-access/search-case-index/models.go
package searchcaseindex

import "casematch-workers/internal/casematch"

type Input struct {
	Query casematch.Query `json:"query"`
	Size  int             `json:"size,omitempty"`
}

type Output struct {
	CandidateIDs []string `json:"candidateIds"`
	SearchTotal  int64    `json:"searchTotal"`
	Took         int64    `json:"took"` // milliseconds
}
