// internal/workers/casematch/build-match-response/models.go
package buildmatchresponse

import "casematch-workers/internal/casematch"

type Input struct {
	RequestID  string                `json:"requestId,omitempty"`
	RankResult *casematch.RankResult `json:"rankResult"`
	View       casematch.CardView    `json:"view,omitempty"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestID string              `json:"requestId,omitempty"`
	Status    string              `json:"status"`
	Data      casematch.MatchPage `json:"data"`
	Metadata  ResponseMetadata    `json:"metadata"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"` // ISO 8601
	Version   string `json:"version"`
}
