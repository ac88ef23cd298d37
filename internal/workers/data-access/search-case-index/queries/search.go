// internal/workers/data-access/search-case-index/queries/search.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/database"
)

var (
	ErrMissingIndex  = errors.New("index name is required")
	ErrIndexNotFound = errors.New("index not found")
)

type SearchResult struct {
	IDs       []string
	TotalHits int64
	Took      int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs the case prefilter and returns matching ids in relevance order.
func Search(ctx context.Context, es *database.ElasticsearchClient, q *casematch.Query, size int) (*SearchResult, error) {
	req, err := BuildSearchRequest(es.CaseIndex, q, size)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, es.Client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, es.CaseIndex)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return &SearchResult{
		IDs:       ids,
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}, nil
}
