// internal/workers/data-access/search-case-index/queries/builders.go
package queries

import (
	"encoding/json"
	"fmt"
	"strings"

	"casematch-workers/internal/casematch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Field boosts for the full-text prefilter. Chief complaint and symptoms
// carry the most signal in the case index.
var textFields = []string{"chief_complaint^3", "symptoms^2", "title", "diagnosis", "clinical_notes"}

// BuildCaseQuery builds the bool query used to shortlist candidate cases.
// A query without any text falls back to match_all so metadata-only
// searches still return candidates.
func BuildCaseQuery(q *casematch.Query) map[string]interface{} {
	should := []interface{}{}

	if text := q.SemanticText(); text != "" {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": textFields,
				"type":   "best_fields",
			},
		})
	}
	for _, sym := range q.Symptoms {
		if s := strings.TrimSpace(sym); s != "" {
			should = append(should, map[string]interface{}{
				"term": map[string]interface{}{"symptoms.keyword": s},
			})
		}
	}
	if q.Diagnosis != nil && strings.TrimSpace(*q.Diagnosis) != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{"diagnosis": strings.TrimSpace(*q.Diagnosis)},
		})
	}
	if q.Formula != nil && strings.TrimSpace(*q.Formula) != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{"formula_name": strings.TrimSpace(*q.Formula)},
		})
	}

	if len(should) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"_id": "asc"}},
		}
	}

	boolQuery := map[string]interface{}{
		"should":               should,
		"minimum_should_match": 1,
	}
	if q.Constitution != nil {
		boolQuery["should"] = append(should, map[string]interface{}{
			"term": map[string]interface{}{
				"patient_constitution": map[string]interface{}{"value": string(*q.Constitution), "boost": 0.5},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

// BuildSearchRequest wraps the query body into a search request that
// returns document ids only.
func BuildSearchRequest(index string, q *casematch.Query, size int) (*esapi.SearchRequest, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	body, err := json.Marshal(BuildCaseQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encode case query: %w", err)
	}

	return &esapi.SearchRequest{
		Index:  []string{index},
		Body:   strings.NewReader(string(body)),
		Size:   &size,
		Source: []string{"false"},
	}, nil
}
