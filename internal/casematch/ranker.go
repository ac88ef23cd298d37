// internal/casematch/ranker.go
package casematch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casematch-workers/internal/common/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "casematch-workers/internal/casematch"

// RankOptions filter and page a ranking. Zero Limit means no limit.
type RankOptions struct {
	MinGrade Grade `json:"minGrade,omitempty"`
	Offset   int   `json:"offset,omitempty"`
	Limit    int   `json:"limit,omitempty"`
}

func (o RankOptions) Validate() error {
	if o.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidQuery, o.Offset)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, o.Limit)
	}
	if o.MinGrade != "" && !o.MinGrade.Valid() {
		return fmt.Errorf("%w: unknown grade %q", ErrInvalidQuery, o.MinGrade)
	}
	return nil
}

// Exclusion is a candidate dropped because its score could not be trusted.
type Exclusion struct {
	CaseID string `json:"caseId"`
	Reason string `json:"reason"`
}

type RankResult struct {
	RunID           string        `json:"runId"`
	Matches         []MatchedCase `json:"matches"`
	TotalCandidates int           `json:"totalCandidates"`
	TotalMatched    int           `json:"totalMatched"`
	Offset          int           `json:"offset"`
	Limit           int           `json:"limit"`
	Excluded        []Exclusion   `json:"excluded,omitempty"`
	DegradedCount   int           `json:"degradedCount"`
	GradeCounts     map[Grade]int `json:"gradeCounts"`
	Duration        time.Duration `json:"-"`
}

// Ranker scores candidates against a query and orders them for display.
type Ranker struct {
	opts       Options
	aggregator *Aggregator
	keyword    *KeywordScorer
	metadata   *MetadataScorer
	vector     *VectorScorer
	reasons    *ReasonExtractor
	logger     logger.Logger

	aggregate func(vector, keyword, metadata float64) (MatchScore, error)
}

func NewRanker(opts Options, embedder Embedder, log logger.Logger) (*Ranker, error) {
	agg, err := NewAggregator(opts)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := &Ranker{
		opts:       opts,
		aggregator: agg,
		keyword:    NewKeywordScorer(opts.KeywordFields),
		metadata:   NewMetadataScorer(opts.Metadata, opts.AgeTolerance),
		vector:     NewVectorScorer(embedder, opts.VectorTimeout),
		reasons:    NewReasonExtractor(opts),
		logger:     log,
	}
	r.aggregate = agg.Aggregate
	return r, nil
}

type scored struct {
	match MatchedCase
	err   error
}

// Rank scores every candidate, sorts by total (ties keep input order), applies
// the grade filter and finally pages. Only an invalid query or options yield an error.
func (r *Ranker) Rank(ctx context.Context, q *Query, candidates []CandidateCase, ro RankOptions) (*RankResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ro.Validate(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "casematch.Rank")
	defer span.End()
	span.SetAttributes(attribute.Int("casematch.candidates", len(candidates)))

	start := time.Now()
	result := &RankResult{
		RunID:           uuid.NewString(),
		Matches:         []MatchedCase{},
		TotalCandidates: len(candidates),
		Offset:          ro.Offset,
		Limit:           ro.Limit,
		GradeCounts:     map[Grade]int{},
	}
	if len(candidates) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	qv := r.vector.Prepare(ctx, q)
	if qv.err != nil {
		r.logger.Warn("query embedding failed, vector scores degraded", map[string]interface{}{
			"runId": result.RunID,
			"error": qv.err.Error(),
		})
	}

	results := make([]scored, len(candidates))
	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.scoreOne(ctx, q, qv, &candidates[i])
		}(i)
	}
	wg.Wait()

	all := make([]MatchedCase, 0, len(results))
	for i, s := range results {
		if s.err != nil {
			result.Excluded = append(result.Excluded, Exclusion{CaseID: candidates[i].ID, Reason: s.err.Error()})
			r.logger.Warn("candidate excluded", map[string]interface{}{
				"runId":  result.RunID,
				"caseId": candidates[i].ID,
				"reason": s.err.Error(),
			})
			continue
		}
		if s.match.Score.Degraded {
			result.DegradedCount++
		}
		result.GradeCounts[s.match.Score.Grade]++
		all = append(all, s.match)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score.Total > all[j].Score.Total
	})

	if ro.MinGrade != "" {
		filtered := all[:0]
		for _, m := range all {
			if m.Score.Grade.Rank() >= ro.MinGrade.Rank() {
				filtered = append(filtered, m)
			}
		}
		all = filtered
	}
	result.TotalMatched = len(all)
	result.Matches = paginate(all, ro.Offset, ro.Limit)
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("casematch.matched", result.TotalMatched),
		attribute.Int("casematch.degraded", result.DegradedCount),
		attribute.Int("casematch.excluded", len(result.Excluded)),
	)
	if len(result.Excluded) > 0 {
		span.SetStatus(codes.Error, "candidates excluded")
	}

	r.logger.Info("ranking completed", map[string]interface{}{
		"runId":      result.RunID,
		"candidates": result.TotalCandidates,
		"matched":    result.TotalMatched,
		"returned":   len(result.Matches),
		"degraded":   result.DegradedCount,
		"excluded":   len(result.Excluded),
		"durationMs": result.Duration.Milliseconds(),
	})
	return result, nil
}

func (r *Ranker) scoreOne(ctx context.Context, q *Query, qv QueryVector, c *CandidateCase) scored {
	vec, vecErr := r.vector.Score(ctx, qv, c)
	kw := r.keyword.Score(q, c)
	md := r.metadata.Score(q, c)

	score, err := r.aggregate(vec, kw.Score, md.Score)
	if err != nil {
		return scored{err: err}
	}
	if vecErr != nil {
		score.Degraded = true
		score.DegradedReason = vecErr.Error()
	}

	out := *c
	out.Embedding = nil
	return scored{match: MatchedCase{
		Case:    out,
		Score:   score,
		Reasons: r.reasons.build(q, c, kw, md),
	}}
}

// Score rates a single candidate without ranking.
func (r *Ranker) Score(ctx context.Context, q *Query, c *CandidateCase) (MatchedCase, error) {
	if err := q.Validate(); err != nil {
		return MatchedCase{}, err
	}
	s := r.scoreOne(ctx, q, r.vector.Prepare(ctx, q), c)
	if s.err != nil {
		return MatchedCase{}, s.err
	}
	return s.match, nil
}

func paginate(matches []MatchedCase, offset, limit int) []MatchedCase {
	if offset >= len(matches) {
		return []MatchedCase{}
	}
	end := len(matches)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return matches[offset:end]
}
