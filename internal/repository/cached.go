// internal/repository/cached.go
package repository

import (
	"context"
	"errors"
	"time"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/database"
	"casematch-workers/internal/common/logger"
)

// CachedCaseRepository serves GetByIDs from Redis and loads misses from the
// wrapped repository in one batch.
type CachedCaseRepository struct {
	inner  casematch.CaseRepository
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCaseRepository(inner casematch.CaseRepository, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedCaseRepository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedCaseRepository{inner: inner, redis: redis, ttl: ttl, logger: log}
}

func caseKey(id string) string {
	return "case:" + id
}

func (r *CachedCaseRepository) GetByIDs(ctx context.Context, ids []string) ([]casematch.CandidateCase, error) {
	hits := make(map[string]casematch.CandidateCase, len(ids))
	var misses []string
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var c casematch.CandidateCase
		err := r.redis.GetJSON(ctx, caseKey(id), &c)
		switch {
		case err == nil:
			hits[id] = c
		case errors.Is(err, database.ErrCacheMiss):
			misses = append(misses, id)
		default:
			r.logger.Warn("case cache read failed", map[string]interface{}{"caseId": id, "error": err.Error()})
			misses = append(misses, id)
		}
	}

	if len(misses) > 0 {
		loaded, err := r.inner.GetByIDs(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, c := range loaded {
			hits[c.ID] = c
			r.store(ctx, c)
		}
	}

	out := make([]casematch.CandidateCase, 0, len(hits))
	for _, id := range ids {
		c, ok := hits[id]
		if !ok {
			continue
		}
		delete(hits, id)
		out = append(out, c)
	}
	return out, nil
}

// List always reads through and refreshes the cache for the returned cases.
func (r *CachedCaseRepository) List(ctx context.Context, filter casematch.CaseFilter) ([]casematch.CandidateCase, error) {
	cases, err := r.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		r.store(ctx, c)
	}
	return cases, nil
}

func (r *CachedCaseRepository) store(ctx context.Context, c casematch.CandidateCase) {
	if err := r.redis.SetJSON(ctx, caseKey(c.ID), c, r.ttl); err != nil {
		r.logger.Warn("case cache write failed", map[string]interface{}{"caseId": c.ID, "error": err.Error()})
	}
}
