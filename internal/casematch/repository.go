// internal/casematch/repository.go
package casematch

import (
	"context"
	"errors"
	"sync"
)

var ErrCaseNotFound = errors.New("CASE_NOT_FOUND")

// CaseFilter narrows a candidate listing. Nil fields do not filter.
type CaseFilter struct {
	Constitution *Constitution
	Gender       *Gender
	MinAge       *int
	MaxAge       *int
	Limit        int
}

// CaseRepository is read-only access to historical cases.
type CaseRepository interface {
	// GetByIDs returns cases in the order of ids, skipping unknown ids.
	GetByIDs(ctx context.Context, ids []string) ([]CandidateCase, error)
	List(ctx context.Context, filter CaseFilter) ([]CandidateCase, error)
}

// MemoryRepository serves a fixed case set from memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	cases []CandidateCase
	index map[string]int
}

func NewMemoryRepository(cases []CandidateCase) *MemoryRepository {
	r := &MemoryRepository{index: make(map[string]int, len(cases))}
	for _, c := range cases {
		r.put(c)
	}
	return r
}

func (r *MemoryRepository) Put(c CandidateCase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(c)
}

func (r *MemoryRepository) put(c CandidateCase) {
	if i, ok := r.index[c.ID]; ok {
		r.cases[i] = c
		return
	}
	r.index[c.ID] = len(r.cases)
	r.cases = append(r.cases, c)
}

func (r *MemoryRepository) Get(_ context.Context, id string) (CandidateCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return CandidateCase{}, ErrCaseNotFound
	}
	return r.cases[i], nil
}

func (r *MemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]CandidateCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CandidateCase, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if i, ok := r.index[id]; ok {
			out = append(out, r.cases[i])
		}
	}
	return out, nil
}

func (r *MemoryRepository) List(ctx context.Context, f CaseFilter) ([]CandidateCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CandidateCase, 0, len(r.cases))
	for _, c := range r.cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.Matches(&c) {
			continue
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Matches reports whether c passes the filter. Cases with unknown values fail
// a filter on that field.
func (f CaseFilter) Matches(c *CandidateCase) bool {
	if f.Constitution != nil {
		if c.PatientConstitution == nil || normalizeTerm(*c.PatientConstitution) != normalizeTerm(string(*f.Constitution)) {
			return false
		}
	}
	if f.Gender != nil {
		if c.PatientGender == nil || *c.PatientGender != *f.Gender {
			return false
		}
	}
	if f.MinAge != nil || f.MaxAge != nil {
		if c.PatientAge == nil {
			return false
		}
		if f.MinAge != nil && *c.PatientAge < *f.MinAge {
			return false
		}
		if f.MaxAge != nil && *c.PatientAge > *f.MaxAge {
			return false
		}
	}
	return true
}
