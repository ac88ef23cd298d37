// internal/service/match.go
package service

import (
	"context"
	"errors"
	"strings"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/database"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/metrics"
	"casematch-workers/internal/common/observability"
	"casematch-workers/internal/repository"
	"casematch-workers/internal/workers/data-access/search-case-index/queries"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "casematch-workers/internal/service"

// MatchRequest is one synchronous case-match search.
type MatchRequest struct {
	Query        casematch.Query    `json:"query"`
	CandidateIDs []string           `json:"candidateIds,omitempty"`
	MinGrade     casematch.Grade    `json:"minGrade,omitempty"`
	Offset       int                `json:"offset,omitempty"`
	Limit        int                `json:"limit,omitempty"`
	View         casematch.CardView `json:"view,omitempty"`
}

// Searcher shortlists candidate case ids for a query.
type Searcher interface {
	Search(ctx context.Context, q *casematch.Query, size int) ([]string, error)
}

// ESSearcher runs the case prefilter against Elasticsearch.
type ESSearcher struct {
	es *database.ElasticsearchClient
}

func NewESSearcher(es *database.ElasticsearchClient) *ESSearcher {
	return &ESSearcher{es: es}
}

func (s *ESSearcher) Search(ctx context.Context, q *casematch.Query, size int) ([]string, error) {
	res, err := queries.Search(ctx, s.es, q, size)
	if err != nil {
		return nil, err
	}
	return res.IDs, nil
}

type Options struct {
	SearchSize      int
	MaxCandidates   int
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultOptions() Options {
	return Options{
		SearchSize:      200,
		MaxCandidates:   500,
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

// MatchService runs prefilter, fetch, rank and render for API callers.
type MatchService struct {
	searcher  Searcher
	repo      casematch.CaseRepository
	ranker    *casematch.Ranker
	presenter casematch.Presenter
	obs       *observability.Observability
	opts      Options
	logger    logger.Logger
}

// NewMatchService builds the service. A nil searcher lists candidates from
// the repository directly.
func NewMatchService(searcher Searcher, repo casematch.CaseRepository, ranker *casematch.Ranker,
	presenter casematch.Presenter, obs *observability.Observability, opts Options, log logger.Logger) *MatchService {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &MatchService{
		searcher:  searcher,
		repo:      repo,
		ranker:    ranker,
		presenter: presenter,
		obs:       obs,
		opts:      opts,
		logger:    log.WithFields(map[string]interface{}{"component": "match-service"}),
	}
}

// Match returns one page of rendered matches for req.
func (s *MatchService) Match(ctx context.Context, req MatchRequest) (*casematch.MatchPage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "MatchService.Match")
	defer span.End()

	if err := req.Query.Validate(); err != nil {
		return nil, apperrors.NewInvalidQueryError(err.Error())
	}
	view := req.View
	if view == "" {
		view = casematch.ViewSummary
	}
	if !view.Valid() {
		return nil, apperrors.NewInvalidQueryError("unknown view " + string(view))
	}

	candidates, err := s.candidates(ctx, &req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("casematch.candidates", len(candidates)))

	result, err := s.ranker.Rank(ctx, &req.Query, candidates, casematch.RankOptions{
		MinGrade: req.MinGrade,
		Offset:   req.Offset,
		Limit:    s.pageSize(req.Limit),
	})
	if err != nil {
		if errors.Is(err, casematch.ErrInvalidQuery) {
			return nil, apperrors.NewInvalidQueryError(err.Error())
		}
		return nil, apperrors.NewRankingFailedError(err)
	}
	metrics.ObserveRank(metrics.RankRunOf(result))

	page := s.presenter.Render(result, view)
	s.obs.RecordMatches(ctx, "api", len(page.Cards))
	return &page, nil
}

func (s *MatchService) candidates(ctx context.Context, req *MatchRequest) ([]casematch.CandidateCase, error) {
	ids := req.CandidateIDs
	if ids == nil && s.searcher != nil {
		found, err := s.searcher.Search(ctx, &req.Query, s.opts.SearchSize)
		if err != nil {
			s.logger.Warn("case index search failed, listing candidates instead", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			ids = found
		}
	}

	var (
		cases []casematch.CandidateCase
		err   error
	)
	if ids != nil {
		cases, err = s.repo.GetByIDs(ctx, ids)
	} else {
		cases, err = s.repo.List(ctx, casematch.CaseFilter{Limit: s.opts.MaxCandidates})
	}
	if err != nil {
		if repository.IsConnectionError(err) {
			return nil, apperrors.NewDatabaseConnectionError(err)
		}
		return nil, apperrors.NewCandidateFetchFailedError(err)
	}
	if len(req.CandidateIDs) > 0 && len(cases) == 0 {
		return nil, apperrors.NewCaseNotFoundError(strings.Join(req.CandidateIDs, ","))
	}
	return cases, nil
}

func (s *MatchService) pageSize(limit int) int {
	if limit <= 0 {
		limit = s.opts.DefaultPageSize
	}
	if s.opts.MaxPageSize > 0 && limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}
	return limit
}
