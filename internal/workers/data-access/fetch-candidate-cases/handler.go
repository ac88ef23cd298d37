// internal/workers/data-access/fetch-candidate-cases/handler.go
package fetchcandidatecases

import (
	"context"
	"errors"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/camunda"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-candidate-cases"
)

type Handler struct {
	config     *Config
	repo       casematch.CaseRepository
	validator  camunda.InputValidator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, repo casematch.CaseRepository, validator camunda.InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		repo:       repo,
		validator:  validator,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeJob(job, TaskType, h.validator, &input); err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	camunda.CompleteJob(context.Background(), client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewValidationFailedError("input cannot be nil")
	}

	var (
		cases []casematch.CandidateCase
		err   error
	)
	if input.CandidateIDs != nil {
		cases, err = h.repo.GetByIDs(ctx, input.CandidateIDs)
	} else {
		var filter casematch.CaseFilter
		filter, err = h.buildFilter(input.Filter)
		if err != nil {
			return nil, err
		}
		cases, err = h.repo.List(ctx, filter)
	}
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewQueryTimeoutError(h.config.Timeout)
		case repository.IsConnectionError(err):
			return nil, apperrors.NewDatabaseConnectionError(err)
		default:
			return nil, apperrors.NewCandidateFetchFailedError(err)
		}
	}

	h.logger.Info("candidates fetched", map[string]interface{}{
		"requested": len(input.CandidateIDs),
		"found":     len(cases),
	})

	return &Output{Candidates: cases, Count: len(cases)}, nil
}

func (h *Handler) buildFilter(in *FilterInput) (casematch.CaseFilter, error) {
	filter := casematch.CaseFilter{Limit: h.config.MaxCandidates}
	if in == nil {
		return filter, nil
	}

	if in.Constitution != "" {
		c := casematch.Constitution(in.Constitution)
		if !c.Valid() {
			return filter, apperrors.NewInvalidQueryError("unknown constitution " + in.Constitution)
		}
		filter.Constitution = &c
	}
	if in.Gender != "" {
		g := casematch.Gender(in.Gender)
		if !g.Valid() {
			return filter, apperrors.NewInvalidQueryError("unknown gender " + in.Gender)
		}
		filter.Gender = &g
	}
	if in.MinAge != nil && in.MaxAge != nil && *in.MinAge > *in.MaxAge {
		return filter, apperrors.NewInvalidQueryError("minAge is greater than maxAge")
	}
	filter.MinAge = in.MinAge
	filter.MaxAge = in.MaxAge
	if in.Limit > 0 && (filter.Limit == 0 || in.Limit < filter.Limit) {
		filter.Limit = in.Limit
	}
	return filter, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
