// internal/workers/data-access/search-case-index/handler.go
package searchcaseindex

import (
	"context"
	"errors"

	"casematch-workers/internal/common/camunda"
	"casematch-workers/internal/common/database"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/workers/data-access/search-case-index/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-case-index"
)

type Handler struct {
	config     *Config
	es         *database.ElasticsearchClient
	validator  camunda.InputValidator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, es *database.ElasticsearchClient, validator camunda.InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		es:         es,
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
		return nil, apperrors.NewInvalidQueryError("input cannot be nil")
	}
	if err := input.Query.Validate(); err != nil {
		return nil, apperrors.NewInvalidQueryError(err.Error())
	}

	size := input.Size
	if size <= 0 {
		size = h.config.DefaultSize
	}
	if size > h.config.MaxSize {
		size = h.config.MaxSize
	}

	result, err := queries.Search(ctx, h.es, &input.Query, size)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewSearchTimeoutError(h.config.Timeout)
		case errors.Is(err, queries.ErrIndexNotFound), errors.Is(err, queries.ErrMissingIndex):
			return nil, apperrors.NewIndexNotFoundError(h.es.CaseIndex)
		default:
			return nil, apperrors.NewSearchQueryFailedError(err)
		}
	}

	h.logger.Info("case index searched", map[string]interface{}{
		"hits":  len(result.IDs),
		"total": result.TotalHits,
		"took":  result.Took,
	})

	return &Output{
		CandidateIDs: result.IDs,
		SearchTotal:  result.TotalHits,
		Took:         result.Took,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

