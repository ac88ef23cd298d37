// internal/workers/casematch/rank-case-matches/handler.go
package rankcasematches

import (
	"context"
	"errors"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/camunda"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-case-matches"
)

type Handler struct {
	config     *Config
	ranker     *casematch.Ranker
	validator  camunda.InputValidator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, ranker *casematch.Ranker, validator camunda.InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
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

	result, err := h.ranker.Rank(ctx, &input.Query, input.Candidates, casematch.RankOptions{
		MinGrade: input.MinGrade,
		Offset:   input.Offset,
		Limit:    input.Limit,
	})
	if err != nil {
		if errors.Is(err, casematch.ErrInvalidQuery) {
			return nil, apperrors.NewInvalidQueryError(err.Error())
		}
		return nil, apperrors.NewRankingFailedError(err)
	}

	metrics.ObserveRank(metrics.RankRunOf(result))

	if result.DegradedCount > 0 {
		h.logger.Warn("vector similarity degraded", map[string]interface{}{
			"runId":    result.RunID,
			"degraded": result.DegradedCount,
			"minGrade": string(input.MinGrade),
		})
	}

	return &Output{RankResult: result}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
