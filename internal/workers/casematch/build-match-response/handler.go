// internal/workers/casematch/build-match-response/handler.go
package buildmatchresponse

import (
	"context"
	"time"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/camunda"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "build-match-response"

type Handler struct {
	config     *Config
	presenter  casematch.Presenter
	obs        *observability.Observability
	validator  camunda.InputValidator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, obs *observability.Observability, validator camunda.InputValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		presenter:  casematch.NewPresenter(config.BadgeCap),
		obs:        obs,
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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	camunda.CompleteJob(context.Background(), client, job, output, h.logger)
}

// Execute renders the ranking as a page of match cards.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.RankResult == nil {
		return nil, apperrors.NewValidationFailedError("rankResult is required")
	}
	view := input.View
	if view == "" {
		view = casematch.ViewSummary
	}
	if !view.Valid() {
		return nil, apperrors.NewValidationFailedError("unknown view " + string(view))
	}

	page := h.presenter.Render(input.RankResult, view)
	h.obs.RecordMatches(ctx, "workflow", len(page.Cards))

	h.logger.Info("match response built", map[string]interface{}{
		"requestId": input.RequestID,
		"runId":     page.RunID,
		"view":      string(view),
		"cards":     len(page.Cards),
		"hasMore":   page.Page.HasMore,
	})

	return &Output{
		Response: ResponsePayload{
			RequestID: input.RequestID,
			Status:    "success",
			Data:      page,
			Metadata: ResponseMetadata{
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Version:   h.config.AppVersion,
			},
		},
	}, nil
}
