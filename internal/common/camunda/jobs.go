// internal/common/camunda/jobs.go
package camunda

import (
	"context"
	"encoding/json"
	"strings"

	"casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/metrics"
	"casematch-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// InputValidator checks job variables against the input schema registered for a task type.
type InputValidator interface {
	Validate(taskType string, input map[string]interface{}) (*validation.ValidationResult, error)
}

// DecodeJob validates the job variables for taskType and unmarshals them into dest.
// A nil validator skips schema validation.
func DecodeJob(job entities.Job, taskType string, v InputValidator, dest interface{}) error {
	if v != nil {
		vars, err := job.GetVariablesAsMap()
		if err != nil {
			return errors.NewValidationFailedError("variables are not a JSON object: " + err.Error())
		}
		result, err := v.Validate(taskType, vars)
		if err != nil {
			return errors.NewInternalError(err)
		}
		if !result.Valid {
			return errors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}
	if err := json.Unmarshal([]byte(job.Variables), dest); err != nil {
		return errors.NewValidationFailedError("parse input: " + err.Error())
	}
	return nil
}

// CompleteJob sends output as the job result variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	log.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}
