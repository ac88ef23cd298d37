// internal/common/camunda/jobs_test.go
package camunda

import (
	"testing"

	"casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/validation"
	"casematch-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankVars struct {
	MinGrade string `json:"minGrade"`
	Offset   int    `json:"offset"`
}

func jobWith(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: "rank-case-matches", Variables: vars}}
}

func TestDecodeJob(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/activity-registry.json")
	require.NoError(t, err)
	v := validation.NewRegistryValidator(reg)

	tests := []struct {
		name      string
		vars      string
		validator InputValidator
		wantCode  errors.ErrorCode
	}{
		{
			name:      "valid",
			vars:      `{"query":{"chiefComplaint":"두통"},"candidates":[{"id":"case-1"}],"minGrade":"B","offset":2}`,
			validator: v,
		},
		{
			name:      "schema violation",
			vars:      `{"query":{"chiefComplaint":"두통"},"candidates":[],"minGrade":"Z"}`,
			validator: v,
			wantCode:  errors.ErrCodeValidationFailed,
		},
		{
			name:      "limit above maximum",
			vars:      `{"query":{"chiefComplaint":"두통"},"candidates":[],"limit":9223372036854775807}`,
			validator: v,
			wantCode:  errors.ErrCodeValidationFailed,
		},
		{
			name:      "not json",
			vars:      `{"query":`,
			validator: nil,
			wantCode:  errors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out rankVars
			err := DecodeJob(jobWith(tt.vars), "rank-case-matches", tt.validator, &out)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "B", out.MinGrade)
				assert.Equal(t, 2, out.Offset)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
		})
	}
}
