// internal/common/validation/schema_test.go
package validation

import (
	"path/filepath"
	"testing"

	"casematch-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShippedRegistry(t *testing.T) *registry.ActivityRegistry {
	t.Helper()
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestRegistryValidator_RankInput(t *testing.T) {
	v := NewRegistryValidator(loadShippedRegistry(t))

	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		badFields []string
	}{
		{
			name: "valid",
			input: map[string]interface{}{
				"query":      map[string]interface{}{"symptoms": []string{"두통"}},
				"candidates": []map[string]interface{}{{"id": "case-1"}},
				"minGrade":   "B",
				"limit":      10,
			},
			valid: true,
		},
		{
			name:      "missing candidates",
			input:     map[string]interface{}{"query": map[string]interface{}{}},
			badFields: []string{"candidates"},
		},
		{
			name: "bad grade and negative offset",
			input: map[string]interface{}{
				"query":      map[string]interface{}{},
				"candidates": []interface{}{},
				"minGrade":   "Z",
				"offset":     -1,
			},
			badFields: []string{"minGrade", "offset"},
		},
		{
			name: "candidate without id",
			input: map[string]interface{}{
				"query":      map[string]interface{}{},
				"candidates": []map[string]interface{}{{"title": "x"}},
			},
			badFields: []string{"candidates.0.id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate("rank-case-matches", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			for _, f := range tt.badFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestRegistryValidator_SearchQueryConstraints(t *testing.T) {
	v := NewRegistryValidator(loadShippedRegistry(t))

	res, err := v.Validate("search-case-index", map[string]interface{}{
		"query": map[string]interface{}{"age": 200, "gender": "X"},
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("query"), 2)
}

func TestRegistryValidator_UnknownTaskPasses(t *testing.T) {
	v := NewRegistryValidator(loadShippedRegistry(t))
	res, err := v.Validate("not-registered", map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = NewRegistryValidator(nil).Validate("rank-case-matches", nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateInput_InvalidSchema(t *testing.T) {
	_, err := ValidateInput(map[string]interface{}{}, map[string]interface{}{"type": 12})
	assert.Error(t, err)

	res, err := ValidateInput(map[string]interface{}{"x": 1}, nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("casematch.cases.rank"))
	assert.Error(t, ValidateActivityNaming("rank-case-matches"))
}
