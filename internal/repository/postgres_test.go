// internal/repository/postgres_test.go
package repository

import (
	"context"
	"errors"
	"testing"

	"casematch-workers/internal/casematch"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "title", "chief_complaint", "symptoms", "diagnosis", "formula_name", "formula_hanja",
	"patient_age", "patient_gender", "patient_constitution", "treatment_outcome",
	"clinical_notes", "original_text", "data_source", "embedding", "embedding_model",
}

func caseRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow("case-1", "두통 치험례", "두통", "{두통,현훈}", "간양상항", "천마구등음", "天麻鉤藤飮",
			int64(52), "F", "소양인", "완치", "", "", "동의보감", "{0.1,0.2}", "embed-v1").
		AddRow("case-2", "소화불량", "식욕부진", "{}", "비위허약", "육군자탕", nil,
			nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestPostgresCaseRepository_GetByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM clinical_cases WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(caseRows())

	repo := NewPostgresCaseRepository(db)
	got, err := repo.GetByIDs(context.Background(), []string{"case-2", "missing", "case-1", "case-2"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "case-2", got[0].ID)
	assert.Equal(t, "case-1", got[1].ID)

	first := got[1]
	assert.Equal(t, []string{"두통", "현훈"}, first.Symptoms)
	require.NotNil(t, first.PatientAge)
	assert.Equal(t, 52, *first.PatientAge)
	require.NotNil(t, first.PatientGender)
	assert.Equal(t, casematch.GenderFemale, *first.PatientGender)
	require.NotNil(t, first.Outcome)
	assert.Equal(t, casematch.OutcomeCured, *first.Outcome)
	assert.Equal(t, []float32{0.1, 0.2}, first.Embedding)
	assert.Equal(t, "embed-v1", first.EmbeddingModel)

	second := got[0]
	assert.Equal(t, []string{}, second.Symptoms)
	assert.Nil(t, second.FormulaHanja)
	assert.Nil(t, second.PatientAge)
	assert.Nil(t, second.Embedding)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCaseRepository_GetByIDsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	got, err := NewPostgresCaseRepository(db).GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCaseRepository_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM clinical_cases").WillReturnError(boom)

	_, err = NewPostgresCaseRepository(db).GetByIDs(context.Background(), []string{"case-1"})
	assert.ErrorIs(t, err, boom)
}

func TestBuildListQuery(t *testing.T) {
	constitution := casematch.ConstitutionSoyang
	gender := casematch.GenderMale
	minAge, maxAge := 30, 60

	tests := []struct {
		name      string
		filter    casematch.CaseFilter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "no filter",
			filter:    casematch.CaseFilter{},
			wantWhere: "FROM clinical_cases ORDER BY id",
			wantArgs:  nil,
		},
		{
			name:      "constitution with limit",
			filter:    casematch.CaseFilter{Constitution: &constitution, Limit: 50},
			wantWhere: "WHERE patient_constitution = $1 ORDER BY id LIMIT $2",
			wantArgs:  []interface{}{"소양인", 50},
		},
		{
			name:      "all fields",
			filter:    casematch.CaseFilter{Constitution: &constitution, Gender: &gender, MinAge: &minAge, MaxAge: &maxAge},
			wantWhere: "WHERE patient_constitution = $1 AND patient_gender = $2 AND patient_age >= $3 AND patient_age <= $4 ORDER BY id",
			wantArgs:  []interface{}{"소양인", "M", 30, 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			assert.Contains(t, query, tt.wantWhere)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPostgresCaseRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gender := casematch.GenderFemale
	mock.ExpectQuery(`WHERE patient_gender = \$1 ORDER BY id LIMIT \$2`).
		WithArgs("F", 10).
		WillReturnRows(caseRows())

	got, err := NewPostgresCaseRepository(db).List(context.Background(), casematch.CaseFilter{Gender: &gender, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
