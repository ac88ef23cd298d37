// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"casematch-workers/internal/casematch"

	"github.com/lib/pq"
)

const caseColumns = `id, title, chief_complaint, symptoms, diagnosis, formula_name, formula_hanja,
	patient_age, patient_gender, patient_constitution, treatment_outcome,
	clinical_notes, original_text, data_source, embedding, embedding_model`

// PostgresCaseRepository reads historical cases from the clinical_cases table.
type PostgresCaseRepository struct {
	db *sql.DB
}

func NewPostgresCaseRepository(db *sql.DB) *PostgresCaseRepository {
	return &PostgresCaseRepository{db: db}
}

// GetByIDs returns the cases in the order of ids, skipping unknown and repeated IDs.
func (r *PostgresCaseRepository) GetByIDs(ctx context.Context, ids []string) ([]casematch.CandidateCase, error) {
	if len(ids) == 0 {
		return []casematch.CandidateCase{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+caseColumns+` FROM clinical_cases WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query cases by id: %w", err)
	}
	defer rows.Close()

	found, err := scanCases(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]casematch.CandidateCase, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	out := make([]casematch.CandidateCase, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out, nil
}

// List returns cases matching filter ordered by id.
func (r *PostgresCaseRepository) List(ctx context.Context, filter casematch.CaseFilter) ([]casematch.CandidateCase, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	return scanCases(rows)
}

func buildListQuery(filter casematch.CaseFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Constitution != nil {
		add("patient_constitution = $%d", string(*filter.Constitution))
	}
	if filter.Gender != nil {
		add("patient_gender = $%d", string(*filter.Gender))
	}
	if filter.MinAge != nil {
		add("patient_age >= $%d", *filter.MinAge)
	}
	if filter.MaxAge != nil {
		add("patient_age <= $%d", *filter.MaxAge)
	}

	var b strings.Builder
	b.WriteString("SELECT " + caseColumns + " FROM clinical_cases")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func scanCases(rows *sql.Rows) ([]casematch.CandidateCase, error) {
	out := []casematch.CandidateCase{}
	for rows.Next() {
		var (
			c                                    casematch.CandidateCase
			hanja, gender, constitution, outcome sql.NullString
			notes, original, source, embedModel  sql.NullString
			age                                  sql.NullInt64
			symptoms                             []string
			embedding                            []float32
		)
		if err := rows.Scan(
			&c.ID, &c.Title, &c.ChiefComplaint, pq.Array(&symptoms), &c.Diagnosis,
			&c.FormulaName, &hanja, &age, &gender, &constitution, &outcome,
			&notes, &original, &source, pq.Array(&embedding), &embedModel,
		); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}

		c.Symptoms = symptoms
		if c.Symptoms == nil {
			c.Symptoms = []string{}
		}
		if hanja.Valid {
			c.FormulaHanja = &hanja.String
		}
		if age.Valid {
			a := int(age.Int64)
			c.PatientAge = &a
		}
		if gender.Valid {
			g := casematch.Gender(gender.String)
			c.PatientGender = &g
		}
		if constitution.Valid {
			c.PatientConstitution = &constitution.String
		}
		if outcome.Valid {
			o := casematch.Outcome(outcome.String)
			c.Outcome = &o
		}
		c.ClinicalNotes = notes.String
		c.OriginalText = original.String
		c.DataSource = source.String
		if len(embedding) > 0 {
			c.Embedding = embedding
			c.EmbeddingModel = embedModel.String
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}
