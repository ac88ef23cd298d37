// internal/casematch/helpers_test.go
package casematch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"casematch-workers/internal/common/logger"
)

// fakeEmbedder returns fixed vectors per text and fails for selected texts.
type fakeEmbedder struct {
	model   string
	vectors map[string][]float32
	fail    map[string]error
	block   bool
	calls   int64
	mu      sync.Mutex
	seen    []string
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		model:   "test-embed-v1",
		vectors: map[string][]float32{},
		fail:    map[string]error{},
	}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	f.seen = append(f.seen, text)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := f.fail[text]; ok {
		return nil, err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Model() string { return f.model }

func (f *fakeEmbedder) callCount() int64 { return atomic.LoadInt64(&f.calls) }

var errEmbedBoom = errors.New("embedding service unavailable")

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func genderPtr(g Gender) *Gender { return &g }

func constitutionPtr(c Constitution) *Constitution { return &c }

func outcomePtr(o Outcome) *Outcome { return &o }

func soeumQuery() *Query {
	return &Query{
		Symptoms:     []string{"두통", "어지러움"},
		Constitution: constitutionPtr(ConstitutionSoeum),
		Age:          intPtr(45),
		Gender:       genderPtr(GenderFemale),
	}
}

func soeumCase() CandidateCase {
	return CandidateCase{
		ID:                  "case-soeum-44f",
		Title:               "소음인 여성 두통 현훈 치험례",
		Symptoms:            []string{"두통", "현훈"},
		Diagnosis:           "기혈양허",
		FormulaName:         "보중익기탕",
		FormulaHanja:        strPtr("補中益氣湯"),
		PatientAge:          intPtr(44),
		PatientGender:       genderPtr(GenderFemale),
		PatientConstitution: strPtr("소음인"),
		Outcome:             outcomePtr(OutcomeImproved),
		DataSource:          "동의보감 임상례",
	}
}

func sampleCases() []CandidateCase {
	return []CandidateCase{
		{
			ID:                  "case-1",
			Title:               "태음인 소화불량",
			ChiefComplaint:      "소화 불량",
			Symptoms:            []string{"복부 팽만", "트림"},
			Diagnosis:           "비위허약",
			FormulaName:         "태음조위탕",
			PatientAge:          intPtr(52),
			PatientGender:       genderPtr(GenderMale),
			PatientConstitution: strPtr("태음인"),
		},
		soeumCase(),
		{
			ID:             "case-3",
			Title:          "정보 부족 사례",
			ChiefComplaint: "두통",
			Symptoms:       []string{"불면"},
		},
		{
			ID:                  "case-4",
			Title:               "소양인 두통",
			ChiefComplaint:      "두통",
			Symptoms:            []string{"두통", "어지러움", "구갈"},
			Diagnosis:           "간양상항",
			FormulaName:         "형방패독산",
			PatientAge:          intPtr(30),
			PatientGender:       genderPtr(GenderFemale),
			PatientConstitution: strPtr("소양인"),
		},
		{
			ID:                  "case-5",
			Title:               "소음인 남성 요통",
			ChiefComplaint:      "요통",
			Symptoms:            []string{"요통", "하지 냉감"},
			PatientAge:          intPtr(47),
			PatientGender:       genderPtr(GenderMale),
			PatientConstitution: strPtr("소음인"),
		},
	}
}
