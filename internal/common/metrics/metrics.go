// internal/common/metrics/metrics.go
package metrics

import (
	"casematch-workers/internal/casematch"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casematch_rank_duration_seconds",
			Help:    "Time to score and rank one candidate set",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casematch_rank_candidates",
			Help:    "Number of candidates per ranking run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	DegradedScores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casematch_degraded_scores_total",
			Help: "Candidates scored without vector similarity",
		},
	)

	ExcludedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casematch_excluded_candidates_total",
			Help: "Candidates dropped because their score inputs were invalid",
		},
	)

	GradeAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casematch_grade_assignments_total",
			Help: "Match grades assigned before filtering",
		},
		[]string{"grade"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casematch_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

// RankRun is the subset of a ranking result recorded per run.
type RankRun struct {
	Seconds     float64
	Candidates  int
	Degraded    int
	Excluded    int
	GradeCounts map[string]int
}

// ObserveRank records one ranking run.
func ObserveRank(run RankRun) {
	RankDuration.Observe(run.Seconds)
	RankCandidates.Observe(float64(run.Candidates))
	DegradedScores.Add(float64(run.Degraded))
	ExcludedCandidates.Add(float64(run.Excluded))
	for grade, n := range run.GradeCounts {
		GradeAssignments.WithLabelValues(grade).Add(float64(n))
	}
}

// RankRunOf converts a ranking result into the per-run metrics record.
func RankRunOf(result *casematch.RankResult) RankRun {
	counts := make(map[string]int, len(result.GradeCounts))
	for grade, n := range result.GradeCounts {
		counts[string(grade)] = n
	}
	return RankRun{
		Seconds:     result.Duration.Seconds(),
		Candidates:  result.TotalCandidates,
		Degraded:    result.DegradedCount,
		Excluded:    len(result.Excluded),
		GradeCounts: counts,
	}
}
