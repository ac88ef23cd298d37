// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"casematch-workers/internal/casematch"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Embedding    EmbeddingConfig         `mapstructure:"embedding"`
	Scoring      ScoringConfig           `mapstructure:"scoring"`
	Presentation PresentationConfig      `mapstructure:"presentation"`
	HTTP         HTTPConfig              `mapstructure:"http"`
	Tracing      TracingConfig           `mapstructure:"tracing"`
	Registry     RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	CaseIndex string   `mapstructure:"case_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	CaseCacheTTL int    `mapstructure:"case_cache_ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// EmbeddingConfig points at the text embedding service used by the vector scorer.
type EmbeddingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
	CacheTTL   int    `mapstructure:"cache_ttl"` // seconds, 0 disables the cache
}

// --- Scoring ---

type ScoreWeights struct {
	Vector   float64 `mapstructure:"vector"`
	Keyword  float64 `mapstructure:"keyword"`
	Metadata float64 `mapstructure:"metadata"`
}

type MetadataWeights struct {
	Constitution float64 `mapstructure:"constitution"`
	Age          float64 `mapstructure:"age"`
	Gender       float64 `mapstructure:"gender"`
}

type KeywordFieldWeights struct {
	ChiefComplaint float64 `mapstructure:"chief_complaint"`
	Symptom        float64 `mapstructure:"symptom"`
	Diagnosis      float64 `mapstructure:"diagnosis"`
	Formula        float64 `mapstructure:"formula"`
}

type GradeThresholds struct {
	S float64 `mapstructure:"s"`
	A float64 `mapstructure:"a"`
	B float64 `mapstructure:"b"`
	C float64 `mapstructure:"c"`
}

// ScoringConfig holds the product-tuned weights and grade thresholds.
type ScoringConfig struct {
	Weights         ScoreWeights        `mapstructure:"weights"`
	MetadataWeights MetadataWeights     `mapstructure:"metadata_weights"`
	KeywordFields   KeywordFieldWeights `mapstructure:"keyword_fields"`
	Grades          GradeThresholds     `mapstructure:"grades"`
	AgeTolerance    int                 `mapstructure:"age_tolerance"`  // years
	VectorTimeout   int                 `mapstructure:"vector_timeout"` // milliseconds
	Concurrency     int                 `mapstructure:"concurrency"`
}

// ToOptions converts the scoring section into ranker options.
func (s ScoringConfig) ToOptions() casematch.Options {
	return casematch.Options{
		Weights: casematch.Weights{
			Vector:   s.Weights.Vector,
			Keyword:  s.Weights.Keyword,
			Metadata: s.Weights.Metadata,
		},
		Metadata: casematch.MetadataWeights{
			Constitution: s.MetadataWeights.Constitution,
			Age:          s.MetadataWeights.Age,
			Gender:       s.MetadataWeights.Gender,
		},
		KeywordFields: casematch.KeywordFieldWeights{
			ChiefComplaint: s.KeywordFields.ChiefComplaint,
			Symptom:        s.KeywordFields.Symptom,
			Diagnosis:      s.KeywordFields.Diagnosis,
			Formula:        s.KeywordFields.Formula,
		},
		Grades: casematch.GradeThresholds{
			S: s.Grades.S,
			A: s.Grades.A,
			B: s.Grades.B,
			C: s.Grades.C,
		},
		AgeTolerance:  s.AgeTolerance,
		VectorTimeout: GetDuration(s.VectorTimeout),
		Concurrency:   s.Concurrency,
	}
}

// ScoringConfigFromOptions mirrors the ranker defaults as a config section.
func ScoringConfigFromOptions() ScoringConfig {
	o := casematch.DefaultOptions()
	return ScoringConfig{
		Weights:         ScoreWeights{Vector: o.Weights.Vector, Keyword: o.Weights.Keyword, Metadata: o.Weights.Metadata},
		MetadataWeights: MetadataWeights{Constitution: o.Metadata.Constitution, Age: o.Metadata.Age, Gender: o.Metadata.Gender},
		KeywordFields: KeywordFieldWeights{
			ChiefComplaint: o.KeywordFields.ChiefComplaint,
			Symptom:        o.KeywordFields.Symptom,
			Diagnosis:      o.KeywordFields.Diagnosis,
			Formula:        o.KeywordFields.Formula,
		},
		Grades:        GradeThresholds{S: o.Grades.S, A: o.Grades.A, B: o.Grades.B, C: o.Grades.C},
		AgeTolerance:  o.AgeTolerance,
		VectorTimeout: int(o.VectorTimeout / time.Millisecond),
		Concurrency:   o.Concurrency,
	}
}

// PresentationConfig controls card rendering and paging.
type PresentationConfig struct {
	BadgeCap        int `mapstructure:"badge_cap"`
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TracingConfig configures the Jaeger exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// RegistryConfig locates the activity registry used for input validation.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// Address returns the listen address for the HTTP server.
func (h HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

// CaseTTL returns the Redis case cache lifetime.
func (r RedisConfig) CaseTTL() time.Duration {
	return time.Duration(r.CaseCacheTTL) * time.Second
}
