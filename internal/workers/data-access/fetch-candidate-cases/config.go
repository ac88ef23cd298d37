// internal/workers/data-access/fetch-candidate-cases/config.go
package fetchcandidatecases

import "time"

type Config struct {
	Timeout time.Duration
	// MaxCandidates bounds a filter listing when the input sets no limit.
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		MaxCandidates: 500,
	}
}
