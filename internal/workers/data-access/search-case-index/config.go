// internal/workers/data-access/search-case-index/config.go
package searchcaseindex

import "time"

type Config struct {
	Timeout     time.Duration
	DefaultSize int
	MaxSize     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		DefaultSize: 200,
		MaxSize:     1000,
	}
}
