// internal/workers/casematch/build-match-response/config.go
package buildmatchresponse

import "time"

type Config struct {
	BadgeCap   int
	AppVersion string
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BadgeCap: 3,
		Timeout:  5 * time.Second,
	}
}
