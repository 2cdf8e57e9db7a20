// internal/workers/realestate/aggregate-listings/config.go
package aggregatelistings

import (
	"time"

	"github.com/Dr-Musa/najah-realestate/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
	// MaxListings caps the job output when the input sets no limit.
	MaxListings int
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:       90 * time.Second,
		MaxJobsActive: 5,
		MaxListings:   50,
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	return cfg
}
