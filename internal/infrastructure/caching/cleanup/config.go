package cleanup

import (
	"time"

	"github.com/fundroad/fundroad-go/pkg/config"
)

// Config holds cleanup worker configuration, sourced from the central config package.
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
}

// NewConfig creates a new cleanup configuration by reading values
// from the already-initialized variables in the centralized /pkg/config package.
func NewConfig() *Config {
	return &Config{
		CleanupInterval:  config.SessionCleanupInterval,
		VerboseReporting: config.CleanupVerbose,
	}
}
