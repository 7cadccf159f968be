package config

import (
	"time"

	"cardmarket_bulk_import/internal/retry"
)

// ResilienceConfig groups the retry policies for the outward-facing calls of
// an import run. The set-catalog fetch deliberately has no policy here: a
// failed reference fetch is surfaced to the user, who restarts the import.
type ResilienceConfig struct {
	PageFetch    retry.Config
	SheetRead    retry.Config
	Notification retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	PageFetch: retry.Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   15 * time.Second,
		Timeout:    20 * time.Second,
	},
	SheetRead: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	Notification: retry.Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Timeout:    10 * time.Second,
	},
}
