package utils

import (
	"fmt"
	"time"
)

// TimeframeCutoff maps a dashboard timeframe token to the lastVisit cutoff.
// "all" (and the empty default) returns the zero time, meaning no filter.
func TimeframeCutoff(timeframe string, now time.Time) (time.Time, error) {
	switch timeframe {
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "30d":
		return now.Add(-30 * 24 * time.Hour), nil
	case "all", "":
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("invalid timeframe: %s", timeframe)
	}
}
