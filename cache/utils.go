// Package cache provides utility functions for TTL handling and cleanup.
package cache

import (
	"log"
	"time"

	"github.com/rarecask/leadtrack-go/config"
)

// Environment-configurable cache bounds
var (
	VisitorCacheTTL = config.VisitorCacheTTL
	CleanupInterval = config.CleanupInterval
)

// IsExpired checks if a cached item has exceeded its TTL
// LOCKING: None required (pure computation)
func IsExpired(cachedAt time.Time, ttl time.Duration) bool {
	return time.Since(cachedAt) > ttl
}

// StartCleanupRoutine starts a background goroutine that evicts idle visitor
// aggregates on an interval.
func StartCleanupRoutine(manager *Manager) {
	go func() {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			removed := manager.CleanupIdle(VisitorCacheTTL)
			if removed > 0 {
				log.Printf("Cache cleanup: evicted %d idle visitors, %d remaining",
					removed, manager.Size())
			}
		}
	}()
}
