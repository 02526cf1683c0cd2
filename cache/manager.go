// Package cache provides in-memory caching of hot visitor aggregates.
package cache

import (
	"sort"
	"sync"
	"time"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/models"
)

var GlobalInstance *Manager

// GetGlobalManager returns the global cache manager instance
func GetGlobalManager() *Manager {
	return GlobalInstance
}

type visitorEntry struct {
	visitor      *models.Visitor
	lastAccessed time.Time
}

// Manager keeps hot visitor aggregates in memory between beacon calls, plus
// one mutex per visitor so concurrent read-modify-write cycles for the same
// visitorId are serialized instead of racing at last-write-wins.
//
// Lock hierarchy: Manager.Mu (maps) is always acquired and released before a
// per-visitor mutex is taken; never the other way around.
//
// Lock entries are never removed by eviction, cleanup, or invalidation: a
// beacon may be holding one, and deleting it would let the next call mint a
// second mutex for the same visitor, unserializing the two cycles. An entry
// is a bare mutex per visitor ever seen, bounded by the id space.
type Manager struct {
	Mu       sync.RWMutex
	visitors map[string]*visitorEntry
	locks    map[string]*sync.Mutex
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		visitors: make(map[string]*visitorEntry),
		locks:    make(map[string]*sync.Mutex),
	}
}

// VisitorLock returns the mutex guarding read-modify-write cycles for one
// visitor, creating it on first use.
func (m *Manager) VisitorLock(visitorID string) *sync.Mutex {
	m.Mu.RLock()
	lock, exists := m.locks[visitorID]
	m.Mu.RUnlock()
	if exists {
		return lock
	}

	m.Mu.Lock()
	defer m.Mu.Unlock()

	// Double-check after acquiring write lock
	if lock, exists = m.locks[visitorID]; exists {
		return lock
	}
	lock = &sync.Mutex{}
	m.locks[visitorID] = lock
	return lock
}

// GetVisitor retrieves a cached visitor aggregate.
func (m *Manager) GetVisitor(visitorID string) (*models.Visitor, bool) {
	m.Mu.RLock()
	entry, exists := m.visitors[visitorID]
	m.Mu.RUnlock()

	if !exists {
		return nil, false
	}

	m.Mu.Lock()
	entry.lastAccessed = time.Now()
	m.Mu.Unlock()

	return entry.visitor, true
}

// SetVisitor stores a visitor aggregate, evicting the oldest entries when
// the cache bound is exceeded.
func (m *Manager) SetVisitor(v *models.Visitor) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if len(m.visitors) >= defaults.MaxCachedVisitors {
		// Keep the newest 80%
		m.evictOldestVisitorsUnsafe(defaults.MaxCachedVisitors * 8 / 10)
	}

	m.visitors[v.VisitorID] = &visitorEntry{
		visitor:      v,
		lastAccessed: time.Now(),
	}
}

// InvalidateVisitors drops cached entries after administrative bulk
// deletion. Locks are retained; see the Manager comment.
func (m *Manager) InvalidateVisitors(visitorIDs []string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	for _, id := range visitorIDs {
		delete(m.visitors, id)
	}
}

// Size returns the number of cached visitor aggregates.
func (m *Manager) Size() int {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	return len(m.visitors)
}

// evictOldestVisitorsUnsafe removes the least recently accessed entries.
// INTERNAL USE ONLY: Assumes caller already holds m.Mu.Lock()
func (m *Manager) evictOldestVisitorsUnsafe(keepCount int) {
	type entryAge struct {
		id       string
		lastUsed time.Time
	}

	var entries []entryAge
	for id, entry := range m.visitors {
		entries = append(entries, entryAge{id: id, lastUsed: entry.lastAccessed})
	}

	// Sort by age (oldest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].lastUsed.Before(entries[j].lastUsed)
	})

	toRemove := len(entries) - keepCount
	for i := 0; i < toRemove && i < len(entries); i++ {
		delete(m.visitors, entries[i].id)
	}
}

// CleanupIdle removes entries idle longer than the visitor cache TTL and
// returns how many were dropped.
func (m *Manager) CleanupIdle(ttl time.Duration) int {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, entry := range m.visitors {
		if entry.lastAccessed.Before(cutoff) {
			delete(m.visitors, id)
			removed++
		}
	}
	return removed
}
