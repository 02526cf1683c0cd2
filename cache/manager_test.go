package cache

import (
	"fmt"
	"testing"
	"time"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/models"
)

func TestVisitorLockIsStablePerVisitor(t *testing.T) {
	m := NewManager()

	a := m.VisitorLock("vis-1")
	b := m.VisitorLock("vis-1")
	if a != b {
		t.Error("repeated lookups must return the same mutex")
	}

	other := m.VisitorLock("vis-2")
	if a == other {
		t.Error("different visitors must not share a mutex")
	}
}

func TestSetAndGetVisitor(t *testing.T) {
	m := NewManager()
	now := time.Now()

	if _, found := m.GetVisitor("vis-1"); found {
		t.Error("empty cache must miss")
	}

	v := models.NewVisitor("vis-1", now)
	m.SetVisitor(v)

	got, found := m.GetVisitor("vis-1")
	if !found || got.VisitorID != "vis-1" {
		t.Fatalf("cache miss after set, found=%v", found)
	}
	if m.Size() != 1 {
		t.Errorf("size = %d, want 1", m.Size())
	}
}

func TestInvalidateVisitors(t *testing.T) {
	m := NewManager()
	now := time.Now()
	m.SetVisitor(models.NewVisitor("vis-1", now))
	m.SetVisitor(models.NewVisitor("vis-2", now))
	m.VisitorLock("vis-1")

	m.InvalidateVisitors([]string{"vis-1", "ghost"})

	if _, found := m.GetVisitor("vis-1"); found {
		t.Error("vis-1 should be gone")
	}
	if _, found := m.GetVisitor("vis-2"); !found {
		t.Error("vis-2 should survive")
	}
}

func TestEvictionKeepsNewestEntries(t *testing.T) {
	prev := defaults.MaxCachedVisitors
	defaults.MaxCachedVisitors = 10
	defer func() { defaults.MaxCachedVisitors = prev }()

	m := NewManager()
	now := time.Now()
	for i := 0; i < 10; i++ {
		m.SetVisitor(models.NewVisitor(fmt.Sprintf("vis-%d", i), now))
	}

	// Crossing the bound evicts down to 80% before inserting.
	m.SetVisitor(models.NewVisitor("vis-new", now))

	if m.Size() != 9 {
		t.Errorf("size = %d, want 9 (8 kept + 1 inserted)", m.Size())
	}
	if _, found := m.GetVisitor("vis-new"); !found {
		t.Error("newest entry must survive eviction")
	}
}

func TestCleanupIdle(t *testing.T) {
	m := NewManager()
	now := time.Now()
	m.SetVisitor(models.NewVisitor("vis-1", now))
	m.SetVisitor(models.NewVisitor("vis-2", now))

	if removed := m.CleanupIdle(time.Hour); removed != 0 {
		t.Errorf("fresh entries removed: %d, want 0", removed)
	}

	if removed := m.CleanupIdle(-time.Second); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if m.Size() != 0 {
		t.Errorf("size = %d, want 0", m.Size())
	}
}

// A beacon may be holding a visitor mutex while a sweep runs. If the sweep
// dropped the lock entry, the next beacon would mint a second mutex for the
// same visitor and the two cycles would no longer be serialized.
func TestLocksSurviveSweeps(t *testing.T) {
	prev := defaults.MaxCachedVisitors
	defaults.MaxCachedVisitors = 4
	defer func() { defaults.MaxCachedVisitors = prev }()

	m := NewManager()
	now := time.Now()
	lock := m.VisitorLock("vis-0")

	for i := 0; i < 5; i++ {
		m.SetVisitor(models.NewVisitor(fmt.Sprintf("vis-%d", i), now))
	}
	if m.VisitorLock("vis-0") != lock {
		t.Error("eviction must not drop lock entries")
	}

	m.CleanupIdle(-time.Second)
	if m.VisitorLock("vis-0") != lock {
		t.Error("idle cleanup must not drop lock entries")
	}

	m.InvalidateVisitors([]string{"vis-0"})
	if m.VisitorLock("vis-0") != lock {
		t.Error("invalidation must not drop lock entries")
	}
}
