package models

import (
	"fmt"
	"testing"
	"time"
)

var testGap = 30 * time.Minute

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func TestTouchSessionStartsFirstSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	v := NewVisitor("vis-1", now)

	v.TouchSession(now, 0, "https://google.com/search", testGap, sequentialIDs())

	if v.CurrentSession == nil {
		t.Fatal("expected a current session")
	}
	if v.CurrentSession.PageViews != 1 {
		t.Errorf("new session should start with at least one page view, got %d", v.CurrentSession.PageViews)
	}
	if v.CurrentSession.Referrer != "https://google.com/search" {
		t.Errorf("referrer not recorded, got %q", v.CurrentSession.Referrer)
	}
	if v.TotalVisits != 1 {
		t.Errorf("totalVisits = %d, want 1", v.TotalVisits)
	}
	if len(v.ClosedSessions) != 0 {
		t.Errorf("closedSessions = %d, want 0", len(v.ClosedSessions))
	}
}

func TestTouchSessionGapBoundary(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		elapsed       time.Duration
		wantClosed    int
		wantVisits    int
		wantPageViews int
	}{
		{"within gap extends", 29 * time.Minute, 0, 1, 3},
		{"exactly at gap extends", 30 * time.Minute, 0, 1, 3},
		{"past gap rotates", 30*time.Minute + time.Second, 1, 2, 2},
		{"long idle rotates", 3 * time.Hour, 1, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := sequentialIDs()
			v := NewVisitor("vis-1", start)
			v.TouchSession(start, 1, "", testGap, ids)

			v.TouchSession(start.Add(tt.elapsed), 2, "", testGap, ids)

			if len(v.ClosedSessions) != tt.wantClosed {
				t.Errorf("closedSessions = %d, want %d", len(v.ClosedSessions), tt.wantClosed)
			}
			if v.TotalVisits != tt.wantVisits {
				t.Errorf("totalVisits = %d, want %d", v.TotalVisits, tt.wantVisits)
			}
			if v.CurrentSession.PageViews != tt.wantPageViews {
				t.Errorf("current session pageViews = %d, want %d", v.CurrentSession.PageViews, tt.wantPageViews)
			}
		})
	}
}

func TestTouchSessionClosedSessionFrozen(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ids := sequentialIDs()
	v := NewVisitor("vis-1", start)

	v.TouchSession(start, 1, "", testGap, ids)
	mid := start.Add(10 * time.Minute)
	v.TouchSession(mid, 1, "", testGap, ids)
	v.TouchSession(start.Add(2*time.Hour), 1, "", testGap, ids)

	closed := v.ClosedSessions[0]
	if closed.EndTime == nil || !closed.EndTime.Equal(mid) {
		t.Errorf("closed session endTime should stay at last activity, got %v", closed.EndTime)
	}
	if closed.Duration != int(mid.Sub(start).Seconds()) {
		t.Errorf("closed session duration = %d, want %d", closed.Duration, int(mid.Sub(start).Seconds()))
	}
	if v.CurrentSession.SessionID == closed.SessionID {
		t.Error("rotated session should have a fresh id")
	}
}

func TestRecordPageVisitAccumulates(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	v := NewVisitor("vis-1", now)

	v.RecordPageVisit(now, PageVisitInput{URL: "/pricing", Title: "Pricing", TimeSpent: 30, ScrollDepth: 80, Clicks: 2})
	v.RecordPageVisit(now.Add(time.Minute), PageVisitInput{URL: "/pricing", TimeSpent: 10, ScrollDepth: 40, Clicks: 1})
	v.RecordPageVisit(now.Add(2*time.Minute), PageVisitInput{URL: "/about", TimeSpent: 5})

	if len(v.PagesVisited) != 2 {
		t.Fatalf("expected one entry per distinct URL, got %d", len(v.PagesVisited))
	}

	pricing := v.PagesVisited["/pricing"]
	if pricing.Visits != 2 {
		t.Errorf("visits = %d, want 2", pricing.Visits)
	}
	if pricing.TotalTimeSpent != 40 {
		t.Errorf("totalTimeSpent = %d, want 40", pricing.TotalTimeSpent)
	}
	if pricing.AverageTimeSpent != 20 {
		t.Errorf("averageTimeSpent = %v, want totalTimeSpent/visits = 20", pricing.AverageTimeSpent)
	}
	if pricing.MaxScrollDepth != 80 {
		t.Errorf("maxScrollDepth = %d, want 80 (never decreases)", pricing.MaxScrollDepth)
	}
	if pricing.Clicks != 3 {
		t.Errorf("clicks = %d, want 3", pricing.Clicks)
	}
	if pricing.Title != "Pricing" {
		t.Errorf("title should survive an untitled revisit, got %q", pricing.Title)
	}

	if v.Behavior.TotalPageViews != 3 {
		t.Errorf("behavior.totalPageViews = %d, want 3", v.Behavior.TotalPageViews)
	}
	if v.Behavior.TotalTimeSpent != 45 {
		t.Errorf("behavior.totalTimeSpent = %d, want 45", v.Behavior.TotalTimeSpent)
	}
}

func TestAddInterestsDeduplicates(t *testing.T) {
	now := time.Now()
	v := NewVisitor("vis-1", now)

	v.AddInterests([]string{"pricing", "Features"})
	v.AddInterests([]string{"PRICING", "", "  ", "integrations"})

	want := []string{"pricing", "Features", "integrations"}
	if len(v.Behavior.Interests) != len(want) {
		t.Fatalf("interests = %v, want %v", v.Behavior.Interests, want)
	}
	for i, tag := range want {
		if v.Behavior.Interests[i] != tag {
			t.Errorf("interests[%d] = %q, want %q", i, v.Behavior.Interests[i], tag)
		}
	}
}

func TestCaptureFieldKeepsLastValue(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	v := NewVisitor("vis-1", now)

	v.CaptureField(now, "contact", "email", "a@", "/contact")
	later := now.Add(5 * time.Second)
	v.CaptureField(later, "contact", "email", "a@example.com", "/contact")
	v.CaptureField(later, "contact", "message", "hi", "")

	interaction := v.FormInteractions["contact"]
	if interaction == nil {
		t.Fatal("expected a form interaction for contact")
	}
	if len(interaction.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(interaction.Fields))
	}

	field := interaction.Fields["email"]
	if field.LastValue != "a@example.com" {
		t.Errorf("lastValue = %q, want the most recent value", field.LastValue)
	}
	if !field.LastUpdated.Equal(later) {
		t.Errorf("lastUpdated = %v, want %v", field.LastUpdated, later)
	}
	if !field.Interacted || !field.Completed {
		t.Error("captured field should be marked interacted and completed")
	}
	if interaction.PageURL != "/contact" {
		t.Errorf("pageUrl = %q, want the reported page to stick", interaction.PageURL)
	}
}

func TestApplyIdentity(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		fullName   string
		phone      string
		identified bool
		wantFirst  string
		wantLast   string
	}{
		{"email only", "a@example.com", "", "", true, "", ""},
		{"single name", "", "Cher", "", true, "Cher", ""},
		{"two part name", "", "Ada Lovelace", "", true, "Ada", "Lovelace"},
		{"multi part name", "", "Jean Claude Van Damme", "", true, "Jean", "Claude Van Damme"},
		{"whitespace only", "  ", "   ", "", false, "", ""},
		{"phone only", "", "", "+1 555 0100", true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVisitor("vis-1", time.Now())
			got := v.ApplyIdentity(tt.email, tt.fullName, tt.phone)
			if got != tt.identified {
				t.Errorf("ApplyIdentity = %v, want %v", got, tt.identified)
			}
			if v.FirstName != tt.wantFirst || v.LastName != tt.wantLast {
				t.Errorf("name split = (%q, %q), want (%q, %q)", v.FirstName, v.LastName, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestAdvanceStatusIsMonotonic(t *testing.T) {
	v := NewVisitor("vis-1", time.Now())

	if !v.AdvanceStatus(StatusProspect) {
		t.Error("anonymous -> prospect should advance")
	}
	if v.AdvanceStatus(StatusAnonymous) {
		t.Error("prospect -> anonymous must not regress")
	}
	if !v.AdvanceStatus(StatusIdentified) {
		t.Error("prospect -> identified should advance")
	}
	if v.AdvanceStatus(StatusProspect) {
		t.Error("identified -> prospect must not regress")
	}
	if v.Status != StatusIdentified {
		t.Errorf("status = %s, want identified", v.Status)
	}
}

func TestScoreClamping(t *testing.T) {
	v := NewVisitor("vis-1", time.Now())

	v.BumpEngagement(150)
	if v.Behavior.EngagementScore != 100 {
		t.Errorf("engagementScore = %d, want clamp at 100", v.Behavior.EngagementScore)
	}

	before := v.Behavior.EngagementScore
	v.BumpEngagement(-20)
	if v.Behavior.EngagementScore != before {
		t.Error("negative deltas must not lower engagement")
	}

	v.SetLeadScore(240)
	if v.Behavior.LeadScore != 100 {
		t.Errorf("leadScore = %d, want clamp at 100", v.Behavior.LeadScore)
	}
	v.SetLeadScore(-5)
	if v.Behavior.LeadScore != 0 {
		t.Errorf("leadScore = %d, want clamp at 0", v.Behavior.LeadScore)
	}
}
