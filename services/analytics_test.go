package services

import (
	"testing"
	"time"

	"github.com/rarecask/leadtrack-go/models"
)

func TestComputeDashboardEmptyDataset(t *testing.T) {
	dashboard := ComputeDashboard(nil, "24h")

	if dashboard.Timeframe != "24h" {
		t.Errorf("timeframe = %q, want 24h", dashboard.Timeframe)
	}
	if dashboard.Overview.TotalVisitors != 0 {
		t.Errorf("totalVisitors = %d, want 0", dashboard.Overview.TotalVisitors)
	}
	if dashboard.Overview.IdentifiedRate != 0 || dashboard.Overview.HighEngagementRate != 0 {
		t.Error("rates over an empty dataset must be 0, not NaN")
	}
	if dashboard.TopPages == nil || dashboard.Sources == nil || dashboard.Devices == nil ||
		dashboard.Locations == nil || dashboard.RecentVisitors == nil {
		t.Error("empty dashboard must serialize lists as [], not null")
	}
}

func TestComputeDashboardOverview(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	identified := models.NewVisitor("vis-1", now)
	identified.Status = models.StatusIdentified
	identified.Behavior.EngagementScore = 70
	identified.Behavior.LeadScore = 60

	prospect := models.NewVisitor("vis-2", now)
	prospect.Status = models.StatusProspect
	prospect.Behavior.EngagementScore = 40
	prospect.Behavior.LeadScore = 35

	anonymous := models.NewVisitor("vis-3", now)
	anonymous.Behavior.EngagementScore = 5

	visitors := []*models.Visitor{identified, prospect, anonymous}

	dashboard := ComputeDashboard(visitors, "7d")

	if dashboard.Overview.TotalVisitors != 3 {
		t.Errorf("totalVisitors = %d, want 3", dashboard.Overview.TotalVisitors)
	}
	if dashboard.Overview.IdentifiedCount != 1 {
		t.Errorf("identifiedCount = %d, want 1", dashboard.Overview.IdentifiedCount)
	}
	if want := float64(1) / float64(3) * 100; dashboard.Overview.IdentifiedRate != want {
		t.Errorf("identifiedRate = %v, want %v", dashboard.Overview.IdentifiedRate, want)
	}
	if dashboard.Overview.HighEngagementCount != 1 {
		t.Errorf("highEngagementCount = %d, want 1", dashboard.Overview.HighEngagementCount)
	}
	if dashboard.Overview.QualifiedLeads != 1 {
		t.Errorf("qualifiedLeads = %d, want 1", dashboard.Overview.QualifiedLeads)
	}

	// Only vis-1 and vis-2 clear the active-visitor bar.
	if len(dashboard.RecentVisitors) != 2 {
		t.Fatalf("recentVisitors = %d, want 2", len(dashboard.RecentVisitors))
	}
	if dashboard.RecentVisitors[0].VisitorID != "vis-1" && dashboard.RecentVisitors[1].VisitorID != "vis-1" {
		t.Error("identified visitor missing from recent visitors")
	}
}

func TestComputeDashboardTopPages(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	a := models.NewVisitor("vis-1", now)
	a.RecordPageVisit(now, models.PageVisitInput{URL: "/pricing", Title: "Pricing", TimeSpent: 30, ScrollDepth: 80})
	a.RecordPageVisit(now, models.PageVisitInput{URL: "/pricing", TimeSpent: 10, ScrollDepth: 40})
	a.RecordPageVisit(now, models.PageVisitInput{URL: "/about", TimeSpent: 20})

	b := models.NewVisitor("vis-2", now)
	b.RecordPageVisit(now, models.PageVisitInput{URL: "/pricing", TimeSpent: 20, ScrollDepth: 60})

	dashboard := ComputeDashboard([]*models.Visitor{a, b}, "all")

	if len(dashboard.TopPages) != 2 {
		t.Fatalf("topPages = %d, want 2", len(dashboard.TopPages))
	}

	top := dashboard.TopPages[0]
	if top.URL != "/pricing" {
		t.Fatalf("top page = %q, want /pricing", top.URL)
	}
	if top.TotalVisits != 3 {
		t.Errorf("totalVisits = %d, want 3", top.TotalVisits)
	}
	if top.Title != "Pricing" {
		t.Errorf("title = %q, want Pricing", top.Title)
	}
	if want := 60.0 / 3; top.AvgDwell != want {
		t.Errorf("avgDwell = %v, want %v", top.AvgDwell, want)
	}
}

func TestComputeDashboardSourcesAndDevices(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ids := func() string { return "s" }

	direct := models.NewVisitor("vis-1", now)
	direct.TouchSession(now, 1, "", 30*time.Minute, ids)
	direct.Device.Type = "desktop"

	google := models.NewVisitor("vis-2", now)
	google.TouchSession(now, 1, "https://www.google.com/search?q=x", 30*time.Minute, ids)

	dashboard := ComputeDashboard([]*models.Visitor{direct, google}, "all")

	gotSources := map[string]int{}
	for _, s := range dashboard.Sources {
		gotSources[s.Source] = s.Count
	}
	if gotSources["direct"] != 1 {
		t.Errorf("direct count = %d, want 1", gotSources["direct"])
	}
	if gotSources["google.com"] != 1 {
		t.Errorf("google.com count = %d, want 1 (www. stripped)", gotSources["google.com"])
	}

	gotDevices := map[string]int{}
	for _, d := range dashboard.Devices {
		gotDevices[d.Device] = d.Count
	}
	if gotDevices["desktop"] != 1 || gotDevices["unknown"] != 1 {
		t.Errorf("devices = %v, want desktop:1 unknown:1", gotDevices)
	}
}

func TestSourceFromReferrer(t *testing.T) {
	tests := []struct {
		referrer string
		want     string
	}{
		{"", "direct"},
		{"https://www.google.com/search?q=x", "google.com"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := SourceFromReferrer(tt.referrer); got != tt.want {
			t.Errorf("SourceFromReferrer(%q) = %q, want %q", tt.referrer, got, tt.want)
		}
	}
}
