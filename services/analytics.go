package services

import (
	"net/url"
	"sort"
	"strings"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/models"
)

// ComputeDashboard builds the full windowed rollup over an already-filtered
// visitor collection. It is read-only, computed fresh per request, and
// returns zero counts with empty slices for an empty dataset.
func ComputeDashboard(visitors []*models.Visitor, timeframe string) *models.DashboardAnalytics {
	dashboard := &models.DashboardAnalytics{
		Timeframe:      timeframe,
		TopPages:       make([]models.PageStats, 0),
		Sources:        make([]models.SourceCount, 0),
		Devices:        make([]models.DeviceCount, 0),
		Locations:      make([]models.LocationCount, 0),
		RecentVisitors: make([]models.VisitorSummary, 0),
	}

	total := len(visitors)
	dashboard.Overview.TotalVisitors = total
	if total == 0 {
		return dashboard
	}

	identified := 0
	highEngagement := 0
	qualified := 0

	type pageAccum struct {
		title     string
		visits    int
		timeSpent int
		scrollSum int
		scrollObs int
	}
	pages := make(map[string]*pageAccum)
	sources := make(map[string]int)
	devices := make(map[string]int)
	locations := make(map[string]int)

	for _, v := range visitors {
		if v.Status == models.StatusIdentified {
			identified++
		}
		if v.Behavior.EngagementScore >= defaults.HighEngagementScore {
			highEngagement++
		}
		if v.Behavior.LeadScore >= defaults.QualifiedLeadThreshold {
			qualified++
		}

		for urlKey, pv := range v.PagesVisited {
			accum, exists := pages[urlKey]
			if !exists {
				accum = &pageAccum{}
				pages[urlKey] = accum
			}
			if pv.Title != "" {
				accum.title = pv.Title
			}
			accum.visits += pv.Visits
			accum.timeSpent += pv.TotalTimeSpent
			accum.scrollSum += pv.MaxScrollDepth
			accum.scrollObs++
		}

		for _, session := range v.AllSessions() {
			sources[SourceFromReferrer(session.Referrer)]++
		}

		device := v.Device.Type
		if device == "" {
			device = "unknown"
		}
		devices[device]++

		locations[locationKey(v.Location)]++

		if v.Behavior.EngagementScore >= defaults.ActiveVisitorScore {
			interests := v.Behavior.Interests
			if interests == nil {
				interests = make([]string, 0)
			}
			dashboard.RecentVisitors = append(dashboard.RecentVisitors, models.VisitorSummary{
				VisitorID:       v.VisitorID,
				Email:           v.Email,
				Name:            v.Name,
				Status:          v.Status,
				EngagementScore: v.Behavior.EngagementScore,
				LeadScore:       v.Behavior.LeadScore,
				Interests:       interests,
				LastVisit:       v.LastVisit,
			})
		}
	}

	dashboard.Overview.IdentifiedCount = identified
	dashboard.Overview.IdentifiedRate = rate(identified, total)
	dashboard.Overview.HighEngagementCount = highEngagement
	dashboard.Overview.HighEngagementRate = rate(highEngagement, total)
	dashboard.Overview.QualifiedLeads = qualified

	for urlKey, accum := range pages {
		stats := models.PageStats{
			URL:         urlKey,
			Title:       accum.title,
			TotalVisits: accum.visits,
		}
		if accum.visits > 0 {
			stats.AvgDwell = float64(accum.timeSpent) / float64(accum.visits)
		}
		if accum.scrollObs > 0 {
			stats.AvgScroll = float64(accum.scrollSum) / float64(accum.scrollObs)
		}
		dashboard.TopPages = append(dashboard.TopPages, stats)
	}
	sort.Slice(dashboard.TopPages, func(i, j int) bool {
		if dashboard.TopPages[i].TotalVisits != dashboard.TopPages[j].TotalVisits {
			return dashboard.TopPages[i].TotalVisits > dashboard.TopPages[j].TotalVisits
		}
		return dashboard.TopPages[i].URL < dashboard.TopPages[j].URL
	})
	if len(dashboard.TopPages) > 10 {
		dashboard.TopPages = dashboard.TopPages[:10]
	}

	for source, count := range sources {
		dashboard.Sources = append(dashboard.Sources, models.SourceCount{Source: source, Count: count})
	}
	sort.Slice(dashboard.Sources, func(i, j int) bool {
		if dashboard.Sources[i].Count != dashboard.Sources[j].Count {
			return dashboard.Sources[i].Count > dashboard.Sources[j].Count
		}
		return dashboard.Sources[i].Source < dashboard.Sources[j].Source
	})

	for device, count := range devices {
		dashboard.Devices = append(dashboard.Devices, models.DeviceCount{Device: device, Count: count})
	}
	sort.Slice(dashboard.Devices, func(i, j int) bool {
		if dashboard.Devices[i].Count != dashboard.Devices[j].Count {
			return dashboard.Devices[i].Count > dashboard.Devices[j].Count
		}
		return dashboard.Devices[i].Device < dashboard.Devices[j].Device
	})

	for location, count := range locations {
		dashboard.Locations = append(dashboard.Locations, models.LocationCount{Location: location, Count: count})
	}
	sort.Slice(dashboard.Locations, func(i, j int) bool {
		if dashboard.Locations[i].Count != dashboard.Locations[j].Count {
			return dashboard.Locations[i].Count > dashboard.Locations[j].Count
		}
		return dashboard.Locations[i].Location < dashboard.Locations[j].Location
	})
	if len(dashboard.Locations) > 10 {
		dashboard.Locations = dashboard.Locations[:10]
	}

	sort.Slice(dashboard.RecentVisitors, func(i, j int) bool {
		return dashboard.RecentVisitors[i].LastVisit.After(dashboard.RecentVisitors[j].LastVisit)
	})
	if len(dashboard.RecentVisitors) > 20 {
		dashboard.RecentVisitors = dashboard.RecentVisitors[:20]
	}

	return dashboard
}

// SourceFromReferrer collapses a raw referrer URL to its host, stripping a
// leading www. Empty referrers count as direct traffic.
func SourceFromReferrer(referrer string) string {
	if referrer == "" {
		return "direct"
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return referrer
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	return host
}

func locationKey(loc models.LocationInfo) string {
	switch {
	case loc.City != "" && loc.Country != "":
		return loc.City + ", " + loc.Country
	case loc.Country != "":
		return loc.Country
	default:
		return "unknown"
	}
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
