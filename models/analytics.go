// Package models defines analytics rollup structures for the admin dashboard.
package models

import "time"

// DashboardAnalytics is the full windowed rollup returned by the analytics
// endpoint. Computed fresh per request; an empty dataset yields zero counts
// and empty (never nil) slices.
type DashboardAnalytics struct {
	Timeframe      string           `json:"timeframe"`
	Overview       OverviewStats    `json:"overview"`
	TopPages       []PageStats      `json:"topPages"`
	Sources        []SourceCount    `json:"sources"`
	Devices        []DeviceCount    `json:"devices"`
	Locations      []LocationCount  `json:"locations"`
	RecentVisitors []VisitorSummary `json:"recentVisitors"`
}

type OverviewStats struct {
	TotalVisitors       int     `json:"totalVisitors"`
	IdentifiedCount     int     `json:"identifiedCount"`
	IdentifiedRate      float64 `json:"identifiedRate"`
	HighEngagementCount int     `json:"highEngagementCount"`
	HighEngagementRate  float64 `json:"highEngagementRate"`
	QualifiedLeads      int     `json:"qualifiedLeads"`
}

type PageStats struct {
	URL         string  `json:"url"`
	Title       string  `json:"title,omitempty"`
	TotalVisits int     `json:"totalVisits"`
	AvgDwell    float64 `json:"avgDwell"`
	AvgScroll   float64 `json:"avgScroll"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type DeviceCount struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// VisitorSummary is the dashboard projection of one active visitor.
type VisitorSummary struct {
	VisitorID       string        `json:"visitorId"`
	Email           string        `json:"email,omitempty"`
	Name            string        `json:"name,omitempty"`
	Status          VisitorStatus `json:"status"`
	EngagementScore int           `json:"engagementScore"`
	LeadScore       int           `json:"leadScore"`
	Interests       []string      `json:"interests"`
	LastVisit       time.Time     `json:"lastVisit"`
}
