package models

import "time"

// One explicit DTO per entry point. The source merged arbitrary optional
// fields straight into the stored document; here every beacon payload is
// typed and unknown fields are dropped at bind time.

// CaptureFieldRequest is the capture-field beacon payload.
type CaptureFieldRequest struct {
	VisitorID  string `json:"visitorId" binding:"required"`
	FieldName  string `json:"fieldName" binding:"required"`
	FieldValue string `json:"fieldValue"`
	FormType   string `json:"formType"`
	PageURL    string `json:"pageUrl"`
	Timestamp  *int64 `json:"timestamp"` // epoch millis, optional
}

// CaptureFieldResponse is always returned with HTTP 200.
type CaptureFieldResponse struct {
	Success       bool   `json:"success"`
	VisitorStatus string `json:"visitorStatus,omitempty"`
	LeadScore     int    `json:"leadScore"`
}

// TrackVisitorRequest is the track-visitor beacon payload.
type TrackVisitorRequest struct {
	VisitorID   string               `json:"visitorId" binding:"required"`
	Fingerprint string               `json:"fingerprint"`
	Referrer    string               `json:"referrer"`
	Location    *LocationInfo        `json:"location"`
	Device      *DeviceInfo          `json:"device"`
	Behavior    *TrackedBehavior     `json:"behavior"`
	Session     *TrackedSessionDelta `json:"session"`
}

// TrackedBehavior is the page-level behavior delta reported by the beacon.
type TrackedBehavior struct {
	PageURL     string   `json:"pageUrl"`
	PageTitle   string   `json:"pageTitle"`
	TimeSpent   int      `json:"timeSpent"`
	ScrollDepth int      `json:"scrollDepth"`
	Clicks      int      `json:"clicks"`
	Interests   []string `json:"interests"`
}

// TrackedSessionDelta is the session delta reported by the beacon.
type TrackedSessionDelta struct {
	PageViews int `json:"pageViews"`
}

// TrackVisitorResponse is always returned with HTTP 200.
type TrackVisitorResponse struct {
	Success         bool   `json:"success"`
	VisitorID       string `json:"visitorId"`
	Status          string `json:"status,omitempty"`
	EngagementScore int    `json:"engagementScore"`
	LeadScore       int    `json:"leadScore"`
}

// TrackEventRequest is the track-event beacon payload.
type TrackEventRequest struct {
	VisitorID string `json:"visitorId" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Action    string `json:"action"`
	Label     string `json:"label"`
	Value     int    `json:"value"`
}

// IdentifyRequest is the identify-visitor beacon payload.
type IdentifyRequest struct {
	VisitorID string `json:"visitorId" binding:"required"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

// TrackResponse is the minimal beacon acknowledgement.
type TrackResponse struct {
	Success bool `json:"success"`
}

// BulkDeleteRequest is the administrative bulk-delete payload.
type BulkDeleteRequest struct {
	VisitorIDs []string `json:"visitorIds"`
}

// BulkDeleteResponse reports how many records were actually removed.
type BulkDeleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// CapturedFormField is one flattened field in the captured-form-data export.
type CapturedFormField struct {
	Name        string    `json:"name"`
	LastValue   string    `json:"lastValue"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// CapturedForm is one form's flattened field history.
type CapturedForm struct {
	FormID    string              `json:"formId"`
	Timestamp time.Time           `json:"timestamp"`
	Fields    []CapturedFormField `json:"fields"`
}

// CapturedVisitor is one row of the captured-form-data export.
type CapturedVisitor struct {
	VisitorID string         `json:"visitorId"`
	Email     string         `json:"email,omitempty"`
	Name      string         `json:"name,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Status    VisitorStatus  `json:"status"`
	LeadScore int            `json:"leadScore"`
	LastVisit time.Time      `json:"lastVisit"`
	Forms     []CapturedForm `json:"forms"`
}
