// Package models defines the visitor aggregate and its behavior methods.
package models

import (
	"strings"
	"time"
)

// VisitorStatus is the visitor lifecycle classification.
type VisitorStatus string

const (
	StatusAnonymous  VisitorStatus = "anonymous"
	StatusProspect   VisitorStatus = "prospect"
	StatusIdentified VisitorStatus = "identified"
)

// Rank orders statuses for the monotonic state machine. Unknown values rank
// lowest so a corrupt stored status can always be advanced.
func (s VisitorStatus) Rank() int {
	switch s {
	case StatusAnonymous:
		return 1
	case StatusProspect:
		return 2
	case StatusIdentified:
		return 3
	default:
		return 0
	}
}

// DeviceInfo describes the client device as reported by instrumentation.
type DeviceInfo struct {
	Type         string `json:"type,omitempty"`
	Browser      string `json:"browser,omitempty"`
	OS           string `json:"os,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	ScreenWidth  int    `json:"screenWidth,omitempty"`
	ScreenHeight int    `json:"screenHeight,omitempty"`
}

// LocationInfo describes the visitor's resolved location.
type LocationInfo struct {
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

func (l LocationInfo) IsEmpty() bool {
	return l.Country == "" && l.Region == "" && l.City == ""
}

// Session is one contiguous activity burst bounded by the inactivity gap.
type Session struct {
	SessionID string     `json:"sessionId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	PageViews int        `json:"pageViews"`
	Duration  int        `json:"duration"` // seconds
	Referrer  string     `json:"referrer,omitempty"`
}

// PageVisit holds cumulative per-URL statistics. One entry per distinct URL.
type PageVisit struct {
	URL              string    `json:"url"`
	Title            string    `json:"title,omitempty"`
	Visits           int       `json:"visits"`
	TotalTimeSpent   int       `json:"totalTimeSpent"`
	AverageTimeSpent float64   `json:"averageTimeSpent"`
	MaxScrollDepth   int       `json:"maxScrollDepth"`
	Clicks           int       `json:"clicks"`
	LastVisited      time.Time `json:"lastVisited"`
}

// FormField records field-level interaction within a form.
type FormField struct {
	Name        string    `json:"name"`
	Interacted  bool      `json:"interacted"`
	Completed   bool      `json:"completed"`
	LastValue   string    `json:"lastValue"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FormInteraction tracks per-form field capture independent of submission.
// PageURL is the page the form was captured on, as reported by the beacon.
type FormInteraction struct {
	FormID    string                `json:"formId"`
	PageURL   string                `json:"pageUrl,omitempty"`
	Fields    map[string]*FormField `json:"fields"`
	Abandoned bool                  `json:"abandoned"`
	Timestamp time.Time             `json:"timestamp"`
}

// Event is one append-only custom tracking event.
type Event struct {
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Label     string    `json:"label,omitempty"`
	Value     int       `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Behavior holds the visitor's cumulative behavior block and both scores.
type Behavior struct {
	TotalPageViews  int      `json:"totalPageViews"`
	TotalTimeSpent  int      `json:"totalTimeSpent"`
	Interests       []string `json:"interests"`
	EngagementScore int      `json:"engagementScore"`
	LeadScore       int      `json:"leadScore"`
}

// Visitor is the aggregate root, keyed by the client-generated visitor ID.
// CurrentSession plus ClosedSessions replaces the source convention of
// mutating the last element of a sessions array.
type Visitor struct {
	VisitorID   string        `json:"visitorId"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Email       string        `json:"email,omitempty"`
	Name        string        `json:"name,omitempty"`
	FirstName   string        `json:"firstName,omitempty"`
	LastName    string        `json:"lastName,omitempty"`
	Phone       string        `json:"phone,omitempty"`
	Status      VisitorStatus `json:"status"`
	IPAddress   string        `json:"ipAddress,omitempty"`
	Device      DeviceInfo    `json:"device"`
	Location    LocationInfo  `json:"location"`

	TotalVisits int       `json:"totalVisits"`
	FirstVisit  time.Time `json:"firstVisit"`
	LastVisit   time.Time `json:"lastVisit"`

	CurrentSession *Session  `json:"currentSession,omitempty"`
	ClosedSessions []Session `json:"closedSessions"`

	PagesVisited     map[string]*PageVisit       `json:"pagesVisited"`
	FormInteractions map[string]*FormInteraction `json:"formInteractions"`
	Events           []Event                     `json:"events"`
	Behavior         Behavior                    `json:"behavior"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewVisitor creates a visitor with all embedded structures initialized so
// every entry point can mutate it without nil checks.
func NewVisitor(visitorID string, now time.Time) *Visitor {
	return &Visitor{
		VisitorID:        visitorID,
		Status:           StatusAnonymous,
		FirstVisit:       now,
		LastVisit:        now,
		ClosedSessions:   make([]Session, 0),
		PagesVisited:     make(map[string]*PageVisit),
		FormInteractions: make(map[string]*FormInteraction),
		Events:           make([]Event, 0),
		Behavior: Behavior{
			Interests: make([]string, 0),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the activity timestamps on every inbound call.
func (v *Visitor) Touch(now time.Time) {
	v.LastVisit = now
	v.UpdatedAt = now
}

// TouchSession extends the current session or opens a new one when the
// inactivity gap has elapsed. pageViews is the delta reported by the beacon;
// a new session starts with at least one page view.
func (v *Visitor) TouchSession(now time.Time, pageViews int, referrer string, gap time.Duration, newSessionID func() string) {
	if v.CurrentSession == nil {
		v.startSession(now, pageViews, referrer, newSessionID())
		return
	}

	last := v.CurrentSession.StartTime
	if v.CurrentSession.EndTime != nil {
		last = *v.CurrentSession.EndTime
	}

	if now.Sub(last) > gap {
		// Previous session is implicitly closed; its endTime is not
		// updated further.
		v.ClosedSessions = append(v.ClosedSessions, *v.CurrentSession)
		v.startSession(now, pageViews, referrer, newSessionID())
		return
	}

	end := now
	v.CurrentSession.EndTime = &end
	v.CurrentSession.PageViews += pageViews
	v.CurrentSession.Duration = int(now.Sub(v.CurrentSession.StartTime).Seconds())
}

func (v *Visitor) startSession(now time.Time, pageViews int, referrer, sessionID string) {
	if pageViews < 1 {
		pageViews = 1
	}
	v.CurrentSession = &Session{
		SessionID: sessionID,
		StartTime: now,
		PageViews: pageViews,
		Referrer:  referrer,
	}
	v.TotalVisits++
}

// SessionCount returns closed sessions plus the current one.
func (v *Visitor) SessionCount() int {
	n := len(v.ClosedSessions)
	if v.CurrentSession != nil {
		n++
	}
	return n
}

// AllSessions returns sessions in chronological order, current last.
func (v *Visitor) AllSessions() []Session {
	sessions := make([]Session, 0, v.SessionCount())
	sessions = append(sessions, v.ClosedSessions...)
	if v.CurrentSession != nil {
		sessions = append(sessions, *v.CurrentSession)
	}
	return sessions
}

// PageVisitInput carries one page-visit observation from the beacon.
type PageVisitInput struct {
	URL         string
	Title       string
	TimeSpent   int
	ScrollDepth int
	Clicks      int
}

// RecordPageVisit merges one observation into the per-URL statistics and the
// visitor totals. At most one PageVisit exists per distinct URL.
func (v *Visitor) RecordPageVisit(now time.Time, in PageVisitInput) {
	if in.URL == "" {
		return
	}

	pv, exists := v.PagesVisited[in.URL]
	if !exists {
		pv = &PageVisit{URL: in.URL}
		v.PagesVisited[in.URL] = pv
	}

	pv.Visits++
	pv.TotalTimeSpent += in.TimeSpent
	pv.AverageTimeSpent = float64(pv.TotalTimeSpent) / float64(pv.Visits)
	if in.ScrollDepth > pv.MaxScrollDepth {
		pv.MaxScrollDepth = in.ScrollDepth
	}
	pv.Clicks += in.Clicks
	pv.LastVisited = now
	if in.Title != "" {
		pv.Title = in.Title
	}

	v.Behavior.TotalPageViews++
	v.Behavior.TotalTimeSpent += in.TimeSpent
}

// AddInterests unions incoming tags into the interest set. Order of existing
// entries is preserved, duplicates and blanks are skipped.
func (v *Visitor) AddInterests(tags []string) {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		seen := false
		for _, existing := range v.Behavior.Interests {
			if strings.EqualFold(existing, tag) {
				seen = true
				break
			}
		}
		if !seen {
			v.Behavior.Interests = append(v.Behavior.Interests, tag)
		}
	}
}

// CaptureField records field-level interaction, upserting the form
// interaction and the field. Identity side effects (email/name/phone) are
// applied by the caller via ApplyIdentity so the two concerns stay separate.
func (v *Visitor) CaptureField(now time.Time, formID, fieldName, fieldValue, pageURL string) {
	interaction, exists := v.FormInteractions[formID]
	if !exists {
		interaction = &FormInteraction{
			FormID:    formID,
			Fields:    make(map[string]*FormField),
			Abandoned: false,
			Timestamp: now,
		}
		v.FormInteractions[formID] = interaction
	}
	if pageURL != "" {
		interaction.PageURL = pageURL
	}

	field, exists := interaction.Fields[fieldName]
	if !exists {
		field = &FormField{Name: fieldName}
		interaction.Fields[fieldName] = field
	}

	field.Interacted = true
	field.Completed = true
	field.LastValue = fieldValue
	field.LastUpdated = now
}

// ApplyIdentity writes any non-empty identity fields onto the visitor and
// reports whether identity was gained. A name is split on whitespace: first
// token becomes firstName, the remainder lastName; the raw value is kept too.
func (v *Visitor) ApplyIdentity(email, name, phone string) bool {
	identified := false

	if email = strings.TrimSpace(email); email != "" {
		v.Email = email
		identified = true
	}
	if name = strings.TrimSpace(name); name != "" {
		v.Name = name
		first, last := SplitFullName(name)
		v.FirstName = first
		v.LastName = last
		identified = true
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		v.Phone = phone
		identified = true
	}

	return identified
}

// SplitFullName splits a raw name on whitespace: first token, then the
// remaining tokens joined by a single space.
func SplitFullName(name string) (first, last string) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", ""
	}
	first = tokens[0]
	if len(tokens) > 1 {
		last = strings.Join(tokens[1:], " ")
	}
	return first, last
}

// HasIdentity reports whether any identifying field has been captured.
func (v *Visitor) HasIdentity() bool {
	return v.Email != "" || v.Name != "" || v.Phone != ""
}

// BumpEngagement increments the engagement counter, clamped to [0,100].
// Engagement never decays and never decreases.
func (v *Visitor) BumpEngagement(delta int) {
	if delta < 0 {
		return
	}
	v.Behavior.EngagementScore = ClampScore(v.Behavior.EngagementScore + delta)
}

// SetLeadScore stores a recomputed lead score, clamped to [0,100].
func (v *Visitor) SetLeadScore(score int) {
	v.Behavior.LeadScore = ClampScore(score)
}

// AppendEvent appends one event to the append-only event list.
func (v *Visitor) AppendEvent(e Event) {
	v.Events = append(v.Events, e)
}

// AdvanceStatus moves the status forward, never backward. Returns true when
// the status actually changed.
func (v *Visitor) AdvanceStatus(target VisitorStatus) bool {
	if target.Rank() <= v.Status.Rank() {
		return false
	}
	v.Status = target
	return true
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
