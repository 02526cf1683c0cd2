// Package events processes inbound tracking beacons against the visitor aggregate.
package events

import (
	"log"
	"strings"
	"time"

	"github.com/rarecask/leadtrack-go/cache"
	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/email"
	"github.com/rarecask/leadtrack-go/models"
	"github.com/rarecask/leadtrack-go/services"
	"github.com/rarecask/leadtrack-go/store"
	"github.com/rarecask/leadtrack-go/utils"
)

// FormInteractionCategory is the track-event category that earns an
// engagement bonus, mirroring the client instrumentation's constant.
const FormInteractionCategory = "Form Interaction"

// Processor coordinates identity resolution, session stitching, behavior
// aggregation, scoring, and status transitions for every entry point.
// Storage and scoring failures on these paths are logged and swallowed so
// the beacon always succeeds.
type Processor struct {
	visitors store.VisitorStore
	cache    *cache.Manager
	alerts   *email.Client // nil when lead alerts are not configured
}

// NewProcessor creates a new tracking processor
func NewProcessor(visitors store.VisitorStore, cacheManager *cache.Manager, alerts *email.Client) *Processor {
	return &Processor{
		visitors: visitors,
		cache:    cacheManager,
		alerts:   alerts,
	}
}

// withVisitor runs one read-modify-write cycle for a visitor under that
// visitor's lock: find-or-create, mutate, persist, re-cache. Concurrent
// beacons for the same visitorId are serialized here, which is what keeps
// find-or-create idempotent.
func (p *Processor) withVisitor(visitorID string, now time.Time, mutate func(v *models.Visitor)) *models.Visitor {
	lock := p.cache.VisitorLock(visitorID)
	lock.Lock()
	defer lock.Unlock()

	v, cached := p.cache.GetVisitor(visitorID)
	persist := true
	if !cached {
		loaded, err := p.visitors.GetVisitor(visitorID)
		if err != nil {
			// Tracking must not fail on a storage read, but a fresh
			// aggregate must never overwrite the stored document: the
			// visitor may be identified there, and status never
			// regresses. Serve this beacon from memory only and leave
			// persistence to a later healthy cycle.
			log.Printf("ERROR: failed to load visitor %s: %v", visitorID, err)
			persist = false
		}
		if loaded != nil {
			v = loaded
		} else {
			v = models.NewVisitor(visitorID, now)
		}
	}

	v.Touch(now)
	mutate(v)

	if persist {
		if err := p.visitors.UpsertVisitor(v); err != nil {
			log.Printf("ERROR: failed to persist visitor %s: %v", visitorID, err)
		}
		p.cache.SetVisitor(v)
	}

	return v
}

// ProcessFieldCapture handles the capture-field entry point: field-level
// form interaction, identity side effects, engagement bonus, rescore.
func (p *Processor) ProcessFieldCapture(req models.CaptureFieldRequest, now time.Time) *models.Visitor {
	formID := req.FormType
	if formID == "" {
		formID = "default"
	}

	// The client reports when the keystroke happened; session stitching and
	// activity timestamps stay on server time.
	capturedAt := now
	if req.Timestamp != nil && *req.Timestamp > 0 {
		capturedAt = time.UnixMilli(*req.Timestamp).UTC()
	}

	return p.withVisitor(req.VisitorID, now, func(v *models.Visitor) {
		v.TouchSession(now, 0, "", defaults.SessionInactivityGap, utils.GenerateULID)
		v.CaptureField(capturedAt, formID, req.FieldName, req.FieldValue, req.PageURL)

		value := strings.TrimSpace(req.FieldValue)
		if value != "" {
			switch strings.ToLower(req.FieldName) {
			case "email":
				v.ApplyIdentity(value, "", "")
			case "name":
				v.ApplyIdentity("", value, "")
			case "phone":
				v.ApplyIdentity("", "", value)
			}
		}

		v.BumpEngagement(defaults.EngagementFieldCaptureBonus)
		v.SetLeadScore(services.SafeLeadScore(v))

		if v.HasIdentity() && v.AdvanceStatus(models.StatusIdentified) {
			p.notifyLead(v)
		}
	})
}

// ProcessVisit handles the track-visitor entry point: session stitching,
// page/behavior aggregation, device and location enrichment, rescore, and
// the prospect promotion gate.
func (p *Processor) ProcessVisit(req models.TrackVisitorRequest, clientIP, userAgent string, now time.Time) *models.Visitor {
	pageViews := 0
	if req.Session != nil {
		pageViews = req.Session.PageViews
	}

	return p.withVisitor(req.VisitorID, now, func(v *models.Visitor) {
		if req.Fingerprint != "" {
			v.Fingerprint = req.Fingerprint
		}
		if clientIP != "" {
			v.IPAddress = clientIP
		}

		mergeDevice(v, req.Device, userAgent)

		if req.Location != nil && !req.Location.IsEmpty() {
			v.Location = *req.Location
		} else if v.Location.IsEmpty() && clientIP != "" {
			// Best effort: lookup failures leave the location empty.
			v.Location = services.LookupLocation(clientIP)
		}

		v.TouchSession(now, pageViews, req.Referrer, defaults.SessionInactivityGap, utils.GenerateULID)

		if req.Behavior != nil {
			if req.Behavior.PageURL != "" {
				v.RecordPageVisit(now, models.PageVisitInput{
					URL:         req.Behavior.PageURL,
					Title:       req.Behavior.PageTitle,
					TimeSpent:   req.Behavior.TimeSpent,
					ScrollDepth: req.Behavior.ScrollDepth,
					Clicks:      req.Behavior.Clicks,
				})
			}
			v.AddInterests(req.Behavior.Interests)
		}

		v.SetLeadScore(services.SafeLeadScore(v))

		// Prospect promotion is exclusive to this path.
		if v.Behavior.LeadScore >= defaults.ProspectLeadThreshold {
			v.AdvanceStatus(models.StatusProspect)
		}
	})
}

// ProcessEvent handles the track-event entry point: append-only event log
// plus the form-interaction engagement bonus.
func (p *Processor) ProcessEvent(req models.TrackEventRequest, now time.Time) *models.Visitor {
	return p.withVisitor(req.VisitorID, now, func(v *models.Visitor) {
		v.TouchSession(now, 0, "", defaults.SessionInactivityGap, utils.GenerateULID)
		v.AppendEvent(models.Event{
			Category:  req.Category,
			Action:    req.Action,
			Label:     req.Label,
			Value:     req.Value,
			Timestamp: now,
		})

		if req.Category == FormInteractionCategory {
			v.BumpEngagement(defaults.EngagementFormEventBonus)
		}

		v.SetLeadScore(services.SafeLeadScore(v))
	})
}

// ProcessIdentify handles the identify-visitor entry point. It writes
// identity fields in place on this visitorId's record only; it never merges
// two visitor records (cross-device merge is unsupported).
func (p *Processor) ProcessIdentify(req models.IdentifyRequest, now time.Time) *models.Visitor {
	return p.withVisitor(req.VisitorID, now, func(v *models.Visitor) {
		v.TouchSession(now, 0, "", defaults.SessionInactivityGap, utils.GenerateULID)

		identified := v.ApplyIdentity(req.Email, req.Name, req.Phone)
		v.SetLeadScore(services.SafeLeadScore(v))

		if identified && v.AdvanceStatus(models.StatusIdentified) {
			p.notifyLead(v)
		}
	})
}

// notifyLead fires the qualified-lead alert when a visitor first becomes
// identified at or above the qualified threshold. Fire-and-forget.
func (p *Processor) notifyLead(v *models.Visitor) {
	if p.alerts == nil || !defaults.LeadAlertEnabled {
		return
	}
	if v.Behavior.LeadScore < defaults.QualifiedLeadThreshold {
		return
	}

	snapshot := leadSnapshot(v)
	go func() {
		if err := p.alerts.SendLeadAlertEmail(&snapshot); err != nil {
			log.Printf("ERROR: lead alert email failed for visitor %s: %v", snapshot.VisitorID, err)
		}
	}()
}

// leadSnapshot copies the fields the alert email reads: scalars plus an owned
// copy of the interest list. Maps, sessions, and events stay with the live
// aggregate, which keeps mutating after the goroutine is spawned; the
// snapshot must not reference them.
func leadSnapshot(v *models.Visitor) models.Visitor {
	snapshot := *v
	snapshot.Behavior.Interests = append([]string(nil), v.Behavior.Interests...)
	snapshot.CurrentSession = nil
	snapshot.ClosedSessions = nil
	snapshot.PagesVisited = nil
	snapshot.FormInteractions = nil
	snapshot.Events = nil
	return snapshot
}

func mergeDevice(v *models.Visitor, device *models.DeviceInfo, userAgent string) {
	if device != nil {
		if device.Type != "" {
			v.Device.Type = device.Type
		}
		if device.Browser != "" {
			v.Device.Browser = device.Browser
		}
		if device.OS != "" {
			v.Device.OS = device.OS
		}
		if device.UserAgent != "" {
			v.Device.UserAgent = device.UserAgent
		}
		if device.ScreenWidth > 0 {
			v.Device.ScreenWidth = device.ScreenWidth
		}
		if device.ScreenHeight > 0 {
			v.Device.ScreenHeight = device.ScreenHeight
		}
	}

	if v.Device.UserAgent == "" && userAgent != "" {
		v.Device.UserAgent = userAgent
	}
	if v.Device.Type == "" {
		v.Device.Type = utils.DeviceTypeFromUserAgent(v.Device.UserAgent)
	}
}
