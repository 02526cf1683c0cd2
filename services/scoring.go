// Package services provides scoring, analytics, and enrichment services.
package services

import (
	"log"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/models"
)

// ComputeLeadScore recomputes the purchase-intent heuristic as a pure
// function of the visitor's current state. It is idempotent on unchanged
// state, bounded to [0,100], and every term is non-decreasing in its input,
// so adding identifying info or interactions can never lower the score.
//
// Engagement is a separate incremental counter; it feeds into the lead score
// here but is never written by this function.
func ComputeLeadScore(v *models.Visitor) int {
	score := 0

	if v.Email != "" {
		score += defaults.LeadWeightEmail
	}
	if v.Phone != "" {
		score += defaults.LeadWeightPhone
	}
	if v.Name != "" {
		score += defaults.LeadWeightName
	}

	forms := len(v.FormInteractions) * defaults.LeadWeightPerForm
	if forms > defaults.LeadWeightFormCap {
		forms = defaults.LeadWeightFormCap
	}
	score += forms

	interests := len(v.Behavior.Interests) * defaults.LeadWeightPerInterest
	if interests > defaults.LeadWeightInterestCap {
		interests = defaults.LeadWeightInterestCap
	}
	score += interests

	pageViews := v.Behavior.TotalPageViews * defaults.LeadWeightPerPageView
	if pageViews > defaults.LeadWeightPageViewCap {
		pageViews = defaults.LeadWeightPageViewCap
	}
	score += pageViews

	if defaults.LeadWeightEngagementDivisor > 0 {
		score += v.Behavior.EngagementScore / defaults.LeadWeightEngagementDivisor
	}

	return models.ClampScore(score)
}

// SafeLeadScore wraps ComputeLeadScore so a scoring failure can never break
// a capture pipeline: on panic it logs and returns the default score.
func SafeLeadScore(v *models.Visitor) (score int) {
	visitorID := "unknown"
	if v != nil {
		visitorID = v.VisitorID
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: lead score computation failed for visitor %s: %v", visitorID, r)
			score = defaults.DefaultLeadScore
		}
	}()
	return ComputeLeadScore(v)
}
