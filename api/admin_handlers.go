package api

import (
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rarecask/leadtrack-go/models"
	"github.com/rarecask/leadtrack-go/services"
	"github.com/rarecask/leadtrack-go/utils"
)

// GetAnalyticsHandler serves the dashboard aggregate for one timeframe.
func GetAnalyticsHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	timeframe := c.DefaultQuery("timeframe", "24h")
	cutoff, err := utils.TimeframeCutoff(timeframe, timeNow())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeframe, expected 24h, 7d, 30d or all"})
		return
	}

	visitors, err := appCtx.Visitors.ListSince(cutoff)
	if err != nil {
		log.Printf("ERROR: analytics query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, services.ComputeDashboard(visitors, timeframe))
}

// GetCapturedFormDataHandler returns every visitor with at least one captured
// form field, with the field history flattened for export.
func GetCapturedFormDataHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	visitors, err := appCtx.Visitors.ListCaptured()
	if err != nil {
		log.Printf("ERROR: captured form data query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load captured form data"})
		return
	}

	captured := make([]models.CapturedVisitor, 0, len(visitors))
	for _, v := range visitors {
		if len(v.FormInteractions) == 0 {
			continue
		}
		captured = append(captured, flattenCapturedVisitor(v))
	}

	sort.Slice(captured, func(i, j int) bool {
		return captured[i].LastVisit.After(captured[j].LastVisit)
	})

	c.JSON(http.StatusOK, gin.H{"visitors": captured, "count": len(captured)})
}

func flattenCapturedVisitor(v *models.Visitor) models.CapturedVisitor {
	forms := make([]models.CapturedForm, 0, len(v.FormInteractions))
	for _, interaction := range v.FormInteractions {
		fields := make([]models.CapturedFormField, 0, len(interaction.Fields))
		for _, field := range interaction.Fields {
			fields = append(fields, models.CapturedFormField{
				Name:        field.Name,
				LastValue:   field.LastValue,
				LastUpdated: field.LastUpdated,
			})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		forms = append(forms, models.CapturedForm{
			FormID:    interaction.FormID,
			Timestamp: interaction.Timestamp,
			Fields:    fields,
		})
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].FormID < forms[j].FormID })

	return models.CapturedVisitor{
		VisitorID: v.VisitorID,
		Email:     v.Email,
		Name:      v.Name,
		Phone:     v.Phone,
		Status:    v.Status,
		LeadScore: v.Behavior.LeadScore,
		LastVisit: v.LastVisit,
		Forms:     forms,
	}
}

// GetVisitorDetailsHandler returns the full aggregate for one visitor.
func GetVisitorDetailsHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	visitorID := c.Param("visitorId")
	v, err := appCtx.Visitors.GetVisitor(visitorID)
	if err != nil {
		log.Printf("ERROR: visitor details query failed for %s: %v", visitorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitor"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Visitor not found"})
		return
	}

	c.JSON(http.StatusOK, v)
}

// ExportVisitorsHandler lists visitor records filtered by status and minimum
// lead score.
func ExportVisitorsHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := c.Query("status")
	switch models.VisitorStatus(status) {
	case "", models.StatusAnonymous, models.StatusProspect, models.StatusIdentified:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	minLeadScore := 0
	if raw := c.Query("minLeadScore"); raw != "" {
		minLeadScore, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minLeadScore must be an integer"})
			return
		}
	}

	visitors, err := appCtx.Visitors.Export(status, minLeadScore)
	if err != nil {
		log.Printf("ERROR: visitor export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export visitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visitors": visitors, "count": len(visitors)})
}

// BulkDeleteVisitorsHandler removes visitor records by ID and reports how
// many actually existed.
func BulkDeleteVisitorsHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VisitorIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitorIds is required and must not be empty"})
		return
	}

	deleted, err := appCtx.Visitors.DeleteVisitors(req.VisitorIDs)
	if err != nil {
		log.Printf("ERROR: bulk delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete visitors"})
		return
	}

	if appCtx.Cache != nil {
		appCtx.Cache.InvalidateVisitors(req.VisitorIDs)
	}

	c.JSON(http.StatusOK, models.BulkDeleteResponse{DeletedCount: deleted})
}
