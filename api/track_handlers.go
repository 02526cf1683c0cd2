package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rarecask/leadtrack-go/models"
)

// The four beacon handlers below always answer 200 with success:true. The
// client instrumentation fires them on input, navigation, and unload, and a
// non-200 would make it retry or surface errors to end users. Failures are
// logged server side instead.

// CaptureFieldHandler handles field-level form capture beacons.
func CaptureFieldHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusOK, models.CaptureFieldResponse{Success: true})
		return
	}

	var req models.CaptureFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("DEBUG: capture-field beacon rejected at bind: %v", err)
		c.JSON(http.StatusOK, models.CaptureFieldResponse{Success: true})
		return
	}

	v := appCtx.Processor.ProcessFieldCapture(req, timeNow().UTC())

	c.JSON(http.StatusOK, models.CaptureFieldResponse{
		Success:       true,
		VisitorStatus: string(v.Status),
		LeadScore:     v.Behavior.LeadScore,
	})
}

// TrackVisitorHandler handles page-visit beacons.
func TrackVisitorHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusOK, models.TrackVisitorResponse{Success: true})
		return
	}

	var req models.TrackVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("DEBUG: track-visitor beacon rejected at bind: %v", err)
		c.JSON(http.StatusOK, models.TrackVisitorResponse{Success: true})
		return
	}

	v := appCtx.Processor.ProcessVisit(req, c.ClientIP(), c.Request.UserAgent(), timeNow().UTC())

	c.JSON(http.StatusOK, models.TrackVisitorResponse{
		Success:         true,
		VisitorID:       v.VisitorID,
		Status:          string(v.Status),
		EngagementScore: v.Behavior.EngagementScore,
		LeadScore:       v.Behavior.LeadScore,
	})
}

// TrackEventHandler handles custom event beacons.
func TrackEventHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusOK, models.TrackResponse{Success: true})
		return
	}

	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("DEBUG: track-event beacon rejected at bind: %v", err)
		c.JSON(http.StatusOK, models.TrackResponse{Success: true})
		return
	}

	appCtx.Processor.ProcessEvent(req, timeNow().UTC())

	c.JSON(http.StatusOK, models.TrackResponse{Success: true})
}

// IdentifyVisitorHandler handles explicit identification beacons, typically
// sent on form submit.
func IdentifyVisitorHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusOK, models.TrackResponse{Success: true})
		return
	}

	var req models.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("DEBUG: identify beacon rejected at bind: %v", err)
		c.JSON(http.StatusOK, models.TrackResponse{Success: true})
		return
	}

	appCtx.Processor.ProcessIdentify(req, timeNow().UTC())

	c.JSON(http.StatusOK, models.TrackResponse{Success: true})
}
