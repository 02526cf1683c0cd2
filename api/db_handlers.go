package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DBStatusHandler reports database connectivity and cache occupancy.
func DBStatusHandler(c *gin.Context) {
	appCtx, err := getAppContext(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if appCtx.Database == nil || appCtx.Database.Conn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	if err := appCtx.Database.Conn.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unreachable",
			"error":  err.Error(),
		})
		return
	}

	cachedVisitors := 0
	if appCtx.Cache != nil {
		cachedVisitors = appCtx.Cache.Size()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"connection":     appCtx.Database.GetConnectionInfo(),
		"cachedVisitors": cachedVisitors,
	})
}
