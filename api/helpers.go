// Package api provides HTTP handlers and middleware.
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rarecask/leadtrack-go/cache"
	"github.com/rarecask/leadtrack-go/events"
	"github.com/rarecask/leadtrack-go/store"
)

// AppContext carries the shared dependencies handlers need. It is attached
// to every request by WithAppContext so handlers stay package-level
// functions and tests can inject fakes.
type AppContext struct {
	Visitors  store.VisitorStore
	Cache     *cache.Manager
	Processor *events.Processor
	Database  *store.Database // nil in tests
}

// WithAppContext injects the app context into the request.
func WithAppContext(appCtx *AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app", appCtx)
		c.Next()
	}
}

// timeNow is swapped out by tests that need a fixed clock.
var timeNow = time.Now

func getAppContext(c *gin.Context) (*AppContext, error) {
	value, exists := c.Get("app")
	if !exists {
		return nil, fmt.Errorf("app context not found")
	}
	appCtx, ok := value.(*AppContext)
	if !ok {
		return nil, fmt.Errorf("invalid app context type")
	}
	return appCtx, nil
}
