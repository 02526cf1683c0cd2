package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rarecask/leadtrack-go/api"
	"github.com/rarecask/leadtrack-go/cache"
	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/email"
	"github.com/rarecask/leadtrack-go/events"
	"github.com/rarecask/leadtrack-go/store"
)

var GlobalCacheManager *cache.Manager

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	// Initialize global cache manager
	GlobalCacheManager = cache.NewManager()
	if GlobalCacheManager == nil {
		log.Fatal("Failed to create cache manager")
	}
	cache.GlobalInstance = GlobalCacheManager
	log.Println("Global cache manager initialized")

	// Start cleanup routine
	cache.StartCleanupRoutine(GlobalCacheManager)

	// Open visitor storage
	database, err := store.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to open visitor database: %v", err)
	}
	defer database.Close()
	log.Printf("Visitor database ready (%s)", database.GetConnectionInfo())

	visitorStore := store.NewSQLVisitorStore(database)

	// Lead alert email is optional; tracking runs without it
	var emailClient *email.Client
	if defaults.LeadAlertEnabled {
		emailClient, err = email.NewClient()
		if err != nil {
			log.Printf("Lead alert email disabled: %v", err)
			emailClient = nil
		}
	}

	processor := events.NewProcessor(visitorStore, GlobalCacheManager, emailClient)

	appCtx := &api.AppContext{
		Visitors:  visitorStore,
		Cache:     GlobalCacheManager,
		Processor: processor,
		Database:  database,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.FilteredLogger())
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// CORS: tracking beacons fire from the instrumented sites themselves
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:4321",
			"http://[::1]:3000",
			"http://[::1]:4321",
		},
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
	}))

	r.Use(api.WithAppContext(appCtx))

	// Authentication and system routes
	r.POST("/api/v1/auth/login", api.LoginHandler)
	r.GET("/api/v1/db/status", api.DBStatusHandler)

	// Public tracking beacons
	track := r.Group("/api/v1/track")
	track.Use(api.TrackRateLimitMiddleware())
	{
		track.POST("/field", api.CaptureFieldHandler)
		track.POST("/visitor", api.TrackVisitorHandler)
		track.POST("/event", api.TrackEventHandler)
		track.POST("/identify", api.IdentifyVisitorHandler)
	}

	// Administrative routes
	admin := r.Group("/api/v1/admin")
	admin.Use(api.AdminAuthMiddleware())
	{
		admin.GET("/analytics", api.GetAnalyticsHandler)
		admin.GET("/captured-forms", api.GetCapturedFormDataHandler)
		admin.GET("/visitors", api.ExportVisitorsHandler)
		admin.GET("/visitors/:visitorId", api.GetVisitorDetailsHandler)
		admin.POST("/visitors/delete", api.BulkDeleteVisitorsHandler)
	}

	log.Printf("Starting lead tracker on :%s", defaults.Port)
	if err := r.Run(":" + defaults.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
