// Package config provides centralized default values for the lead tracker
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from .env file
func loadEnvFile() {
	envLoaded.Do(func() {
		loadEnvFileOnce()
	})
}

func loadEnvFileOnce() {
	file, err := os.Open(".env")
	if err != nil {
		// .env file is optional, don't error if it doesn't exist
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first = sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Only set if not already set in environment
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func init() {
	// Ensure .env is loaded before any config access
	loadEnvFile()
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat reads environment variable with float fallback
func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// Server Configuration
var (
	Port      = getEnvString("PORT", "8080")
	JWTSecret = getEnvString("JWT_SECRET", "")

	// Admin login: bcrypt hash preferred, plaintext compare as dev fallback
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	AdminPassword     = getEnvString("ADMIN_PASSWORD", "")
)

// Session Stitching
var (
	// SessionInactivityGap is the threshold after which new activity opens a
	// fresh session instead of extending the current one.
	SessionInactivityGap = time.Duration(getEnvInt("SESSION_INACTIVITY_MINUTES", 30)) * time.Minute
)

// Scoring Configuration
var (
	// Engagement increments (monotonic counter, capped at 100, no decay)
	EngagementFieldCaptureBonus = getEnvInt("ENGAGEMENT_FIELD_CAPTURE_BONUS", 5)
	EngagementFormEventBonus    = getEnvInt("ENGAGEMENT_FORM_EVENT_BONUS", 5)

	// Lead score weights (recomputed as a pure function of visitor state)
	LeadWeightEmail             = getEnvInt("LEAD_WEIGHT_EMAIL", 30)
	LeadWeightPhone             = getEnvInt("LEAD_WEIGHT_PHONE", 15)
	LeadWeightName              = getEnvInt("LEAD_WEIGHT_NAME", 10)
	LeadWeightPerForm           = getEnvInt("LEAD_WEIGHT_PER_FORM", 5)
	LeadWeightFormCap           = getEnvInt("LEAD_WEIGHT_FORM_CAP", 15)
	LeadWeightPerInterest       = getEnvInt("LEAD_WEIGHT_PER_INTEREST", 2)
	LeadWeightInterestCap       = getEnvInt("LEAD_WEIGHT_INTEREST_CAP", 10)
	LeadWeightPerPageView       = getEnvInt("LEAD_WEIGHT_PER_PAGEVIEW", 1)
	LeadWeightPageViewCap       = getEnvInt("LEAD_WEIGHT_PAGEVIEW_CAP", 10)
	LeadWeightEngagementDivisor = getEnvInt("LEAD_WEIGHT_ENGAGEMENT_DIVISOR", 5)

	// DefaultLeadScore is the safe fallback when score computation fails
	DefaultLeadScore = getEnvInt("DEFAULT_LEAD_SCORE", 10)

	// Classification thresholds
	ProspectLeadThreshold  = getEnvInt("PROSPECT_LEAD_THRESHOLD", 30)
	QualifiedLeadThreshold = getEnvInt("QUALIFIED_LEAD_THRESHOLD", 50)
	HighEngagementScore    = getEnvInt("HIGH_ENGAGEMENT_SCORE", 50)
	ActiveVisitorScore     = getEnvInt("ACTIVE_VISITOR_SCORE", 30)
)

// Storage Configuration
var (
	SQLitePath    = getEnvString("SQLITE_PATH", "./data/leadtrack.db")
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken    = getEnvString("TURSO_AUTH_TOKEN", "")

	DBMaxOpenConns           = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns           = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
)

// Cache Configuration
var (
	MaxCachedVisitors = getEnvInt("MAX_CACHED_VISITORS", 5000)
	VisitorCacheTTL   = time.Duration(getEnvInt("VISITOR_CACHE_TTL_HOURS", 2)) * time.Hour
	CleanupInterval   = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
)

// Rate Limiting (tracking beacon endpoints only)
var (
	TrackRateLimit = getEnvFloat("TRACK_RATE_LIMIT_PER_SECOND", 20)
	TrackRateBurst = getEnvInt("TRACK_RATE_BURST", 40)
)

// Geolocation enrichment
var (
	GeoLookupURL     = getEnvString("GEO_LOOKUP_URL", "http://ip-api.com/json")
	GeoLookupTimeout = time.Duration(getEnvInt("GEO_LOOKUP_TIMEOUT_SECONDS", 2)) * time.Second
)

// Lead alert email
var (
	LeadAlertEnabled = getEnvString("LEAD_ALERT_ENABLED", "true") == "true"
	LeadAlertEmail   = getEnvString("LEAD_ALERT_EMAIL", "")
)
