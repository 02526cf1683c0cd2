package utils

import "strings"

// DeviceTypeFromUserAgent is the fallback when the beacon did not report a
// device type. The client-side sniff is authoritative.
func DeviceTypeFromUserAgent(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}
