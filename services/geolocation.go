package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	defaults "github.com/rarecask/leadtrack-go/config"
	"github.com/rarecask/leadtrack-go/models"
)

var geoClient = &http.Client{Timeout: defaults.GeoLookupTimeout}

type geoLookupResponse struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	Timezone   string `json:"timezone"`
}

// LookupLocation resolves an IP address to a coarse location. It is strictly
// best-effort: private/invalid addresses and lookup failures return an empty
// location, never an error, so the tracking pipeline is never blocked.
func LookupLocation(ipAddress string) models.LocationInfo {
	var empty models.LocationInfo

	ip := net.ParseIP(ipAddress)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() {
		return empty
	}

	resp, err := geoClient.Get(fmt.Sprintf("%s/%s", defaults.GeoLookupURL, ipAddress))
	if err != nil {
		log.Printf("Geolocation lookup failed for %s: %v", ipAddress, err)
		return empty
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Geolocation lookup for %s returned status %d", ipAddress, resp.StatusCode)
		return empty
	}

	var result geoLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Geolocation decode failed for %s: %v", ipAddress, err)
		return empty
	}

	if result.Status != "success" {
		return empty
	}

	return models.LocationInfo{
		Country:  result.Country,
		Region:   result.RegionName,
		City:     result.City,
		Timezone: result.Timezone,
	}
}
