package domain

import (
	"time"
)

// LocationResult is the zone lookup for one coordinate. ZoneFactor and
// BasicWindSpeed are nil when no polygon covers the point.
type LocationResult struct {
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	SeismicZone    string   `json:"seismic_zone"`
	ZoneFactor     *float64 `json:"zone_factor"`
	BasicWindSpeed *float64 `json:"basic_wind_speed"`
	PlaceName      string   `json:"place_name"`
	State          string   `json:"state"`
}

// NewLocationResult returns a result with every field at its sentinel.
func NewLocationResult(lat, lon float64) LocationResult {
	return LocationResult{
		Lat:         lat,
		Lon:         lon,
		SeismicZone: Unknown,
		PlaceName:   Unknown,
		State:       Unknown,
	}
}

// LocationReport is a LocationResult enriched for presentation.
type LocationReport struct {
	LocationResult
	RiskLevel   string    `json:"risk_level"`
	WindClass   string    `json:"wind_class"`
	DisplayName string    `json:"display_name,omitempty"`
	LookedUpAt  time.Time `json:"looked_up_at"`
}

// NearbyCity is a major city within the requested radius.
type NearbyCity struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

// City is an entry of the built-in city tables.
type City struct {
	Name     string
	Location GeoPoint
}

// Search result sources.
const (
	SourceCoordinates = "coordinates"
	SourceNominatim   = "nominatim"
)

// SearchResult is the resolved location of a free-text query.
type SearchResult struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Source      string  `json:"source"`
}

// LookupRecord is a persisted lookup.
type LookupRecord struct {
	ID             string    `json:"id"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	SeismicZone    string    `json:"seismic_zone"`
	ZoneFactor     *float64  `json:"zone_factor"`
	BasicWindSpeed *float64  `json:"basic_wind_speed"`
	PlaceName      string    `json:"place_name"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

// ZoneCount aggregates recorded lookups per seismic zone.
type ZoneCount struct {
	SeismicZone string `json:"seismic_zone"`
	Count       int    `json:"count"`
}

// LookupEvent is broadcast after every lookup.
type LookupEvent struct {
	ID         string         `json:"id"`
	Result     LocationResult `json:"result"`
	RiskLevel  string         `json:"risk_level"`
	WindClass  string         `json:"wind_class"`
	OccurredAt time.Time      `json:"occurred_at"`
}
