package usecases

import (
	"fmt"
	"sort"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/pkg/geospatial"
)

const (
	// DefaultNearbyRadiusKm is used when no radius is given.
	DefaultNearbyRadiusKm = 50.0
	// MaxNearbyRadiusKm bounds the accepted radius.
	MaxNearbyRadiusKm = 5000.0
)

// MajorCities are the reference cities for nearby-city listings.
var MajorCities = []domain.City{
	{Name: "Delhi", Location: domain.GeoPoint{Lat: 28.6139, Lon: 77.2090}},
	{Name: "Mumbai", Location: domain.GeoPoint{Lat: 19.0760, Lon: 72.8777}},
	{Name: "Chennai", Location: domain.GeoPoint{Lat: 13.0827, Lon: 80.2707}},
	{Name: "Kolkata", Location: domain.GeoPoint{Lat: 22.5726, Lon: 88.3639}},
	{Name: "Bangalore", Location: domain.GeoPoint{Lat: 12.9716, Lon: 77.5946}},
	{Name: "Hyderabad", Location: domain.GeoPoint{Lat: 17.3850, Lon: 78.4867}},
	{Name: "Pune", Location: domain.GeoPoint{Lat: 18.5204, Lon: 73.8567}},
	{Name: "Ahmedabad", Location: domain.GeoPoint{Lat: 23.0225, Lon: 72.5714}},
}

// DemoCities are the reference points used by the CLI demo and the
// dataset refresh probes.
var DemoCities = MajorCities[:5]

// CityService lists major cities near a point.
type CityService struct {
	cities []domain.City
}

// NewCityService creates a CityService over MajorCities.
func NewCityService() *CityService {
	return &CityService{cities: MajorCities}
}

// Nearby returns cities within radiusKm of (lat, lon), closest first, with
// distances rounded to 0.1 km. A zero radius means DefaultNearbyRadiusKm.
func (s *CityService) Nearby(lat, lon, radiusKm float64) ([]domain.NearbyCity, error) {
	if err := (domain.GeoPoint{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, err
	}
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm < 0 || radiusKm > MaxNearbyRadiusKm {
		return nil, fmt.Errorf("%w: radius_km must be in (0, %.0f], got %g", domain.ErrInvalidRadius, MaxNearbyRadiusKm, radiusKm)
	}

	nearby := make([]domain.NearbyCity, 0)
	for _, c := range s.cities {
		d := geospatial.HaversineKm(lat, lon, c.Location.Lat, c.Location.Lon)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, domain.NearbyCity{
			Name:       c.Name,
			Lat:        c.Location.Lat,
			Lon:        c.Location.Lon,
			DistanceKm: geospatial.RoundTo(d, 1),
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}
