package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

func TestGeoPoint_Validate(t *testing.T) {
	valid := []domain.GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
		{Lat: 28.6139, Lon: 77.2090},
	}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("%+v: unexpected error %v", p, err)
		}
	}

	invalid := []domain.GeoPoint{
		{Lat: 90.0001, Lon: 0},
		{Lat: 0, Lon: -180.5},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
	}
	for _, p := range invalid {
		if err := p.Validate(); !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("%+v: expected ErrInvalidCoordinate, got %v", p, err)
		}
	}
}

func TestGeoPoint_PointIsLonLat(t *testing.T) {
	p := domain.GeoPoint{Lat: 28.6, Lon: 77.2}.Point()
	if p.X() != 77.2 || p.Y() != 28.6 {
		t.Errorf("expected (77.2, 28.6), got %v", p)
	}
}

func TestIndiaBounds(t *testing.T) {
	if !domain.IndiaBounds.Contains(domain.GeoPoint{Lat: 6, Lon: 68}) {
		t.Error("corner should be inside")
	}
	if domain.IndiaBounds.Contains(domain.GeoPoint{Lat: 51.5, Lon: -0.12}) {
		t.Error("London should be outside")
	}
}
