package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
)

func delhiZones() *usecases.ZoneService {
	return usecases.NewZoneService(&mockSource{}, nil)
}

func TestLocationService_Describe(t *testing.T) {
	svc := usecases.NewLocationService(delhiZones(), nil, nil, nil, nil)

	r, err := svc.Describe(context.Background(), 28.6139, 77.2090, usecases.DescribeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.SeismicZone != "IV" || r.RiskLevel != "High" {
		t.Errorf("expected IV/High, got %s/%s", r.SeismicZone, r.RiskLevel)
	}
	if r.WindClass != "High (Coastal)" {
		t.Errorf("expected High (Coastal), got %s", r.WindClass)
	}
	if r.PlaceName != "New Delhi" || r.DisplayName != "" {
		t.Errorf("unexpected names: %q / %q", r.PlaceName, r.DisplayName)
	}
	if r.LookedUpAt.IsZero() {
		t.Error("expected LookedUpAt to be set")
	}
}

func TestLocationService_OutsideCoverage(t *testing.T) {
	svc := usecases.NewLocationService(delhiZones(), nil, nil, nil, nil)

	r, err := svc.Describe(context.Background(), 0, 0, usecases.DescribeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if r.RiskLevel != domain.Unknown || r.WindClass != domain.Unknown {
		t.Errorf("expected Unknown risk and wind class, got %s/%s", r.RiskLevel, r.WindClass)
	}
}

func TestLocationService_InvalidCoordinate(t *testing.T) {
	repo := &mockLookupRepo{}
	svc := usecases.NewLocationService(delhiZones(), nil, nil, repo, nil)

	_, err := svc.Describe(context.Background(), 123, 0, usecases.DescribeOptions{})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Error("invalid lookups must not be recorded")
	}
}

func TestLocationService_ReverseGeocoding(t *testing.T) {
	tests := []struct {
		name        string
		reverse     func(ctx context.Context, lat, lon float64) (string, error)
		wantPlace   string
		wantDisplay string
	}{
		{
			name: "longer name replaces place",
			reverse: func(context.Context, float64, float64) (string, error) {
				return "Rajpath, New Delhi, Delhi, India", nil
			},
			wantPlace:   "Rajpath, New Delhi, Delhi, India",
			wantDisplay: "Rajpath, New Delhi, Delhi, India",
		},
		{
			name: "shorter name kept as display only",
			reverse: func(context.Context, float64, float64) (string, error) {
				return "Delhi", nil
			},
			wantPlace:   "New Delhi",
			wantDisplay: "Delhi",
		},
		{
			name: "nothing found",
			reverse: func(context.Context, float64, float64) (string, error) {
				return "", nil
			},
			wantPlace: "New Delhi",
		},
		{
			name: "geocoder failure is ignored",
			reverse: func(context.Context, float64, float64) (string, error) {
				return "", errors.New("timeout")
			},
			wantPlace: "New Delhi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGeocoder{reverseFn: tt.reverse}
			svc := usecases.NewLocationService(delhiZones(), g, nil, nil, nil)

			r, err := svc.Describe(context.Background(), 28.6139, 77.2090, usecases.DescribeOptions{Reverse: true})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.PlaceName != tt.wantPlace || r.DisplayName != tt.wantDisplay {
				t.Errorf("expected %q/%q, got %q/%q", tt.wantPlace, tt.wantDisplay, r.PlaceName, r.DisplayName)
			}
		})
	}
}

func TestLocationService_ReverseOnlyWhenAsked(t *testing.T) {
	var calls atomic.Int32
	g := &mockGeocoder{reverseFn: func(context.Context, float64, float64) (string, error) {
		calls.Add(1)
		return "somewhere", nil
	}}
	svc := usecases.NewLocationService(delhiZones(), g, nil, nil, nil)

	if _, err := svc.Describe(context.Background(), 28.6, 77.2, usecases.DescribeOptions{}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 0 {
		t.Errorf("geocoder called %d times without reverse", calls.Load())
	}
}

func TestLocationService_RecordsAndPublishes(t *testing.T) {
	repo := &mockLookupRepo{}
	pub := &mockPublisher{}
	svc := usecases.NewLocationService(delhiZones(), nil, nil, repo, pub)

	r, err := svc.Describe(context.Background(), 28.6139, 77.2090, usecases.DescribeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(repo.inserted) != 1 || len(pub.events) != 1 {
		t.Fatalf("expected one record and one event, got %d/%d", len(repo.inserted), len(pub.events))
	}
	rec, ev := repo.inserted[0], pub.events[0]
	if rec.ID == "" || rec.ID != ev.ID {
		t.Errorf("record and event should share an ID: %q vs %q", rec.ID, ev.ID)
	}
	if rec.SeismicZone != "IV" || rec.State != "Delhi" || !rec.CreatedAt.Equal(r.LookedUpAt) {
		t.Errorf("unexpected record: %+v", rec)
	}
	if ev.RiskLevel != "High" || ev.Result.SeismicZone != "IV" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestLocationService_RecordingFailuresAreSoft(t *testing.T) {
	repo := &mockLookupRepo{insertFn: func(context.Context, *domain.LookupRecord) error {
		return errors.New("connection refused")
	}}
	pub := &mockPublisher{err: errors.New("nats: timeout")}
	svc := usecases.NewLocationService(delhiZones(), nil, nil, repo, pub)

	if _, err := svc.Describe(context.Background(), 28.6, 77.2, usecases.DescribeOptions{}); err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
}

func TestLocationService_CachesReports(t *testing.T) {
	var calls atomic.Int32
	g := &mockGeocoder{reverseFn: func(context.Context, float64, float64) (string, error) {
		calls.Add(1)
		return "Janpath, New Delhi", nil
	}}
	cache := newMockCache()
	repo := &mockLookupRepo{}
	svc := usecases.NewLocationService(delhiZones(), g, cache, repo, nil)
	opts := usecases.DescribeOptions{Reverse: true}

	first, err := svc.Describe(context.Background(), 28.6139, 77.2090, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Describe(context.Background(), 28.6139, 77.2090, opts)
	if err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected one geocoder call, got %d", calls.Load())
	}
	if second.DisplayName != first.DisplayName || second.SeismicZone != first.SeismicZone {
		t.Errorf("cached report differs: %+v vs %+v", second, first)
	}
	if len(repo.inserted) != 2 {
		t.Errorf("cache hits are still recorded, got %d records", len(repo.inserted))
	}
}

func TestLocationService_ReloadZonesFlushesLocationCache(t *testing.T) {
	src := &mockSource{}
	cache := newMockCache()
	_ = cache.Set(context.Background(), "search:pune", []byte(`{}`), 0)
	svc := usecases.NewLocationService(usecases.NewZoneService(src, nil), nil, cache, nil, nil)

	if _, err := svc.Describe(context.Background(), 28.6, 77.2, usecases.DescribeOptions{}); err != nil {
		t.Fatal(err)
	}
	if cache.len() != 2 {
		t.Fatalf("expected report and search entries, got %d", cache.len())
	}

	if err := svc.ReloadZones(context.Background(), "test"); err != nil {
		t.Fatal(err)
	}
	if cache.len() != 1 {
		t.Errorf("expected only the search entry to survive, got %d", cache.len())
	}
	if _, err := cache.Get(context.Background(), "search:pune"); err != nil {
		t.Error("search entry should survive a zone reload")
	}
	if got := src.calls.Load(); got != 2*int32(len(domain.DatasetKinds)) {
		t.Errorf("expected two full loads, got %d calls", got)
	}
}

func TestLocationService_ReloadZonesFailure(t *testing.T) {
	src := &mockSource{loadFn: func(context.Context, domain.DatasetKind) (*domain.ZoneDataset, error) {
		return nil, errors.New("permission denied")
	}}
	svc := usecases.NewLocationService(usecases.NewZoneService(src, nil), nil, nil, nil, nil)

	if err := svc.ReloadZones(context.Background(), "test"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLocationService_Report(t *testing.T) {
	svc := usecases.NewLocationService(delhiZones(), nil, nil, nil, nil)

	text, err := svc.Report(context.Background(), 28.6139, 77.2090, usecases.DescribeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Coordinates: 28.613900, 77.209000",
		"Place: New Delhi",
		"State: Delhi",
		"Seismic Zone: IV (Z = 0.24, risk: High)",
		"Basic Wind Speed: 47.0 m/s (High (Coastal))",
		"Generated: ",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}
