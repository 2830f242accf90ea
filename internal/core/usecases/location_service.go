package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
)

// locationCacheTTL is how long an enriched report stays cached, in seconds.
const locationCacheTTL = 300

// DescribeOptions tunes LocationService.Describe.
type DescribeOptions struct {
	// Reverse asks the geocoder for a display name.
	Reverse bool
}

// LocationService enriches zone lookups for presentation. Every collaborator
// except the ZoneService is optional.
type LocationService struct {
	zones     *ZoneService
	geocoder  ports.Geocoder
	cache     ports.CacheService
	lookups   ports.LookupRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewLocationService creates a new LocationService.
func NewLocationService(
	zones *ZoneService,
	geocoder ports.Geocoder,
	cache ports.CacheService,
	lookups ports.LookupRepository,
	publisher ports.EventPublisher,
) *LocationService {
	return &LocationService{
		zones:     zones,
		geocoder:  geocoder,
		cache:     cache,
		lookups:   lookups,
		publisher: publisher,
		now:       time.Now,
	}
}

// Describe looks up (lat, lon) and adds risk level, wind class and, when
// requested, a reverse-geocoded display name. The lookup is recorded and
// broadcast on a best-effort basis.
func (s *LocationService) Describe(ctx context.Context, lat, lon float64, opts DescribeOptions) (*domain.LocationReport, error) {
	if err := (domain.GeoPoint{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanDescribe)
	defer span.End()

	report, err := s.cachedReport(ctx, lat, lon, opts)
	if err != nil {
		return nil, err
	}
	report.LookedUpAt = s.now().UTC()

	s.record(ctx, report)
	return report, nil
}

func (s *LocationService) cachedReport(ctx context.Context, lat, lon float64, opts DescribeOptions) (*domain.LocationReport, error) {
	cacheKey := fmt.Sprintf("location:%.5f:%.5f:%t", lat, lon, opts.Reverse)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var report domain.LocationReport
			if err := json.Unmarshal(data, &report); err == nil {
				metrics.CacheHits.WithLabelValues("location").Inc()
				return &report, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("location").Inc()
	}

	res, err := s.zones.Lookup(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	report := &domain.LocationReport{
		LocationResult: *res,
		RiskLevel:      domain.RiskLevel(res.SeismicZone),
		WindClass:      domain.WindClass(res.BasicWindSpeed),
	}

	if opts.Reverse && s.geocoder != nil {
		rctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanReverse)
		name, err := s.geocoder.Reverse(rctx, lat, lon)
		span.End()
		switch {
		case err != nil:
			slog.WarnContext(ctx, "reverse geocoding unavailable", "lat", lat, "lon", lon, "error", err)
		case name != "":
			report.DisplayName = name
			if len(name) > len(report.PlaceName) {
				report.PlaceName = name
			}
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, locationCacheTTL)
		}
	}
	return report, nil
}

func (s *LocationService) record(ctx context.Context, report *domain.LocationReport) {
	id := uuid.NewString()
	res := report.LocationResult

	if s.lookups != nil {
		rec := &domain.LookupRecord{
			ID:             id,
			Lat:            res.Lat,
			Lon:            res.Lon,
			SeismicZone:    res.SeismicZone,
			ZoneFactor:     res.ZoneFactor,
			BasicWindSpeed: res.BasicWindSpeed,
			PlaceName:      res.PlaceName,
			State:          res.State,
			CreatedAt:      report.LookedUpAt,
		}
		if err := s.lookups.Insert(ctx, rec); err != nil {
			slog.WarnContext(ctx, "record lookup failed", "error", err)
		}
	}

	if s.publisher != nil {
		event := &domain.LookupEvent{
			ID:         id,
			Result:     res,
			RiskLevel:  report.RiskLevel,
			WindClass:  report.WindClass,
			OccurredAt: report.LookedUpAt,
		}
		if err := s.publisher.PublishLookup(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish lookup failed", "error", err)
		}
	}
}

// Report renders the plain-text summary for (lat, lon).
func (s *LocationService) Report(ctx context.Context, lat, lon float64, opts DescribeOptions) (string, error) {
	report, err := s.Describe(ctx, lat, lon, opts)
	if err != nil {
		return "", err
	}
	return FormatReport(report), nil
}

// ReloadZones reloads the zone datasets and drops cached reports built
// from the previous snapshot.
func (s *LocationService) ReloadZones(ctx context.Context, reason string) error {
	if err := s.zones.Reload(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "zone datasets reloaded", "reason", reason)

	if f, ok := s.cache.(ports.CacheFlusher); ok {
		n, err := f.FlushPrefix(ctx, "location:*")
		if err != nil {
			slog.WarnContext(ctx, "flush location cache failed", "error", err)
		} else if n > 0 {
			slog.DebugContext(ctx, "location cache flushed", "keys", n)
		}
	}
	return nil
}
