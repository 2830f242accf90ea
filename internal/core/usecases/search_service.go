package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
)

const (
	searchCacheTTL = 3600 // 1 hour
	maxSuggestions = 5
)

// suggestionCities feeds search autocompletion, in display order.
var suggestionCities = []string{
	"Delhi", "Mumbai", "Chennai", "Kolkata", "Bangalore",
	"Hyderabad", "Pune", "Ahmedabad", "Jaipur", "Lucknow",
}

// SearchService resolves free-text locations.
type SearchService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	inflight singleflight.Group
}

// NewSearchService creates a new SearchService. geocoder and cache may be nil.
func NewSearchService(geocoder ports.Geocoder, cache ports.CacheService) *SearchService {
	return &SearchService{geocoder: geocoder, cache: cache}
}

// Search resolves query to a location. A "lat,lon" query inside India is
// returned as-is; anything else goes to the geocoder. No match and geocoder
// failures both yield (nil, nil).
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}

	if res, ok := ParseCoordinates(q); ok {
		return res, nil
	}
	if s.geocoder == nil {
		return nil, nil
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSearch)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrQuery, q))

	cacheKey := "search:" + strings.ToLower(q)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.SearchResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("search").Inc()
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("search").Inc()
	}

	// The shared call outlives any single caller; the geocoder's own
	// timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(cacheKey, func() (any, error) {
		return s.geocoder.Search(shared, q)
	})
	var r singleflight.Result
	select {
	case <-ctx.Done():
		slog.WarnContext(ctx, "location search abandoned", "query", q, "error", ctx.Err())
		return nil, nil
	case r = <-ch:
	}
	if r.Err != nil {
		slog.WarnContext(ctx, "location search unavailable", "query", q, "error", r.Err)
		return nil, nil
	}
	res, _ := r.Val.(*domain.SearchResult)
	if res == nil {
		return nil, nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, searchCacheTTL)
		}
	}
	// Callers share the singleflight value; hand each its own copy.
	out := *res
	return &out, nil
}

// ParseCoordinates accepts "lat,lon" with both parts numeric and the point
// inside domain.IndiaBounds.
func ParseCoordinates(q string) (*domain.SearchResult, bool) {
	parts := strings.Split(q, ",")
	if len(parts) != 2 {
		return nil, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, false
	}
	if !domain.IndiaBounds.Contains(domain.GeoPoint{Lat: lat, Lon: lon}) {
		return nil, false
	}
	return &domain.SearchResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: fmt.Sprintf("Coordinates: %.6f, %.6f", lat, lon),
		Source:      domain.SourceCoordinates,
	}, true
}

// Suggestions returns up to five city names containing query, ignoring case.
// An empty query returns the first five cities.
func (s *SearchService) Suggestions(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, maxSuggestions)
	for _, city := range suggestionCities {
		if len(out) == maxSuggestions {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(city), q) {
			out = append(out, city)
		}
	}
	return out
}
