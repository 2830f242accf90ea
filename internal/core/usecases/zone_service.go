package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/pkg/geospatial"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
)

// ZoneService owns the loaded zone datasets and answers point lookups.
// Lookups read an immutable snapshot; Reload swaps in a new one.
type ZoneService struct {
	source  ports.DatasetSource
	matcher geospatial.Containment

	reloadMu sync.Mutex // serialises loads

	mu   sync.RWMutex
	snap *zoneSnapshot
}

type zoneSnapshot struct {
	datasets map[domain.DatasetKind]*domain.ZoneDataset
	loadedAt time.Time
}

// NewZoneService creates a ZoneService. A nil matcher selects ray casting.
func NewZoneService(source ports.DatasetSource, matcher geospatial.Containment) *ZoneService {
	if matcher == nil {
		matcher = geospatial.RayCasting{}
	}
	return &ZoneService{source: source, matcher: matcher}
}

// Reload loads every dataset and installs them as the served snapshot.
// On error the previous snapshot stays in place.
func (s *ZoneService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *ZoneService) reloadLocked(ctx context.Context) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanZoneReload)
	defer span.End()

	snap, err := s.load(ctx)
	if err != nil {
		metrics.DatasetReloads.WithLabelValues(metrics.ResultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("reload zones: %w", err)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	metrics.DatasetReloads.WithLabelValues(metrics.ResultOK).Inc()

	attrs := make([]any, 0, 2*len(domain.DatasetKinds))
	present := 0
	for _, kind := range domain.DatasetKinds {
		ds := snap.datasets[kind]
		metrics.DatasetFeatures.WithLabelValues(string(kind)).Set(float64(ds.Len()))
		attrs = append(attrs, string(kind), ds.Len())
		if ds != nil {
			present++
		}
	}
	if present == 0 {
		slog.WarnContext(ctx, "no zone datasets present, lookups will return Unknown")
	}
	slog.InfoContext(ctx, "zone datasets loaded", attrs...)
	return nil
}

func (s *ZoneService) load(ctx context.Context) (*zoneSnapshot, error) {
	loaded := make([]*domain.ZoneDataset, len(domain.DatasetKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range domain.DatasetKinds {
		g.Go(func() error {
			ds, err := s.source.Load(gctx, kind)
			if err != nil {
				return fmt.Errorf("load %s dataset: %w", kind, err)
			}
			loaded[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &zoneSnapshot{
		datasets: make(map[domain.DatasetKind]*domain.ZoneDataset, len(loaded)),
		loadedAt: time.Now().UTC(),
	}
	for i, kind := range domain.DatasetKinds {
		snap.datasets[kind] = loaded[i]
	}
	return snap, nil
}

// current returns the served snapshot, loading it on first use.
func (s *ZoneService) current(ctx context.Context) (*zoneSnapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.mu.RLock()
	snap = s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

// Lookup resolves the seismic zone, wind speed and administrative region
// covering (lat, lon). Coordinates outside every polygon produce the
// Unknown/nil sentinels, not an error. The only errors are invalid input and
// a failed first load.
func (s *ZoneService) Lookup(ctx context.Context, lat, lon float64) (*domain.LocationResult, error) {
	pt := domain.GeoPoint{Lat: lat, Lon: lon}
	if err := pt.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanZoneLookup)
	defer span.End()
	start := time.Now()

	res := domain.NewLocationResult(lat, lon)
	p := pt.Point()

	if f := s.match(snap.datasets[domain.DatasetSeismic], p); f != nil {
		res.SeismicZone = f.Props.ZoneLabel()
		if z, ok := domain.ZoneFactor(res.SeismicZone); ok {
			res.ZoneFactor = &z
		}
	}

	if f := s.match(snap.datasets[domain.DatasetWind], p); f != nil && f.Props.BasicWindSpeed != nil {
		vb := *f.Props.BasicWindSpeed
		res.BasicWindSpeed = &vb
	}

	if f := s.match(snap.datasets[domain.DatasetAdmin], p); f != nil {
		res.PlaceName = f.Props.PlaceName()
		res.State = f.Props.StateName()
	}

	metrics.ZoneLookupDuration.Observe(time.Since(start).Seconds())
	metrics.ZoneLookups.WithLabelValues(res.SeismicZone).Inc()
	span.SetAttributes(
		attribute.Float64(telemetry.AttrLat, lat),
		attribute.Float64(telemetry.AttrLon, lon),
		attribute.String(telemetry.AttrSeismicZone, res.SeismicZone),
	)

	return &res, nil
}

// match returns the first feature in storage order whose ring contains p.
func (s *ZoneService) match(ds *domain.ZoneDataset, p orb.Point) *domain.PolygonFeature {
	if ds == nil {
		return nil
	}
	for i := range ds.Features {
		f := &ds.Features[i]
		if !f.Bound.Contains(p) {
			continue
		}
		if s.matcher.Contains(f.Ring, p) {
			return f
		}
	}
	return nil
}

// Status describes the served snapshot. Before the first load LoadedAt is zero.
func (s *ZoneService) Status() domain.ZoneStatus {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	st := domain.ZoneStatus{Matcher: s.matcher.Name()}
	if snap == nil {
		return st
	}
	st.LoadedAt = snap.loadedAt
	for _, kind := range domain.DatasetKinds {
		ds := snap.datasets[kind]
		entry := domain.DatasetStatus{Kind: kind, Present: ds != nil}
		if ds != nil {
			entry.Source = ds.Source
			entry.CRS = ds.CRS
			entry.Features = len(ds.Features)
			entry.Skipped = ds.Skipped
		}
		st.Datasets = append(st.Datasets, entry)
	}
	return st
}
