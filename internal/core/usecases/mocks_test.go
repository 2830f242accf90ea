package usecases_test

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

var errMiss = errors.New("miss")

// --- Mock DatasetSource ---

type mockSource struct {
	loadFn func(ctx context.Context, kind domain.DatasetKind) (*domain.ZoneDataset, error)
	calls  atomic.Int32
}

func (m *mockSource) Load(ctx context.Context, kind domain.DatasetKind) (*domain.ZoneDataset, error) {
	m.calls.Add(1)
	if m.loadFn != nil {
		return m.loadFn(ctx, kind)
	}
	return delhiDataset(kind), nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	searchFn  func(ctx context.Context, q string) (*domain.SearchResult, error)
	reverseFn func(ctx context.Context, lat, lon float64) (string, error)
	searches  atomic.Int32
}

func (m *mockGeocoder) Search(ctx context.Context, q string) (*domain.SearchResult, error) {
	m.searches.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, nil
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, lat, lon)
	}
	return "", nil
}

// --- Mock cache ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errMiss
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) FlushPrefix(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *mockCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// --- Mock LookupRepository ---

type mockLookupRepo struct {
	mu       sync.Mutex
	inserted []domain.LookupRecord
	insertFn func(ctx context.Context, rec *domain.LookupRecord) error

	recentFn     func(ctx context.Context, limit, offset int) ([]domain.LookupRecord, error)
	countFn      func(ctx context.Context) (int, error)
	zoneCountsFn func(ctx context.Context) ([]domain.ZoneCount, error)
}

func (m *mockLookupRepo) Insert(ctx context.Context, rec *domain.LookupRecord) error {
	m.mu.Lock()
	m.inserted = append(m.inserted, *rec)
	m.mu.Unlock()
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return nil
}

func (m *mockLookupRepo) Recent(ctx context.Context, limit, offset int) ([]domain.LookupRecord, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockLookupRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockLookupRepo) ZoneCounts(ctx context.Context) ([]domain.ZoneCount, error) {
	if m.zoneCountsFn != nil {
		return m.zoneCountsFn(ctx)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu      sync.Mutex
	events  []domain.LookupEvent
	reloads []string
	err     error
}

func (m *mockPublisher) PublishLookup(_ context.Context, e *domain.LookupEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return m.err
}

func (m *mockPublisher) PublishDatasetReload(_ context.Context, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads = append(m.reloads, reason)
	return m.err
}

// --- Fixtures ---

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func box(minLon, minLat, maxLon, maxLat float64) domain.PolygonFeature {
	ring := orb.Ring{{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}}
	return domain.PolygonFeature{Ring: ring, Bound: ring.Bound()}
}

// delhiDataset covers the Delhi region with zone IV, Vb 47 and an admin area.
func delhiDataset(kind domain.DatasetKind) *domain.ZoneDataset {
	f := box(76, 27.5, 78.5, 30.5)
	switch kind {
	case domain.DatasetSeismic:
		f.Props.Zone = strPtr("IV")
	case domain.DatasetWind:
		f.Props.BasicWindSpeed = f64Ptr(47)
	case domain.DatasetAdmin:
		f = box(76.8, 28.4, 77.4, 28.9)
		f.Props.Name = strPtr("New Delhi")
		f.Props.State = strPtr("Delhi")
	}
	return &domain.ZoneDataset{Kind: kind, Source: string(kind), CRS: "EPSG:4326", Features: []domain.PolygonFeature{f}}
}
