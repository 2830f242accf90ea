package ports

import (
	"context"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// DatasetSource loads zone datasets. A missing dataset is (nil, nil).
type DatasetSource interface {
	Load(ctx context.Context, kind domain.DatasetKind) (*domain.ZoneDataset, error)
}

// Geocoder resolves free text to coordinates and coordinates to a display name.
// No match is (nil, nil) for Search and ("", nil) for Reverse.
type Geocoder interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLookup(ctx context.Context, event *domain.LookupEvent) error
	PublishDatasetReload(ctx context.Context, reason string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDatasetReload(ctx context.Context, handler func(ctx context.Context, reason string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// CacheFlusher is implemented by caches that can drop keys by glob pattern.
type CacheFlusher interface {
	FlushPrefix(ctx context.Context, pattern string) (int, error)
}
