package ports

import (
	"context"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// LookupRepository persists lookup history.
type LookupRepository interface {
	Insert(ctx context.Context, rec *domain.LookupRecord) error
	Recent(ctx context.Context, limit, offset int) ([]domain.LookupRecord, error)
	Count(ctx context.Context) (int, error)
	ZoneCounts(ctx context.Context) ([]domain.ZoneCount, error)
}
