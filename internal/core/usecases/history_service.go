package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/ports"
)

// ErrHistoryDisabled is returned when no lookup repository is configured.
var ErrHistoryDisabled = errors.New("lookup history not available")

// HistoryService reads recorded lookups.
type HistoryService struct {
	lookups ports.LookupRepository
}

// NewHistoryService creates a new HistoryService. lookups may be nil.
func NewHistoryService(lookups ports.LookupRepository) *HistoryService {
	return &HistoryService{lookups: lookups}
}

// Recent returns a page of lookups, newest first, and the total count.
func (s *HistoryService) Recent(ctx context.Context, limit, offset int) ([]domain.LookupRecord, int, error) {
	if s.lookups == nil {
		return nil, 0, ErrHistoryDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.lookups.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count lookups: %w", err)
	}
	records, err := s.lookups.Recent(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list lookups: %w", err)
	}
	return records, total, nil
}

// ZoneStats returns lookup counts per seismic zone.
func (s *HistoryService) ZoneStats(ctx context.Context) ([]domain.ZoneCount, error) {
	if s.lookups == nil {
		return nil, ErrHistoryDisabled
	}
	counts, err := s.lookups.ZoneCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("zone counts: %w", err)
	}
	return counts, nil
}
