package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
)

func TestHistoryService_Disabled(t *testing.T) {
	svc := usecases.NewHistoryService(nil)

	if _, _, err := svc.Recent(context.Background(), 10, 0); !errors.Is(err, usecases.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.ZoneStats(context.Background()); !errors.Is(err, usecases.ErrHistoryDisabled) {
		t.Errorf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestHistoryService_Recent_ClampsPaging(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{10, 5, 10, 5},
		{0, 0, 20, 0},
		{500, -3, 20, 0},
		{100, 40, 100, 40},
	}
	for _, tt := range tests {
		var gotLimit, gotOffset int
		repo := &mockLookupRepo{
			recentFn: func(_ context.Context, limit, offset int) ([]domain.LookupRecord, error) {
				gotLimit, gotOffset = limit, offset
				return []domain.LookupRecord{{ID: "a"}}, nil
			},
			countFn: func(context.Context) (int, error) { return 42, nil },
		}
		svc := usecases.NewHistoryService(repo)

		recs, total, err := svc.Recent(context.Background(), tt.limit, tt.offset)
		if err != nil {
			t.Fatal(err)
		}
		if total != 42 || len(recs) != 1 {
			t.Errorf("unexpected page: %d records, total %d", len(recs), total)
		}
		if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
			t.Errorf("(%d, %d): expected repo call (%d, %d), got (%d, %d)",
				tt.limit, tt.offset, tt.wantLimit, tt.wantOffset, gotLimit, gotOffset)
		}
	}
}

func TestHistoryService_RepoErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := &mockLookupRepo{
		countFn:      func(context.Context) (int, error) { return 0, boom },
		zoneCountsFn: func(context.Context) ([]domain.ZoneCount, error) { return nil, boom },
	}
	svc := usecases.NewHistoryService(repo)

	if _, _, err := svc.Recent(context.Background(), 10, 0); !errors.Is(err, boom) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
	if _, err := svc.ZoneStats(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
}

func TestHistoryService_ZoneStats(t *testing.T) {
	repo := &mockLookupRepo{zoneCountsFn: func(context.Context) ([]domain.ZoneCount, error) {
		return []domain.ZoneCount{{SeismicZone: "IV", Count: 3}, {SeismicZone: "Unknown", Count: 1}}, nil
	}}
	counts, err := usecases.NewHistoryService(repo).ZoneStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 || counts[0].SeismicZone != "IV" {
		t.Errorf("unexpected counts %+v", counts)
	}
}
