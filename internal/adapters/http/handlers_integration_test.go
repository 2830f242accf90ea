//go:build integration
// +build integration

package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	handler "github.com/samirrijal/locationwizard/internal/adapters/http"
	"github.com/samirrijal/locationwizard/internal/adapters/geojson"
	"github.com/samirrijal/locationwizard/internal/adapters/postgres"
	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
	"github.com/samirrijal/locationwizard/internal/pkg/config"
)

// setupTestDB connects to the test database and ensures the lookups table exists.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("locationwizard-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_lookups.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE lookups`); err != nil {
		t.Fatalf("truncate lookups: %v", err)
	}
	return db
}

// setupTestDeps wires the sample datasets and a real lookup repository, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	zones := usecases.NewZoneService(geojson.NewFileSource(filepath.Join("..", "..", "..", "data")), nil)
	if err := zones.Reload(context.Background()); err != nil {
		t.Fatalf("load datasets: %v", err)
	}
	repo := postgres.NewLookupRepo(db)

	return &handler.Dependencies{
		Locations: usecases.NewLocationService(zones, nil, nil, repo, nil),
		Zones:     zones,
		Search:    usecases.NewSearchService(nil, nil),
		Cities:    usecases.NewCityService(),
		History:   usecases.NewHistoryService(repo),
		DB:        db,
	}
}

func TestLookupHistory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	for _, target := range []string{
		"/v1/location?lat=28.6139&lon=77.2090",
		"/v1/location?lat=19.0760&lon=72.8777",
		"/v1/location?lat=0&lon=0",
	} {
		if r := get(t, app, target); r.status != 200 {
			t.Fatalf("%s: expected 200, got %d: %s", target, r.status, r.body)
		}
	}

	r := get(t, app, "/v1/lookups?limit=2")
	if r.status != 200 {
		t.Fatalf("expected 200, got %d: %s", r.status, r.body)
	}
	var page struct {
		Data       []domain.LookupRecord `json:"data"`
		Pagination struct{ Total int }   `json:"pagination"`
	}
	r.decode(t, &page)

	if page.Pagination.Total != 3 {
		t.Errorf("expected 3 lookups, got %d", page.Pagination.Total)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Data))
	}
	if page.Data[0].CreatedAt.Before(page.Data[1].CreatedAt) {
		t.Error("expected newest lookup first")
	}
	if r.header("Link") == "" {
		t.Error("expected Link header")
	}
}

func TestLookupStats_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	get(t, app, "/v1/location?lat=0&lon=0")
	get(t, app, "/v1/location?lat=1&lon=1")

	r := get(t, app, "/v1/lookups/stats")
	if r.status != 200 {
		t.Fatalf("expected 200, got %d: %s", r.status, r.body)
	}
	var counts []domain.ZoneCount
	r.decode(t, &counts)

	if len(counts) == 0 || counts[0].SeismicZone != domain.Unknown || counts[0].Count != 2 {
		t.Errorf("expected Unknown=2 first, got %+v", counts)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	r := get(t, app, "/v1/ready")
	if r.status != 200 {
		t.Fatalf("expected 200, got %d: %s", r.status, r.body)
	}
}
