package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/locationwizard/internal/adapters/geojson"
	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
	"github.com/samirrijal/locationwizard/internal/pkg/geospatial"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
)

// ErrTypeInvalidDatasets marks validation failures that retrying cannot fix.
const ErrTypeInvalidDatasets = "InvalidDatasets"

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	Publisher ports.EventPublisher
	// Probes are the reference points checked after validation.
	// Empty means usecases.DemoCities.
	Probes []domain.City
}

// scratchZones loads the datasets in dataDir into a ZoneService that is
// never served.
func scratchZones(ctx context.Context, in RefreshInput) (*usecases.ZoneService, error) {
	matcher, err := geospatial.NewContainment(in.Matcher)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDatasets, err)
	}
	zones := usecases.NewZoneService(geojson.NewFileSource(in.DataDir), matcher)
	if err := zones.Reload(ctx); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDatasets, err)
	}
	return zones, nil
}

// ValidateDatasets parses every dataset file and fails if none is present.
func (a *RefreshActivities) ValidateDatasets(ctx context.Context, in RefreshInput) (domain.ZoneStatus, error) {
	zones, err := scratchZones(ctx, in)
	if err != nil {
		return domain.ZoneStatus{}, err
	}

	st := zones.Status()
	present := 0
	for _, ds := range st.Datasets {
		if ds.Present {
			present++
		}
		activity.GetLogger(ctx).Info("dataset validated",
			"kind", string(ds.Kind), "features", ds.Features, "skipped", ds.Skipped, "crs", ds.CRS)
	}
	if present == 0 {
		err := fmt.Errorf("%w in %s", domain.ErrNoDatasets, in.DataDir)
		return st, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDatasets, err)
	}
	return st, nil
}

// ProbeLookups resolves the reference points against the new datasets. It
// fails when a seismic dataset is present but no probe falls inside it.
func (a *RefreshActivities) ProbeLookups(ctx context.Context, in RefreshInput) ([]domain.LocationResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRefreshVerify)
	defer span.End()

	zones, err := scratchZones(ctx, in)
	if err != nil {
		return nil, err
	}

	probes := a.Probes
	if len(probes) == 0 {
		probes = usecases.DemoCities
	}

	results := make([]domain.LocationResult, 0, len(probes))
	matched := 0
	for _, c := range probes {
		res, err := zones.Lookup(ctx, c.Location.Lat, c.Location.Lon)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", c.Name, err)
		}
		activity.GetLogger(ctx).Info("probe", "city", c.Name, "zone", res.SeismicZone, "state", res.State)
		if res.SeismicZone != domain.Unknown {
			matched++
		}
		results = append(results, *res)
	}

	if matched == 0 && seismicPresent(zones.Status()) {
		err := fmt.Errorf("no probe matched a seismic zone among %d points", len(probes))
		return results, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDatasets, err)
	}
	return results, nil
}

func seismicPresent(st domain.ZoneStatus) bool {
	for _, ds := range st.Datasets {
		if ds.Kind == domain.DatasetSeismic {
			return ds.Present && ds.Features > 0
		}
	}
	return false
}

// AnnounceReload broadcasts a dataset reload request.
func (a *RefreshActivities) AnnounceReload(ctx context.Context, reason string) error {
	if a.Publisher == nil {
		err := errors.New("no event publisher configured")
		return temporal.NewNonRetryableApplicationError(err.Error(), "NoPublisher", err)
	}
	if err := a.Publisher.PublishDatasetReload(ctx, reason); err != nil {
		return fmt.Errorf("announce reload: %w", err)
	}
	return nil
}
