package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// RefreshInput is the input for the dataset refresh workflow.
type RefreshInput struct {
	DataDir string
	Matcher string
	Reason  string
}

// RefreshResult summarises a completed refresh.
type RefreshResult struct {
	Status    domain.ZoneStatus
	Probes    []domain.LocationResult
	Announced bool
}

// DatasetRefreshWorkflow validates the dataset files in DataDir, probes a
// handful of reference cities against them and, if both pass, asks every
// API instance to reload. Nothing is announced when validation fails.
func DatasetRefreshWorkflow(ctx workflow.Context, input RefreshInput) (*RefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting dataset refresh", "dataDir", input.DataDir, "reason", input.Reason)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidDatasets},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	result := &RefreshResult{}

	// Step 1: parse every dataset file
	if err := workflow.ExecuteActivity(ctx, "ValidateDatasets", input).Get(ctx, &result.Status); err != nil {
		return nil, err
	}

	// Step 2: sanity-check lookups against the new files
	if err := workflow.ExecuteActivity(ctx, "ProbeLookups", input).Get(ctx, &result.Probes); err != nil {
		return nil, err
	}

	// Step 3: tell the API instances
	reason := input.Reason
	if reason == "" {
		reason = "scheduled refresh"
	}
	if err := workflow.ExecuteActivity(ctx, "AnnounceReload", reason).Get(ctx, nil); err != nil {
		logger.Warn("reload announcement failed", "error", err)
		return result, err
	}
	result.Announced = true

	logger.Info("Dataset refresh announced", "probes", len(result.Probes))
	return result, nil
}
