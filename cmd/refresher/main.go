package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/locationwizard/internal/adapters/nats"
	"github.com/samirrijal/locationwizard/internal/pkg/config"
	"github.com/samirrijal/locationwizard/internal/pkg/logging"
	"github.com/samirrijal/locationwizard/internal/workflows"
)

func main() {
	trigger := flag.Bool("trigger", false, "start one refresh workflow and wait for it instead of running the worker")
	reason := flag.String("reason", "", "reason recorded with a triggered refresh")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load("locationwizard-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	input := workflows.RefreshInput{
		DataDir: cfg.Zones.DataDir,
		Matcher: cfg.Zones.Matcher,
		Reason:  *reason,
	}

	if *trigger {
		runOnce(c, cfg.Temporal.TaskQueue, input)
		return
	}

	acts := &workflows.RefreshActivities{}
	if cfg.NATS.Enabled {
		enc, _ := natsadapter.ParseEncoding(cfg.NATS.Encoding)
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, enc)
		if err != nil {
			slog.Warn("nats unavailable, reloads will not be announced", "error", err)
		} else {
			defer pub.Close()
			acts.Publisher = pub
		}
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.DatasetRefreshWorkflow)
	w.RegisterActivity(acts)

	slog.Info("refresher worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func runOnce(c client.Client, taskQueue string, input workflows.RefreshInput) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("dataset-refresh-%d", time.Now().Unix()),
		TaskQueue: taskQueue,
	}, workflows.DatasetRefreshWorkflow, input)
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("refresh started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var res workflows.RefreshResult
	if err := run.Get(ctx, &res); err != nil {
		log.Fatalf("refresh failed: %v", err)
	}
	for _, ds := range res.Status.Datasets {
		fmt.Printf("%-8s present=%t features=%d skipped=%d\n", ds.Kind, ds.Present, ds.Features, ds.Skipped)
	}
	fmt.Printf("probes=%d announced=%t\n", len(res.Probes), res.Announced)
}
