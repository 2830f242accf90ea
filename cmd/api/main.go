package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/locationwizard/internal/adapters/geojson"
	"github.com/samirrijal/locationwizard/internal/adapters/http"
	natsadapter "github.com/samirrijal/locationwizard/internal/adapters/nats"
	"github.com/samirrijal/locationwizard/internal/adapters/nominatim"
	"github.com/samirrijal/locationwizard/internal/adapters/postgres"
	"github.com/samirrijal/locationwizard/internal/adapters/valkey"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
	"github.com/samirrijal/locationwizard/internal/pkg/config"
	"github.com/samirrijal/locationwizard/internal/pkg/geospatial"
	"github.com/samirrijal/locationwizard/internal/pkg/logging"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
	"github.com/samirrijal/locationwizard/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load("locationwizard-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Database (lookup history)
	var lookups ports.LookupRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			slog.Warn("database unavailable, lookup history disabled", "error", err)
		} else {
			defer db.Close()
			deps.DB = db
			lookups = postgres.NewLookupRepo(db)
		}
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			deps.Cache = c
			cache = c
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var subscriber *natsadapter.Subscriber
	if cfg.NATS.Enabled {
		enc, _ := natsadapter.ParseEncoding(cfg.NATS.Encoding) // checked by config.Validate
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, enc)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			deps.Publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL, "locationwizard-ws")
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}

		subscriber, err = natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable, broadcast reloads ignored", "error", err)
		} else {
			defer subscriber.Close()
		}
	}

	// Geocoder
	var geocoder ports.Geocoder
	if cfg.Geocoder.Enabled {
		geocoder = nominatim.New(nominatim.Config{
			BaseURL:        cfg.Geocoder.BaseURL,
			UserAgent:      cfg.Geocoder.UserAgent,
			SearchTimeout:  cfg.Geocoder.SearchTimeout,
			ReverseTimeout: cfg.Geocoder.ReverseTimeout,
		})
	}

	// Zones
	matcher, err := geospatial.NewContainment(cfg.Zones.Matcher)
	if err != nil {
		log.Fatalf("zone matcher: %v", err)
	}
	zones := usecases.NewZoneService(geojson.NewFileSource(cfg.Zones.DataDir), matcher)
	if err := zones.Reload(ctx); err != nil {
		// Lookups retry the load on first use.
		slog.Error("initial dataset load failed", "dir", cfg.Zones.DataDir, "error", err)
	}

	// Use cases
	locations := usecases.NewLocationService(zones, geocoder, cache, lookups, publisher)
	deps.Locations = locations
	deps.Zones = zones
	deps.Search = usecases.NewSearchService(geocoder, cache)
	deps.Cities = usecases.NewCityService()
	deps.History = usecases.NewHistoryService(lookups)

	// Dataset reloads: periodic and broadcast
	sched := scheduler.New(cfg.Zones.ReloadInterval, locations)
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	if subscriber != nil {
		if err := subscriber.SubscribeDatasetReload(ctx, locations.ReloadZones); err != nil {
			slog.Warn("subscribe to dataset reloads failed", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "LocationWizard API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "data_dir", cfg.Zones.DataDir, "matcher", matcher.Name())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
