package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/locationwizard/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("locationwizard-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Zones.DataDir != "data" {
		t.Errorf("expected data dir 'data', got %q", cfg.Zones.DataDir)
	}
	if cfg.Zones.Matcher != "raycast" {
		t.Errorf("expected raycast matcher, got %q", cfg.Zones.Matcher)
	}
	if cfg.Geocoder.SearchTimeout != 10*time.Second || cfg.Geocoder.ReverseTimeout != 5*time.Second {
		t.Errorf("unexpected geocoder timeouts: %v / %v", cfg.Geocoder.SearchTimeout, cfg.Geocoder.ReverseTimeout)
	}
	if cfg.Telemetry.ServiceName != "locationwizard-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOCATIONWIZARD_ZONES_DATA_DIR", "/srv/zones")
	t.Setenv("LOCATIONWIZARD_ZONES_MATCHER", "planar")
	t.Setenv("LOCATIONWIZARD_ZONES_RELOAD_INTERVAL", "15m")
	t.Setenv("LOCATIONWIZARD_SERVER_PORT", "9090")

	cfg, err := config.Load("locationwizard-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Zones.DataDir != "/srv/zones" {
		t.Errorf("expected /srv/zones, got %q", cfg.Zones.DataDir)
	}
	if cfg.Zones.Matcher != "planar" {
		t.Errorf("expected planar, got %q", cfg.Zones.Matcher)
	}
	if cfg.Zones.ReloadInterval != 15*time.Minute {
		t.Errorf("expected 15m, got %v", cfg.Zones.ReloadInterval)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Database: config.DatabaseConfig{Enabled: true},
		NATS:     config.NATSConfig{Encoding: "avro"},
		Zones:    config.ZonesConfig{Matcher: "quadtree", ReloadInterval: 10 * time.Second},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"server.port",
		"database.host",
		"nats.encoding",
		"zones.data_dir",
		"zones.matcher",
		"zones.reload_interval",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got:\n%s", want, err)
		}
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Zones:  config.ZonesConfig{DataDir: "data"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
