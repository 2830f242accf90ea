package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/samirrijal/locationwizard/internal/adapters/geojson"
	"github.com/samirrijal/locationwizard/internal/adapters/nominatim"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
	"github.com/samirrijal/locationwizard/internal/pkg/config"
	"github.com/samirrijal/locationwizard/internal/pkg/geospatial"
	"github.com/samirrijal/locationwizard/internal/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("locationwizard-demo")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dataDir := flag.String("data", cfg.Zones.DataDir, "directory holding the zone GeoJSON files")
	interactive := flag.Bool("interactive", false, "read lat,lon lines from stdin after the demo")
	reverse := flag.Bool("reverse", false, "add reverse-geocoded place names")
	flag.Parse()

	logging.Setup("warn", "text")

	matcher, err := geospatial.NewContainment(cfg.Zones.Matcher)
	if err != nil {
		log.Fatalf("zone matcher: %v", err)
	}
	zones := usecases.NewZoneService(geojson.NewFileSource(*dataDir), matcher)

	var geocoder ports.Geocoder
	if *reverse {
		geocoder = nominatim.New(nominatim.Config{
			BaseURL:        cfg.Geocoder.BaseURL,
			UserAgent:      cfg.Geocoder.UserAgent,
			ReverseTimeout: cfg.Geocoder.ReverseTimeout,
		})
	}
	svc := usecases.NewLocationService(zones, geocoder, nil, nil, nil)
	opts := usecases.DescribeOptions{Reverse: *reverse}

	ctx := context.Background()
	if err := zones.Reload(ctx); err != nil {
		log.Fatalf("load datasets from %s: %v", *dataDir, err)
	}

	fmt.Println("Location Wizard Demo")
	fmt.Println(strings.Repeat("=", 50))
	for _, c := range usecases.DemoCities {
		fmt.Printf("\n%s\n", c.Name)
		report, err := svc.Report(ctx, c.Location.Lat, c.Location.Lon, opts)
		if err != nil {
			fmt.Printf("  error: %v\n", err)
			continue
		}
		fmt.Print(report)
	}
	fmt.Println(strings.Repeat("=", 50))

	if *interactive {
		repl(ctx, svc, opts, os.Stdin, os.Stdout)
	}
}

// repl answers "lat,lon" lines until quit, exit or EOF.
func repl(ctx context.Context, svc *usecases.LocationService, opts usecases.DescribeOptions, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Enter lat,lon (e.g. 28.6139,77.2090), or quit to exit")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return
		}

		lat, lon, err := parseLatLon(line)
		if err != nil {
			fmt.Fprintf(out, "invalid input: %v\n", err)
			continue
		}
		report, err := svc.Report(ctx, lat, lon, opts)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprint(out, report)
	}
}

func parseLatLon(s string) (float64, float64, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected lat,lon")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	return lat, lon, nil
}
