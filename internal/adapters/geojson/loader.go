// Package geojson loads zone datasets from GeoJSON files.
package geojson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/pkg/telemetry"
)

// Dataset file names inside the data directory.
var fileNames = map[domain.DatasetKind]string{
	domain.DatasetSeismic: "seismic_zones.geojson",
	domain.DatasetWind:    "wind_zones.geojson",
	domain.DatasetAdmin:   "admin_boundaries.geojson",
}

// FileName returns the file name a dataset is read from.
func FileName(kind domain.DatasetKind) string {
	return fileNames[kind]
}

// FileSource implements ports.DatasetSource over a directory of GeoJSON files.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource reading from dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Load reads one dataset. A missing file is reported as (nil, nil).
func (s *FileSource) Load(ctx context.Context, kind domain.DatasetKind) (*domain.ZoneDataset, error) {
	name := FileName(kind)
	if name == "" {
		return nil, fmt.Errorf("unknown dataset kind %q", kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanDatasetLoad)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrDataset, string(kind)))

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("dataset file absent", "dataset", kind, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ds, err := Parse(data, kind)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	ds.Source = path

	span.SetAttributes(attribute.Int(telemetry.AttrFeatures, len(ds.Features)))
	if ds.Skipped > 0 {
		slog.Debug("dataset features skipped", "dataset", kind, "skipped", ds.Skipped)
	}
	return ds, nil
}

// envelope is the part of a GeoJSON document decoded before the features.
type envelope struct {
	Type     string            `json:"type"`
	CRS      *crsMember        `json:"crs"`
	Features []json.RawMessage `json:"features"`
}

// crsMember is the pre-RFC 7946 named CRS object.
type crsMember struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// Parse decodes a FeatureCollection (or a single Feature) into a dataset,
// normalizing coordinates to WGS84. Features whose geometry is not a
// Polygon, or is degenerate, or fails to decode are skipped.
func Parse(data []byte, kind domain.DatasetKind) (*domain.ZoneDataset, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var rawFeatures []json.RawMessage
	switch env.Type {
	case "FeatureCollection":
		rawFeatures = env.Features
	case "Feature":
		rawFeatures = []json.RawMessage{data}
	default:
		return nil, fmt.Errorf("decode geojson: unsupported top-level type %q", env.Type)
	}

	crsName := ""
	if env.CRS != nil {
		crsName = env.CRS.Properties.Name
	}
	crs, proj, err := normalizeCRS(crsName)
	if err != nil {
		return nil, err
	}

	ds := &domain.ZoneDataset{Kind: kind, CRS: crs}
	for _, raw := range rawFeatures {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			ds.Skipped++
			continue
		}
		ring, ok := exteriorRing(f.Geometry)
		if !ok {
			ds.Skipped++
			continue
		}
		if proj != nil {
			for i := range ring {
				ring[i] = proj(ring[i])
			}
		}
		ds.Features = append(ds.Features, domain.PolygonFeature{
			Ring:  ring,
			Bound: ring.Bound(),
			Props: featureProps(f.Properties),
		})
	}
	return ds, nil
}

// exteriorRing returns a copy of a Polygon's first ring without its closing
// vertex. Non-polygons and rings with fewer than three distinct vertices are rejected.
func exteriorRing(g orb.Geometry) (orb.Ring, bool) {
	poly, ok := g.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, false
	}
	ring := poly[0]
	if n := len(ring); n > 1 && ring[0].Equal(ring[n-1]) {
		ring = ring[:n-1]
	}

	distinct := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, false
	}
	return append(orb.Ring(nil), ring...), true
}

func featureProps(props geojson.Properties) domain.FeatureProps {
	return domain.FeatureProps{
		Zone:           stringProp(props, "zone"),
		BasicWindSpeed: floatProp(props, "Vb"),
		Name:           stringProp(props, "NAME"),
		State:          stringProp(props, "STATE"),
	}
}

func stringProp(props geojson.Properties, key string) *string {
	s, ok := props[key].(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

// floatProp accepts JSON numbers and numeric strings.
func floatProp(props geojson.Properties, key string) *float64 {
	var f float64
	switch v := props[key].(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
