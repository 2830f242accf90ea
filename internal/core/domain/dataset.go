package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// DatasetKind identifies one of the three zone datasets.
type DatasetKind string

const (
	DatasetSeismic DatasetKind = "seismic"
	DatasetWind    DatasetKind = "wind"
	DatasetAdmin   DatasetKind = "admin"
)

// DatasetKinds lists every dataset in lookup order.
var DatasetKinds = []DatasetKind{DatasetSeismic, DatasetWind, DatasetAdmin}

// FeatureProps holds the properties a feature may carry. Each field is nil
// when the source property was missing or not of the expected type.
type FeatureProps struct {
	Zone           *string  // "zone", seismic datasets
	BasicWindSpeed *float64 // "Vb" in m/s, wind datasets
	Name           *string  // "NAME", administrative datasets
	State          *string  // "STATE", administrative datasets
}

// ZoneLabel returns the zone label or Unknown.
func (p FeatureProps) ZoneLabel() string { return orUnknown(p.Zone) }

// PlaceName returns NAME or Unknown.
func (p FeatureProps) PlaceName() string { return orUnknown(p.Name) }

// StateName returns STATE or Unknown.
func (p FeatureProps) StateName() string { return orUnknown(p.State) }

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return Unknown
	}
	return *s
}

// PolygonFeature is a single zone polygon. Ring is the exterior ring in
// (lon, lat) order without the closing vertex; holes are not kept.
type PolygonFeature struct {
	Ring  orb.Ring
	Bound orb.Bound
	Props FeatureProps
}

// ZoneDataset is a polygon collection in storage order.
type ZoneDataset struct {
	Kind     DatasetKind
	Source   string
	CRS      string
	Features []PolygonFeature
	Skipped  int // features dropped for unsupported or degenerate geometry
}

// Len returns the feature count, zero for an absent dataset.
func (d *ZoneDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Features)
}

// DatasetStatus summarises one loaded dataset.
type DatasetStatus struct {
	Kind     DatasetKind `json:"kind"`
	Present  bool        `json:"present"`
	Source   string      `json:"source,omitempty"`
	CRS      string      `json:"crs,omitempty"`
	Features int         `json:"features"`
	Skipped  int         `json:"skipped"`
}

// ZoneStatus describes the snapshot currently served.
type ZoneStatus struct {
	LoadedAt time.Time       `json:"loaded_at"`
	Matcher  string          `json:"matcher"`
	Datasets []DatasetStatus `json:"datasets"`
}

// Loaded reports whether a snapshot has been installed.
func (s ZoneStatus) Loaded() bool { return !s.LoadedAt.IsZero() }
