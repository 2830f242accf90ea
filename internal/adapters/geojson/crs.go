package geojson

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// CRSWGS84 is the reference system every dataset is normalized to.
const CRSWGS84 = "EPSG:4326"

const crsWebMercator = "EPSG:3857"

var wgs84Aliases = map[string]bool{
	"epsg:4326":                     true,
	"urn:ogc:def:crs:epsg::4326":    true,
	"urn:ogc:def:crs:ogc:1.3:crs84": true,
	"urn:ogc:def:crs:ogc::crs84":    true,
	"crs84":                         true,
	"wgs84":                         true,
}

var webMercatorAliases = map[string]bool{
	"epsg:3857":                  true,
	"urn:ogc:def:crs:epsg::3857": true,
	"epsg:900913":                true,
	"epsg:102100":                true,
}

// normalizeCRS maps a declared CRS name to the source CRS label and the
// projection converting it to WGS84. A nil projection means no conversion.
func normalizeCRS(name string) (string, orb.Projection, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "" || wgs84Aliases[key]:
		return CRSWGS84, nil, nil
	case webMercatorAliases[key]:
		return crsWebMercator, project.Mercator.ToWGS84, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCRS, name)
	}
}
