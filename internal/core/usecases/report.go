package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/locationwizard/internal/core/domain"
)

// FormatReport renders a location report as the plain-text summary used by
// the export endpoint and the CLI.
func FormatReport(r *domain.LocationReport) string {
	var b strings.Builder

	b.WriteString("Location Report\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Coordinates: %.6f, %.6f\n", r.Lat, r.Lon)
	fmt.Fprintf(&b, "Place: %s\n", r.PlaceName)
	fmt.Fprintf(&b, "State: %s\n", r.State)

	factor := "n/a"
	if r.ZoneFactor != nil {
		factor = fmt.Sprintf("%.2f", *r.ZoneFactor)
	}
	fmt.Fprintf(&b, "Seismic Zone: %s (Z = %s, risk: %s)\n", r.SeismicZone, factor, r.RiskLevel)

	if r.BasicWindSpeed != nil {
		fmt.Fprintf(&b, "Basic Wind Speed: %.1f m/s (%s)\n", *r.BasicWindSpeed, r.WindClass)
	} else {
		b.WriteString("Basic Wind Speed: n/a\n")
	}

	if !r.LookedUpAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", r.LookedUpAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
