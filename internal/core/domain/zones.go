package domain

// Unknown is the sentinel used for every string field a lookup could not resolve.
const Unknown = "Unknown"

// Seismic zone labels per IS 1893.
const (
	ZoneII  = "II"
	ZoneIII = "III"
	ZoneIV  = "IV"
	ZoneV   = "V"
)

// SeismicZones lists the enumerated zone labels in ascending hazard order.
var SeismicZones = []string{ZoneII, ZoneIII, ZoneIV, ZoneV}

var zoneFactors = map[string]float64{
	ZoneII:  0.10,
	ZoneIII: 0.16,
	ZoneIV:  0.24,
	ZoneV:   0.36,
}

var riskLevels = map[string]string{
	ZoneII:  "Low",
	ZoneIII: "Moderate",
	ZoneIV:  "High",
	ZoneV:   "Very High",
}

// ZoneFactor returns the IS 1893 zone factor Z for a label.
// Unknown or empty labels report ok=false.
func ZoneFactor(label string) (float64, bool) {
	z, ok := zoneFactors[label]
	return z, ok
}

// RiskLevel describes the seismic hazard of a zone label.
func RiskLevel(label string) string {
	if r, ok := riskLevels[label]; ok {
		return r
	}
	return Unknown
}

// WindClass buckets a basic wind speed (m/s). A nil speed is Unknown.
func WindClass(vb *float64) string {
	if vb == nil {
		return Unknown
	}
	switch v := *vb; {
	case v >= 50:
		return "Very High (Cyclonic)"
	case v >= 47:
		return "High (Coastal)"
	case v >= 44:
		return "Moderate"
	case v >= 39:
		return "Low (Hilly)"
	default:
		return "Very Low"
	}
}

// ZoneFactorEntry is one row of the published factor table.
type ZoneFactorEntry struct {
	Zone      string  `json:"zone"`
	Factor    float64 `json:"factor"`
	RiskLevel string  `json:"risk_level"`
}

// ZoneFactorTable returns the factor table in ascending hazard order.
func ZoneFactorTable() []ZoneFactorEntry {
	out := make([]ZoneFactorEntry, 0, len(SeismicZones))
	for _, z := range SeismicZones {
		out = append(out, ZoneFactorEntry{Zone: z, Factor: zoneFactors[z], RiskLevel: riskLevels[z]})
	}
	return out
}
