package telemetry

// Span names used for instrumentation.
const (
	SpanZoneLookup    = "zones.lookup"
	SpanZoneReload    = "zones.reload"
	SpanDescribe      = "location.describe"
	SpanSearch        = "search.query"
	SpanReverse       = "search.reverse"
	SpanDatasetLoad   = "datasets.load"
	SpanRefreshVerify = "datasets.refresh.verify"
)

// Span attribute keys.
const (
	AttrLat         = "geo.lat"
	AttrLon         = "geo.lon"
	AttrSeismicZone = "zones.seismic_zone"
	AttrDataset     = "zones.dataset"
	AttrFeatures    = "zones.features"
	AttrQuery       = "search.query"
)
