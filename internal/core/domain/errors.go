package domain

import "errors"

var (
	// ErrInvalidCoordinate is returned for lat/lon values that are not finite or out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrEmptyQuery is returned when a search query is blank.
	ErrEmptyQuery = errors.New("search query must not be empty")

	// ErrInvalidRadius is returned for nearby-city radii outside (0, MaxNearbyRadiusKm].
	ErrInvalidRadius = errors.New("invalid radius")

	// ErrUnsupportedCRS is returned when a dataset declares a CRS that cannot be normalized.
	ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

	// ErrNoDatasets is returned when a reload finds none of the dataset files.
	ErrNoDatasets = errors.New("no zone datasets found")
)
