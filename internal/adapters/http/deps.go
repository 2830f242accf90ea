package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/locationwizard/internal/adapters/postgres"
	"github.com/samirrijal/locationwizard/internal/adapters/valkey"
	"github.com/samirrijal/locationwizard/internal/core/ports"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Everything
// below Cities is optional.
type Dependencies struct {
	Locations *usecases.LocationService
	Zones     *usecases.ZoneService
	Search    *usecases.SearchService
	Cities    *usecases.CityService
	History   *usecases.HistoryService
	Publisher ports.EventPublisher
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
