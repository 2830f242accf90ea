package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
)

// LocationHandler returns the enriched zone report for a coordinate.
func LocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q coordQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}

		report, err := deps.Locations.Describe(c.UserContext(), *q.Lat, *q.Lon, usecases.DescribeOptions{Reverse: q.Reverse})
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(report)
	}
}

// LocationReportHandler returns the plain-text report for a coordinate.
func LocationReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q coordQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}

		text, err := deps.Locations.Report(c.UserContext(), *q.Lat, *q.Lon, usecases.DescribeOptions{Reverse: q.Reverse})
		if err != nil {
			return errFromService(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(text)
	}
}

// SearchHandler resolves a free-text query or "lat,lon" pair.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q searchQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Search.Search(c.UserContext(), q.Q)
		if err != nil {
			return errFromService(c, err)
		}
		if res == nil {
			return errNotFound(c, "no location found for query")
		}
		return c.JSON(res)
	}
}

// SuggestionsHandler returns city name completions.
func SuggestionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q suggestionQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Search.Suggestions(q.Q))
	}
}

// NearbyCitiesHandler lists major cities within radius_km of a point.
func NearbyCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q nearbyQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}

		cities, err := deps.Cities.Nearby(*q.Lat, *q.Lon, q.RadiusKm)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(cities)
	}
}

// ZoneFactorsHandler returns the seismic zone factor table.
func ZoneFactorsHandler() fiber.Handler {
	table := domain.ZoneFactorTable()
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(table)
	}
}

// DatasetsHandler describes the zone datasets currently served.
func DatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache")
		return c.JSON(deps.Zones.Status())
	}
}

// ReloadDatasetsHandler reloads the datasets in this process, or with
// ?broadcast=true asks every instance to reload through the event bus.
func ReloadDatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if c.QueryBool("broadcast", false) {
			if deps.Publisher == nil {
				return errUnavailable(c, "event bus not configured")
			}
			if err := deps.Publisher.PublishDatasetReload(ctx, "api request"); err != nil {
				LoggerFromCtx(ctx).Error("broadcast reload failed", "error", err)
				return errUnavailable(c, "could not broadcast reload")
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "reload requested"})
		}

		if err := deps.Locations.ReloadZones(ctx, "api request"); err != nil {
			return errFromService(c, err)
		}
		return c.JSON(deps.Zones.Status())
	}
}

// LookupsHandler returns recorded lookups, newest first.
func LookupsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q pageQuery
		if err := bindQuery(c, &q); err != nil {
			return errBadRequest(c, err.Error())
		}
		if q.Limit == 0 {
			q.Limit = 20
		}

		records, total, err := deps.History.Recent(c.UserContext(), q.Limit, q.Offset)
		if err != nil {
			return errFromService(c, err)
		}
		if records == nil {
			records = []domain.LookupRecord{}
		}

		pg := Pagination{Offset: q.Offset, Limit: q.Limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "no-store")
		return c.JSON(PaginatedResponse{Data: records, Pagination: pg})
	}
}

// LookupStatsHandler returns lookup counts per seismic zone.
func LookupStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := deps.History.ZoneStats(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		if counts == nil {
			counts = []domain.ZoneCount{}
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(counts)
	}
}
