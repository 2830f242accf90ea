package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that the handler
// left without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics", strings.HasPrefix(path, "/v1/datasets"):
			ttl = "no-cache"

		case path == "/v1/suggestions", path == "/v1/zones/factors":
			ttl = "public, max-age=3600" // static tables

		case strings.HasPrefix(path, "/v1/cities/"):
			ttl = "public, max-age=600"

		case strings.HasPrefix(path, "/v1/location"), path == "/v1/properties", path == "/v1/search":
			ttl = "public, max-age=300" // matches the server-side report cache

		case strings.HasPrefix(path, "/v1/lookups"):
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" && c.Response().StatusCode() < 400 {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
