package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/locationwizard/internal/core/domain"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationReport",
		Fields: graphql.Fields{
			"lat":              &graphql.Field{Type: graphql.Float},
			"lon":              &graphql.Field{Type: graphql.Float},
			"seismic_zone":     &graphql.Field{Type: graphql.String},
			"zone_factor":      &graphql.Field{Type: graphql.Float},
			"basic_wind_speed": &graphql.Field{Type: graphql.Float},
			"place_name":       &graphql.Field{Type: graphql.String},
			"state":            &graphql.Field{Type: graphql.String},
			"risk_level":       &graphql.Field{Type: graphql.String},
			"wind_class":       &graphql.Field{Type: graphql.String},
			"display_name":     &graphql.Field{Type: graphql.String},
			"looked_up_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"lat":          &graphql.Field{Type: graphql.Float},
			"lon":          &graphql.Field{Type: graphql.Float},
			"display_name": &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
		},
	})

	nearbyCityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearbyCity",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"lat":         &graphql.Field{Type: graphql.Float},
			"lon":         &graphql.Field{Type: graphql.Float},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneFactorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoneFactor",
		Fields: graphql.Fields{
			"zone":       &graphql.Field{Type: graphql.String},
			"factor":     &graphql.Field{Type: graphql.Float},
			"risk_level": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"location": &graphql.Field{
				Type:        locationType,
				Description: "Seismic zone, wind speed and region for a coordinate",
				Args: graphql.FieldConfigArgument{
					"lat":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"reverse": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					reverse, _ := p.Args["reverse"].(bool)
					report, err := deps.Locations.Describe(p.Context, lat, lon, usecases.DescribeOptions{Reverse: reverse})
					if err != nil {
						return nil, err
					}
					return reportFields(report), nil
				},
			},
			"search": &graphql.Field{
				Type:        searchResultType,
				Description: "Resolve a place name or \"lat,lon\" pair",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Search.Search(p.Context, p.Args["query"].(string))
					if err != nil || res == nil {
						return nil, err
					}
					return res, nil
				},
			},
			"suggestions": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "City name completions",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["query"].(string)
					return deps.Search.Suggestions(q), nil
				},
			},
			"nearbyCities": &graphql.Field{
				Type:        graphql.NewList(nearbyCityType),
				Description: "Major cities within radiusKm of a point",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radiusKm": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: usecases.DefaultNearbyRadiusKm},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius, _ := p.Args["radiusKm"].(float64)
					return deps.Cities.Nearby(lat, lon, radius)
				},
			},
			"zoneFactors": &graphql.Field{
				Type:        graphql.NewList(zoneFactorType),
				Description: "Seismic zone factor table",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return domain.ZoneFactorTable(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// reportFields flattens a report for the default field resolver, which
// does not descend into embedded structs.
func reportFields(r *domain.LocationReport) map[string]interface{} {
	return map[string]interface{}{
		"lat":              r.Lat,
		"lon":              r.Lon,
		"seismic_zone":     r.SeismicZone,
		"zone_factor":      optFloat(r.ZoneFactor),
		"basic_wind_speed": optFloat(r.BasicWindSpeed),
		"place_name":       r.PlaceName,
		"state":            r.State,
		"risk_level":       r.RiskLevel,
		"wind_class":       r.WindClass,
		"display_name":     r.DisplayName,
		"looked_up_at":     r.LookedUpAt,
	}
}

func optFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
