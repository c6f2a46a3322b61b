package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/epiwatch/epiwatch/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OutbreakReport",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"lat":         &graphql.Field{Type: graphql.Float},
			"lng":         &graphql.Field{Type: graphql.Float},
			"cases":       &graphql.Field{Type: graphql.Int},
			"disease":     &graphql.Field{Type: graphql.String},
			"severity":    &graphql.Field{Type: graphql.Int},
			"reported_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RegionalAlert",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"region":       &graphql.Field{Type: graphql.String},
			"message":      &graphql.Field{Type: graphql.String},
			"risk_level":   &graphql.Field{Type: graphql.String},
			"generated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"report": &graphql.Field{
				Type:        reportType,
				Description: "Get an outbreak report by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Reports.GetByID(p.Context, id)
				},
			},
			"reportsInBounds": &graphql.Field{
				Type:        graphql.NewList(reportType),
				Description: "List outbreak reports inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"north":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"south":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"east":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"west":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"disease": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					bounds := domain.Bounds{
						North: p.Args["north"].(float64),
						South: p.Args["south"].(float64),
						East:  p.Args["east"].(float64),
						West:  p.Args["west"].(float64),
					}
					disease := p.Args["disease"].(string)
					limit := p.Args["limit"].(int)
					reports, _, err := deps.Reports.ListInBounds(p.Context, bounds, disease, limit, 0)
					return reports, err
				},
			},
			"reportsNearby": &graphql.Field{
				Type:        graphql.NewList(reportType),
				Description: "Find outbreak reports near a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Reports.FindNearby(p.Context, lat, lng, radius, limit)
				},
			},
			"recentAlerts": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "Most recently generated regional alerts",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					return deps.Alerts.ListRecent(p.Context, limit)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
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
