// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/organizations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "List visible organizations",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "Create an organization",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Slug already taken"}
                }
            }
        },
        "/v1/organizations/{organization_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "Get one organization",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "Update an organization",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not permitted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/v1/organizations/{organization_id}/account": {
            "get": {
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "Get the linked billing account",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not permitted"},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "Link a billing account",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not permitted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/v1/organizations/{organization_id}/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["organizations"],
                "summary": "List the membership roster",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/v1/events": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Ingest a usage event",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid event"},
                    "404": {"description": "Customer not found"}
                }
            }
        },
        "/v1/customers/{customer_id}/meters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "List derived customer meter balances",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Customer not found"}
                }
            }
        },
        "/api/authz/v1/check": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["authorization"],
                "summary": "Evaluate a dry-run access decision",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid request"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Meridian API",
	Description:      "Organization, authorization and metered billing API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
