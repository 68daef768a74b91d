// Package swagger registers the OpenAPI description served at /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Bearer access token"
        }
    },
    "tags": [
        {"name": "auth", "description": "Login, token refresh and logout"},
        {"name": "users", "description": "User and role profile management"},
        {"name": "subjects", "description": "Academic subjects"},
        {"name": "classes", "description": "Classes and rosters"},
        {"name": "sessions", "description": "Session lifecycle and validation"},
        {"name": "attendance", "description": "Per-student attendance marks"},
        {"name": "enrollments", "description": "Student-class enrollments"},
        {"name": "guardians", "description": "Guardian-student links"}
    ],
    "paths": {}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "School API",
	Description:      "REST backend for school management: users, classes, sessions, attendance, enrollments and guardians.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
