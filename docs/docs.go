// Package docs registers the Swagger document served under /swagger/.
// Keep it in step with the swag annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/users/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UsersEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create user",
                "parameters": [
                    {"description": "User payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.UserEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/me/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["me"],
                "summary": "Get the caller's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["me"],
                "summary": "Update the caller's profile",
                "parameters": [
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateMeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user by id",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Only the fields present in the body are changed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/token": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Issue an API token for a user",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TokenEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorDetails": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/errors.ErrorDetails"}
            }
        },
        "handler.EmployeeRequest": {
            "type": "object",
            "properties": {
                "available_holidays": {"type": "integer", "minimum": 0},
                "hire_date": {"type": "string"},
                "role": {"type": "string", "maxLength": 255},
                "salary": {"type": "string", "example": "1500.250"}
            }
        },
        "handler.EmployeeResponse": {
            "type": "object",
            "properties": {
                "available_holidays": {"type": "integer"},
                "hire_date": {"type": "string"},
                "role": {"type": "string"},
                "salary": {"type": "string", "example": "1500.250"}
            }
        },
        "handler.CreateUserRequest": {
            "type": "object",
            "required": ["email", "first_name", "last_name", "password", "username"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "employee": {"$ref": "#/definitions/handler.EmployeeRequest"},
                "first_name": {"type": "string", "maxLength": 255},
                "is_admin": {"type": "boolean"},
                "is_employee": {"type": "boolean"},
                "last_name": {"type": "string", "maxLength": 255},
                "password": {"type": "string"},
                "username": {"type": "string", "maxLength": 255}
            }
        },
        "handler.UpdateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "employee": {"$ref": "#/definitions/handler.EmployeeRequest"},
                "first_name": {"type": "string", "maxLength": 255},
                "is_admin": {"type": "boolean"},
                "is_employee": {"type": "boolean"},
                "last_name": {"type": "string", "maxLength": 255},
                "password": {"type": "string", "minLength": 1},
                "username": {"type": "string", "maxLength": 255, "minLength": 1}
            }
        },
        "handler.UpdateMeRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "first_name": {"type": "string", "maxLength": 255},
                "last_name": {"type": "string", "maxLength": 255},
                "password": {"type": "string", "minLength": 1},
                "username": {"type": "string", "maxLength": 255, "minLength": 1}
            }
        },
        "handler.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "employee": {"$ref": "#/definitions/handler.EmployeeResponse"},
                "first_name": {"type": "string"},
                "is_admin": {"type": "boolean"},
                "is_employee": {"type": "boolean"},
                "last_login": {"type": "string"},
                "last_name": {"type": "string"},
                "registered_on": {"type": "string"},
                "user_id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.UserEnvelope": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/handler.UserResponse"}
            }
        },
        "handler.UsersEnvelope": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/handler.UserResponse"}}
            }
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {
                "access-token": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "handler.TokenEnvelope": {
            "type": "object",
            "properties": {
                "token": {"$ref": "#/definitions/handler.TokenResponse"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Restaurant Service API",
	Description:      "Staff accounts, API tokens and profiles for the restaurant backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
