// Package docs holds the OpenAPI description served at /swagger. It is
// maintained by hand alongside the handler annotations in internal/handler.
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
        "/admin/roles": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Add a role to any account",
                "parameters": [
                    {
                        "description": "Target account and role",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.AssignRoleRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GrantRoleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "Registration data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/roles": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Add a role to an account using that account's credentials",
                "parameters": [
                    {
                        "description": "Account credentials and role",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.GrantRoleRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GrantRoleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue an access token",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.TokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["secured"],
                "summary": "Claims of the current token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ClaimsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/secured": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["secured"],
                "summary": "Sample protected resource",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.AssignRoleRequest": {
            "type": "object",
            "required": ["email", "role"],
            "properties": {
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.ClaimsResponse": {
            "type": "object",
            "properties": {
                "custom": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "email": {"type": "string"},
                "expires_at": {"type": "string"},
                "issued_at": {"type": "string"},
                "jti": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "sub": {"type": "string"},
                "uid": {"type": "string"}
            }
        },
        "handler.GrantRoleRequest": {
            "type": "object",
            "required": ["email", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.GrantRoleResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "first_name": {"type": "string", "maxLength": 255},
                "last_name": {"type": "string", "maxLength": 255},
                "password": {"type": "string", "maxLength": 72, "minLength": 6},
                "username": {"type": "string", "maxLength": 255}
            }
        },
        "handler.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.UserResponse"}
            }
        },
        "handler.TokenRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "expires_at": {"type": "string"},
                "is_authenticated": {"type": "boolean"},
                "message": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "token": {"type": "string"},
                "token_id": {"type": "string"},
                "user_id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.UserResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "id": {"type": "string"},
                "last_name": {"type": "string"},
                "username": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Token Auth API",
	Description:      "Account registration, bearer token issuance and role management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
