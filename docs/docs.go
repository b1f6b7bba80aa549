// Package docs registers the OpenAPI document served by the swagger route.
// Maintained by hand; regenerate with `swag init` once the annotations and
// this document drift.
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
        "/auth/signup": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already in use"}
                }
            }
        },
        "/auth/signin": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with email and password",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Rotate the session tokens",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/change-password": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Change the current user's password",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/forgot-password": {
            "post": {
                "tags": ["auth"],
                "summary": "Request a password reset link",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/reset-password": {
            "put": {
                "tags": ["auth"],
                "summary": "Reset a password with a token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid link"}
                }
            }
        },
        "/auth/signout": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Get current user's profile",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/auth/google/callback": {
            "get": {
                "tags": ["auth"],
                "summary": "Complete a Google login",
                "responses": {
                    "302": {"description": "Found"}
                }
            }
        },
        "/friends": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "List friends",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/friends/requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "List incoming friend requests",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "Send a friend request",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Self request or duplicate relation"},
                    "404": {"description": "Target user not found"}
                }
            }
        },
        "/friends/sent-requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "List outgoing friend requests",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/friends/requests/{requestorId}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "Accept or reject a friend request",
                "parameters": [
                    {"type": "integer", "name": "requestorId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Friend request not found"}
                }
            }
        },
        "/friends/{friendId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["friends"],
                "summary": "Remove a friendship",
                "parameters": [
                    {"type": "integer", "name": "friendId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Friendship not found"}
                }
            }
        },
        "/matching": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["matching"],
                "summary": "List the caller's matching sessions",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matching"],
                "summary": "Start a matching session",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Self match or pending session exists"},
                    "404": {"description": "Counterpart not found"}
                }
            }
        },
        "/matching/{id}/approvals": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matching"],
                "summary": "Approve a candidate show",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Session not found or not pending"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "WatchMatch API",
	Description:      "Authentication, friendships and matching sessions for the WatchMatch service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
