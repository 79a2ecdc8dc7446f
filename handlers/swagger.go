package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the connect backend.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>aptconnect-backend - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "aptconnect-backend", "version": "v0.1.0" },
  "paths": {
    "/users": {
      "post": {
        "summary": "Create a user account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"firstname":{"type":"string"},"lastname":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"college":{"type":"string"},"year_of_study":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created" }, "400": { "description": "missing field" }, "409": { "description": "email already registered" } }
      },
      "get": { "summary": "List all users", "responses": { "200": { "description": "user list" } } }
    },
    "/users/{id}": {
      "get": { "summary": "Get a user by id", "responses": { "200": { "description": "user" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Merge fields into a user", "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a user", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/users/login": {
      "post": { "summary": "Verify an identity token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"token":{"type":"string"}}}}}}, "responses": { "200": { "description": "decoded identity" }, "401": { "description": "invalid token" } } }
    },
    "/users/logout": {
      "post": { "summary": "Revoke the presented access token", "responses": { "200": { "description": "logged out" }, "401": { "description": "invalid token" } } }
    },
    "/admin/students": {
      "get": { "summary": "Student roster (admin)", "responses": { "200": { "description": "roster sorted by approval status" }, "401": { "description": "unauthenticated" }, "403": { "description": "not an admin" } } }
    },
    "/admin/students/{id}/approval": {
      "patch": { "summary": "Approve or reject a student (admin)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"approved":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "recorded" }, "404": { "description": "not found" } } }
    },
    "/admin/activities": {
      "get": { "summary": "Recent activity log (admin)", "responses": { "200": { "description": "up to 50 entries, newest first" } } }
    },
    "/meetings": {
      "post": { "summary": "Record a new meeting room", "responses": { "201": { "description": "created" }, "409": { "description": "room exists" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
