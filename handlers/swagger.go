package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API documentation:
// - GET /swagger/index.html -> small HTML page loading the OpenAPI JSON
// - GET /swagger/doc.json   -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Pacific Clothing API Swagger</title>
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

// OpenAPI document for the personnel collections and the auth flow. Every
// collection exposes the same CRUD surface; departments additionally require
// a Bearer token on mutations.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Pacific Clothing API", "version": "1.0.0", "description": "API for managing Pacific Clothing personnel data" },
  "components": {
    "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Department": {
        "type": "object",
        "properties": { "departmentName": {"type":"string"}, "manager": {"type":"string"}, "totalEmployees": {"type":"integer","minimum":0}, "location": {"type":"string"} },
        "required": ["departmentName","manager","totalEmployees","location"]
      },
      "Employee": {
        "type": "object",
        "properties": { "fullName": {"type":"string"}, "phoneNumber": {"type":"string"}, "hireDate": {"type":"string","format":"date"}, "department": {"type":"string"}, "employmentStatus": {"type":"string"}, "role": {"type":"string"}, "address": {"type":"string"} },
        "required": ["fullName","phoneNumber","hireDate","department","employmentStatus","role","address"]
      },
      "PersonalInfo": {
        "type": "object",
        "properties": { "firstName": {"type":"string"}, "lastName": {"type":"string"}, "email": {"type":"string","format":"email"}, "favColor": {"type":"string"}, "birthday": {"type":"string","format":"date"} },
        "required": ["firstName","lastName","email","favColor","birthday"]
      }
    }
  },
  "paths": {
    "/departments": {
      "get": { "summary": "List departments", "responses": { "200": { "description": "all departments" } } },
      "post": { "summary": "Create a department", "security": [{"bearerAuth": []}], "responses": { "201": { "description": "created id" }, "400": { "description": "validation failure" }, "401": { "description": "unauthorized" } } }
    },
    "/departments/{id}": {
      "get": { "summary": "Get one department", "responses": { "200": { "description": "department" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } } },
      "put": { "summary": "Merge fields into a department", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a department", "security": [{"bearerAuth": []}], "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/employees": {
      "get": { "summary": "List employees", "responses": { "200": { "description": "all employees" } } },
      "post": { "summary": "Create an employee", "responses": { "201": { "description": "created id" } } }
    },
    "/employees/{id}": {
      "get": { "summary": "Get one employee", "responses": { "200": { "description": "employee" }, "404": { "description": "not found" } } },
      "put": { "summary": "Merge fields into an employee", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete an employee", "responses": { "204": { "description": "deleted" } } }
    },
    "/personal_info": {
      "get": { "summary": "List personal info records", "responses": { "200": { "description": "all records" } } },
      "post": { "summary": "Create a personal info record", "responses": { "201": { "description": "created id" } } }
    },
    "/personal_info/{id}": {
      "get": { "summary": "Get one personal info record", "responses": { "200": { "description": "record" }, "404": { "description": "not found" } } },
      "put": { "summary": "Replace a personal info record", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a personal info record", "responses": { "204": { "description": "deleted" } } }
    },
    "/employment_details": {
      "get": { "summary": "List employment detail records", "responses": { "200": { "description": "all records" } } },
      "post": { "summary": "Create an employment detail record", "responses": { "201": { "description": "created id" } } }
    },
    "/employment_details/{id}": {
      "get": { "summary": "Get one employment detail record", "responses": { "200": { "description": "record" }, "404": { "description": "not found" } } },
      "put": { "summary": "Replace an employment detail record", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete an employment detail record", "responses": { "204": { "description": "deleted" } } }
    },
    "/auth/login": {
      "post": { "summary": "Login (password grant or authorization code)", "responses": { "200": { "description": "tokens returned" }, "401": { "description": "authentication failed" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
