package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the storefront API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>storefront API - Swagger</title>
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

// OpenAPI document for the public storefront endpoints. Admin routes need a
// token whose user has role 1.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "storefront", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "jwt": { "type": "apiKey", "in": "header", "name": "Authorization" } }
  },
  "paths": {
    "/api/v1/auth/register": {
      "post": {
        "summary": "Register a customer account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"phone":{"type":"string"},"address":{"type":"string"},"answer":{"type":"string"}}}}}},
        "responses": { "201": { "description": "user created" }, "400": { "description": "missing field" }, "409": { "description": "already registered" } }
      }
    },
    "/api/v1/auth/login": {
      "post": {
        "summary": "Login with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "user and token returned" }, "401": { "description": "invalid password" }, "404": { "description": "email not registered" } }
      }
    },
    "/api/v1/auth/forgot-password": {
      "post": { "summary": "Reset password with the security answer", "responses": { "200": { "description": "password reset" }, "404": { "description": "wrong email or answer" } } }
    },
    "/api/v1/auth/logout": {
      "post": { "summary": "Revoke the presented token", "security": [{"jwt": []}], "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/auth/profile": {
      "put": { "summary": "Update the signed-in user's profile", "security": [{"jwt": []}], "responses": { "200": { "description": "profile updated" } } }
    },
    "/api/v1/auth/orders": {
      "get": { "summary": "Orders of the signed-in user", "security": [{"jwt": []}], "responses": { "200": { "description": "orders" } } }
    },
    "/api/v1/auth/all-orders": {
      "get": { "summary": "All orders (admin)", "security": [{"jwt": []}], "responses": { "200": { "description": "orders" } } }
    },
    "/api/v1/auth/all-users": {
      "get": { "summary": "All users (admin)", "security": [{"jwt": []}], "responses": { "200": { "description": "users" } } }
    },
    "/api/v1/order-status/{orderId}": {
      "put": { "summary": "Change an order status (admin)", "security": [{"jwt": []}], "responses": { "200": { "description": "updated order" }, "404": { "description": "unknown order" } } }
    },
    "/api/v1/category/get-category": {
      "get": { "summary": "List categories", "responses": { "200": { "description": "categories" } } }
    },
    "/api/v1/category/create-category": {
      "post": { "summary": "Create a category (admin)", "security": [{"jwt": []}], "responses": { "201": { "description": "created" }, "409": { "description": "exists" } } }
    },
    "/api/v1/product/get-product": {
      "get": { "summary": "Newest products", "responses": { "200": { "description": "products" } } }
    },
    "/api/v1/product/product-filters": {
      "post": { "summary": "Filter by categories and price range", "responses": { "200": { "description": "products" } } }
    },
    "/api/v1/product/search/{keyword}": {
      "get": { "summary": "Search products by name or description", "responses": { "200": { "description": "products" } } }
    },
    "/api/v1/product/braintree/token": {
      "get": { "summary": "Payment client token", "responses": { "200": { "description": "client token" } } }
    },
    "/api/v1/product/braintree/payment": {
      "post": { "summary": "Charge the cart and place an order", "security": [{"jwt": []}], "responses": { "200": { "description": "order placed" }, "402": { "description": "payment declined" } } }
    }
  }
}`
