package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Piggybank Ledger API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Piggybank Ledger API",
    "version": "1.0.0"
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic"
      }
    }
  },
  "paths": {
    "/transfers": {
      "post": {
        "summary": "Transfer funds between two accounts",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["fromAccountId", "toAccountId", "amount", "sourceCurrency"],
                "properties": {
                  "fromAccountId": {"type": "string"},
                  "toAccountId": {"type": "string"},
                  "amount": {"type": "string", "example": "100.00"},
                  "sourceCurrency": {"type": "string", "example": "USD"},
                  "description": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Transfer committed"},
          "400": {"description": "Validation failed"},
          "404": {"description": "Account not found"},
          "409": {"description": "Concurrent modification conflict"},
          "422": {"description": "Insufficient balance"}
        }
      }
    },
    "/accounts": {
      "get": {
        "summary": "List accounts",
        "security": [{"BasicAuth": []}],
        "responses": {
          "200": {"description": "Accounts fetched"}
        }
      }
    },
    "/accounts/{id}": {
      "get": {
        "summary": "Get account by id",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Account fetched"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/accounts/{id}/transfers": {
      "get": {
        "summary": "List transfers touching an account, newest first",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "limit", "in": "query", "schema": {"type": "integer", "default": 10}}
        ],
        "responses": {
          "200": {"description": "Transfers fetched"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/accounts/rename": {
      "post": {
        "summary": "Change an account display name",
        "security": [{"BasicAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["accountId", "newName"],
                "properties": {
                  "accountId": {"type": "string"},
                  "newName": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Rename committed"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/rates": {
      "get": {
        "summary": "List current exchange rates",
        "security": [{"BasicAuth": []}],
        "responses": {
          "200": {"description": "Rates fetched"}
        }
      }
    },
    "/rates/{from}/{to}": {
      "get": {
        "summary": "Get the rate for a currency pair",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {"name": "from", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "to", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Rate fetched"},
          "404": {"description": "Rate not found"}
        }
      }
    }
  }
}`
