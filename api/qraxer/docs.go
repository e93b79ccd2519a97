// Package qraxer holds the OpenAPI description served under /swagger/.
//
// Regenerate from the handler annotations with:
//
//	swag init -g internal/qraxer/http/router.go -o api/qraxer --parseDependency
package qraxer

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
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TokenPair"}},
                    "400": {"description": "Missing username or password", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Refresh tokens",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.TokenPair"}},
                    "401": {"description": "Invalid, expired or revoked refresh token", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Log out",
                "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/qraxersdk.LogoutRequest"}}],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/states": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Repair states",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.StateOption"}}}
                }
            }
        },
        "/repair/scan": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Scan a repair QR code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.QRRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ScanResult"}},
                    "400": {"description": "Rejected QR code, with the reason", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "No repair with that code", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "502": {"description": "Odoo error", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/update-state": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Change repair state",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.UpdateStateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.StateChange"}},
                    "400": {"description": "Rejected QR code or unknown state", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "403": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "404": {"description": "No repair with that code", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/generate-qr": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Generate a signed QR payload",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.GenerateQRRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.GeneratedQR"}},
                    "400": {"description": "Empty code or code containing '|'", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/create": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Create a repair order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.NewRepair"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Repair"}},
                    "400": {"description": "Missing partner or bad schedule date", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/recent": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Repairs"],
                "summary": "Recent repairs",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "description": "Maximum number of repairs (default 20, max 100)", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Repair"}}}
                }
            }
        },
        "/repair/checkin": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Check-ins"],
                "summary": "Check in on a repair",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.QRRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.CheckinNotification"}},
                    "400": {"description": "Rejected QR code", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/repair/checkin/pending": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Check-ins"],
                "summary": "Pending check-ins",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.CheckinNotification"}}}
                }
            }
        },
        "/repair/checkin/respond": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Check-ins"],
                "summary": "Answer a check-in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.RespondRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CheckinNotification"}},
                    "404": {"description": "Unknown or evicted notification", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}},
                    "409": {"description": "Already answered", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/inventory/locations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory"],
                "summary": "Stock locations",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Location"}}}
                }
            }
        },
        "/inventory/product": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory"],
                "summary": "Product stock by barcode",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Barcode or internal reference", "name": "barcode", "in": "query", "required": true},
                    {"type": "integer", "description": "Stock location", "name": "locationId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProductStock"}},
                    "404": {"description": "Unknown product", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/inventory/quants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory"],
                "summary": "Quants of a location",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "description": "Stock location", "name": "locationId", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Quant"}}}
                }
            }
        },
        "/inventory/count": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Inventory"],
                "summary": "Count inventory",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/qraxersdk.CountRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CountSummary"}},
                    "400": {"description": "Missing location or items", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/products/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Products"],
                "summary": "Search products",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Maximum number of products (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}}
                }
            }
        },
        "/products/barcode/{barcode}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Products"],
                "summary": "Product by barcode",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Barcode or internal reference", "name": "barcode", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Unknown product", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/clients/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Clients"],
                "summary": "Search clients",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Maximum number of clients (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Client"}}}
                }
            }
        },
        "/clients": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Clients"],
                "summary": "Create a client",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/domain.NewClient"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Client"}},
                    "400": {"description": "Missing name or bad email", "schema": {"$ref": "#/definitions/httpx.ErrorResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/qraxersdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/qraxersdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/qraxersdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httpx.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid_request"},
                "error_description": {"type": "string", "example": "qrContent is required"}
            }
        },
        "qraxersdk.LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "tech@example.com"},
                "password": {"type": "string", "example": "secret"}
            }
        },
        "qraxersdk.RefreshRequest": {
            "type": "object",
            "properties": {"refreshToken": {"type": "string"}}
        },
        "qraxersdk.LogoutRequest": {
            "type": "object",
            "properties": {"refreshToken": {"type": "string"}}
        },
        "qraxersdk.QRRequest": {
            "type": "object",
            "properties": {"qrContent": {"type": "string", "example": "RO/00042|1767225600000|9f86d081884c7d65"}}
        },
        "qraxersdk.UpdateStateRequest": {
            "type": "object",
            "properties": {
                "qrContent": {"type": "string"},
                "newState": {"type": "string", "example": "under_repair"},
                "note": {"type": "string", "example": "Replaced the fan"}
            }
        },
        "qraxersdk.GenerateQRRequest": {
            "type": "object",
            "properties": {"repairCode": {"type": "string", "example": "RO/00042"}}
        },
        "qraxersdk.RespondRequest": {
            "type": "object",
            "properties": {
                "notificationId": {"type": "string"},
                "response": {"type": "string", "example": "On my way"}
            }
        },
        "qraxersdk.CountRequest": {
            "type": "object",
            "properties": {
                "locationId": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/qraxersdk.CountItem"}}
            }
        },
        "qraxersdk.CountItem": {
            "type": "object",
            "properties": {
                "productId": {"type": "integer"},
                "lotId": {"type": "integer"},
                "quantity": {"type": "string", "example": "12.5"}
            }
        },
        "qraxersdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "uptime": {"type": "string", "example": "3h2m1s"},
                "version": {"type": "string", "example": "0.1.0"},
                "checks": {"$ref": "#/definitions/qraxersdk.HealthChecks"}
            }
        },
        "qraxersdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "ok"},
                "sessions": {"type": "string", "example": "ok"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 7},
                "username": {"type": "string", "example": "tech@example.com"},
                "name": {"type": "string", "example": "Jane Tech"}
            }
        },
        "domain.TokenPair": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"},
                "expiresIn": {"type": "integer", "example": 28800}
            }
        },
        "domain.Ref": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}
        },
        "domain.StateOption": {
            "type": "object",
            "properties": {
                "value": {"type": "string", "example": "confirmed"},
                "label": {"type": "string", "example": "Confirmed"}
            }
        },
        "domain.Repair": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 42},
                "name": {"type": "string", "example": "RO/00042"},
                "state": {"type": "string", "example": "confirmed"},
                "stateLabel": {"type": "string", "example": "Confirmed"},
                "partner": {"$ref": "#/definitions/domain.Ref"},
                "product": {"$ref": "#/definitions/domain.Ref"},
                "lot": {"$ref": "#/definitions/domain.Ref"},
                "technician": {"$ref": "#/definitions/domain.Ref"},
                "notes": {"type": "string"},
                "scheduleDate": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.NewRepair": {
            "type": "object",
            "properties": {
                "partnerId": {"type": "integer", "example": 7},
                "productId": {"type": "integer", "example": 12},
                "notes": {"type": "string"},
                "scheduleDate": {"type": "string", "example": "2026-05-01 09:00:00"}
            }
        },
        "domain.StateChange": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "repairId": {"type": "integer"},
                "oldState": {"type": "string"},
                "newState": {"type": "string"}
            }
        },
        "service.ScanResult": {
            "type": "object",
            "properties": {
                "repair": {"$ref": "#/definitions/domain.Repair"},
                "availableStates": {"type": "array", "items": {"$ref": "#/definitions/domain.StateOption"}}
            }
        },
        "service.GeneratedQR": {
            "type": "object",
            "properties": {
                "qrContent": {"type": "string"},
                "expiresInMinutes": {"type": "integer", "example": 60}
            }
        },
        "domain.CheckinNotification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "repairId": {"type": "integer"},
                "repairCode": {"type": "string"},
                "technicianId": {"type": "string"},
                "technicianName": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "response": {"type": "string"},
                "respondedAt": {"type": "string", "format": "date-time"},
                "respondedBy": {"type": "string"}
            }
        },
        "domain.Location": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "completeName": {"type": "string"},
                "barcode": {"type": "string"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "defaultCode": {"type": "string"},
                "barcode": {"type": "string"},
                "listPrice": {"type": "string"},
                "qtyAvailable": {"type": "string"},
                "uom": {"type": "string"}
            }
        },
        "domain.Quant": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "product": {"$ref": "#/definitions/domain.Ref"},
                "location": {"$ref": "#/definitions/domain.Ref"},
                "lot": {"$ref": "#/definitions/domain.Ref"},
                "quantity": {"type": "string"},
                "inventoryQuantity": {"type": "string"}
            }
        },
        "domain.ProductStock": {
            "type": "object",
            "properties": {
                "product": {"$ref": "#/definitions/domain.Product"},
                "quants": {"type": "array", "items": {"$ref": "#/definitions/domain.Quant"}},
                "onHand": {"type": "string"},
                "location": {"$ref": "#/definitions/domain.Ref"}
            }
        },
        "domain.CountItemResult": {
            "type": "object",
            "properties": {
                "productId": {"type": "integer"},
                "lotId": {"type": "integer"},
                "quantId": {"type": "integer"},
                "quantity": {"type": "string"},
                "action": {"type": "string", "enum": ["updated", "created", "failed"]},
                "error": {"type": "string"}
            }
        },
        "domain.CountSummary": {
            "type": "object",
            "properties": {
                "locationId": {"type": "integer"},
                "total": {"type": "integer"},
                "succeeded": {"type": "integer"},
                "failed": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.CountItemResult"}},
                "applied": {"type": "boolean"},
                "applyError": {"type": "string"}
            }
        },
        "domain.Client": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "mobile": {"type": "string"},
                "email": {"type": "string"},
                "vat": {"type": "string"}
            }
        },
        "domain.NewClient": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Acme Repairs"},
                "phone": {"type": "string", "example": "+1 555 0100"},
                "email": {"type": "string", "example": "front@acme.test"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "QRaxer API",
	Description:      "Field-service backend for technicians. Scans signed repair QR codes, moves repair orders through their states and counts inventory, proxying every call to Odoo over JSON-RPC.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
