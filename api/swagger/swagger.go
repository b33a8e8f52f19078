package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TKT Widget API",
        "description": "Shared storage bridge and class-schedule summaries for the TKT home-screen widget",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Widget", "description": "Home-screen widget summaries"},
        {"name": "Storage", "description": "Per-user shared key/value storage"},
        {"name": "Courses", "description": "Host app timetable"}
    ],
    "paths": {
        "/widget/summary": {
            "get": {
                "tags": ["Widget"],
                "summary": "Build the widget display summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tier", "in": "query", "type": "string", "enum": ["small", "medium", "large", "extra_large"]},
                    {"name": "weekday", "in": "query", "type": "integer", "minimum": 1, "maximum": 7},
                    {"name": "weekday_origin", "in": "query", "type": "string", "enum": ["sunday", "monday"]},
                    {"name": "lang", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WidgetSummaryEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/widget/placeholder": {
            "get": {
                "tags": ["Widget"],
                "summary": "Static placeholder summary for widget galleries",
                "parameters": [
                    {"name": "tier", "in": "query", "type": "string"},
                    {"name": "lang", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WidgetSummaryEnvelope"}}
                }
            }
        },
        "/widget/time-slots": {
            "get": {
                "tags": ["Widget"],
                "summary": "List the school day's time slots",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/widget/refresh": {
            "post": {
                "tags": ["Widget"],
                "summary": "Queue a republish of the caller's widget payloads",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Publishing disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/widget/token": {
            "post": {
                "tags": ["Widget"],
                "summary": "Issue a read-only widget token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller cannot issue tokens", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/storage/{key}": {
            "get": {
                "tags": ["Storage"],
                "summary": "Read a shared storage key",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string", "pattern": "^[a-z0-9_]{1,64}$"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Key absent", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "head": {
                "tags": ["Storage"],
                "summary": "Check whether a shared storage key exists",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Present"},
                    "404": {"description": "Absent"}
                }
            },
            "put": {
                "tags": ["Storage"],
                "summary": "Write a shared storage key",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StorageValueRequest"}}
                ],
                "responses": {
                    "204": {"description": "Stored"},
                    "400": {"description": "Invalid key or payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Storage"],
                "summary": "Remove a shared storage key",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List the caller's courses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Replace the caller's courses and republish widget payloads",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceCoursesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/export": {
            "get": {
                "tags": ["Courses"],
                "summary": "Download the weekly timetable",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/calendar"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx", "ics"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "WidgetRow": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "classroom": {"type": "string"},
                "start_slot": {"type": "integer"},
                "end_slot": {"type": "integer"},
                "slot_label": {"type": "string"},
                "time_range": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "WidgetSummary": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "source": {"type": "string", "enum": ["upcoming", "today", "none"]},
                "count": {"type": "integer"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/WidgetRow"}},
                "overflow_count": {"type": "integer"},
                "overflow_text": {"type": "string"},
                "empty_hint": {"type": "string"},
                "tier": {"type": "string"},
                "weekday": {"type": "integer"},
                "locale": {"type": "string"},
                "degraded": {"type": "boolean"},
                "last_updated": {"type": "string", "format": "date-time"},
                "next_refresh": {"type": "string", "format": "date-time"}
            }
        },
        "WidgetSummaryEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/WidgetSummary"},
                "meta": {"type": "object"}
            }
        },
        "StorageValueRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"},
                "ttl_seconds": {"type": "integer", "minimum": 0}
            }
        },
        "CourseInput": {
            "type": "object",
            "required": ["name", "day_of_week", "start_slot", "end_slot"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "teacher": {"type": "string"},
                "classroom": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 1, "maximum": 7},
                "start_slot": {"type": "integer", "minimum": 1, "maximum": 14},
                "end_slot": {"type": "integer", "minimum": 1, "maximum": 14},
                "note": {"type": "string"}
            }
        },
        "ReplaceCoursesRequest": {
            "type": "object",
            "properties": {
                "courses": {"type": "array", "items": {"$ref": "#/definitions/CourseInput"}}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
