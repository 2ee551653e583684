package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Support Bot",
    "description": "Telegram webhook and admin ticket API for the support and catalog bot",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {
        "tags": ["health"],
        "summary": "Ticket store health",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK"},
          "503": {"description": "Ticket store unavailable"}
        }
      }
    },
    "/telegram/webhook": {
      "post": {
        "tags": ["telegram"],
        "summary": "Telegram webhook",
        "description": "Receives Bot API updates. The update is acknowledged at once and handled in the background.",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "X-Telegram-Bot-Api-Secret-Token", "in": "header", "type": "string", "required": false},
          {"name": "update", "in": "body", "required": true, "schema": {"type": "object"}}
        ],
        "responses": {
          "200": {"description": "Accepted"},
          "400": {"description": "Malformed update"},
          "401": {"description": "Secret mismatch"}
        }
      }
    },
    "/api/tickets": {
      "get": {
        "tags": ["tickets"],
        "summary": "List tickets",
        "description": "Most recent tickets, newest first",
        "produces": ["application/json"],
        "parameters": [
          {"name": "X-Admin-Key", "in": "header", "type": "string", "required": true},
          {"name": "limit", "in": "query", "type": "integer", "default": 50, "minimum": 1, "maximum": 200}
        ],
        "responses": {
          "200": {"description": "OK"},
          "400": {"description": "Invalid query"},
          "401": {"description": "Invalid admin key"}
        }
      }
    },
    "/api/tickets/{id}": {
      "get": {
        "tags": ["tickets"],
        "summary": "Ticket details",
        "description": "A ticket with the replies recorded for it",
        "produces": ["application/json"],
        "parameters": [
          {"name": "X-Admin-Key", "in": "header", "type": "string", "required": true},
          {"name": "id", "in": "path", "type": "string", "required": true}
        ],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/TicketDetails"}},
          "401": {"description": "Invalid admin key"},
          "404": {"description": "Ticket not found"}
        }
      }
    }
  },
  "definitions": {
    "Attachment": {
      "type": "object",
      "properties": {
        "kind": {"type": "string"},
        "mime_type": {"type": "string"},
        "object": {
          "type": "object",
          "properties": {
            "id": {"type": "string"},
            "name": {"type": "string"},
            "link": {"type": "string"}
          }
        }
      }
    },
    "Ticket": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "user_id": {"type": "integer"},
        "user_name": {"type": "string"},
        "chat_id": {"type": "integer"},
        "text": {"type": "string"},
        "created_at": {"type": "string", "format": "date-time"},
        "category": {"type": "string"},
        "attachments": {"type": "array", "items": {"$ref": "#/definitions/Attachment"}}
      }
    },
    "Reply": {
      "type": "object",
      "properties": {
        "ticket_id": {"type": "string"},
        "admin_id": {"type": "integer"},
        "admin_name": {"type": "string"},
        "sent_at": {"type": "string", "format": "date-time"},
        "content": {"type": "string"}
      }
    },
    "TicketDetails": {
      "type": "object",
      "properties": {
        "ticket": {"$ref": "#/definitions/Ticket"},
        "replies": {"type": "array", "items": {"$ref": "#/definitions/Reply"}}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
