// Package docs registers the OpenAPI document served under /swagger/.
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
        "/healthz": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/session": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Exchange a bearer token for a cookie session", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.result"}}}},
            "delete": {"tags": ["auth"], "summary": "End the cookie session", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/candidates": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "List or search candidates", "parameters": [{"type": "string", "name": "q", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Create a candidate, optionally with a first note", "consumes": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/api.result"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/candidates/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Get a candidate", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.result"}}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Partially update a candidate", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["candidates"], "summary": "Delete a candidate and its notes", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/candidates/{id}/notes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "List notes on a candidate", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Add a note", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/notes/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Edit a note", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["notes"], "summary": "Delete a note", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/resumes": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Upload a resume and extract candidate fields", "consumes": ["multipart/form-data"], "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.result"}}, "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.result"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Delete a resume", "parameters": [{"type": "string", "name": "path", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/resumes/url": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Resolve a signed resume URL", "parameters": [{"type": "string", "name": "path", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.result"}}}}
        },
        "/export": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["export"], "summary": "Download candidates as xlsx", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"type": "string", "name": "ids", "in": "query"}, {"type": "string", "name": "name", "in": "query"}, {"type": "string", "name": "jobType", "in": "query"}, {"type": "string", "name": "company", "in": "query"}, {"type": "string", "name": "school", "in": "query"}, {"type": "string", "name": "status", "in": "query"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.result"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["export"], "summary": "Download candidates as xlsx using a JSON filter", "consumes": ["application/json"], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "api.result": {
            "type": "object",
            "properties": {
                "isSuccess": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "RecruitDesk API",
	Description:      "Candidate tracking for recruiters: candidates, notes, resume ingestion and spreadsheet export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
