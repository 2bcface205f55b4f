// Package swagger registers the OpenAPI document served under /swagger.
package swagger

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
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/tables": {
            "get": {
                "tags": ["tables"],
                "summary": "Read Tables",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Comma separated worksheet names", "name": "worksheets", "in": "query", "required": true},
                    {"type": "string", "description": "Comma separated columns", "name": "columns", "in": "query"},
                    {"type": "string", "description": "Index column", "name": "index", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Tables by worksheet", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/table.Document"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/worksheets": {
            "get": {
                "tags": ["tables"],
                "summary": "List Worksheets",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Worksheet names", "schema": {"type": "object", "properties": {"worksheets": {"type": "array", "items": {"type": "string"}}}}},
                    "502": {"description": "Remote Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "tags": ["tables"],
                "summary": "Create Worksheet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Worksheet", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tables.CreateWorksheetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}": {
            "get": {
                "tags": ["tables"],
                "summary": "Read Table",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"type": "string", "description": "Comma separated columns", "name": "columns", "in": "query"},
                    {"type": "string", "description": "Index column", "name": "index", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Table", "schema": {"$ref": "#/definitions/table.Document"}},
                    "422": {"description": "Schema Error", "schema": {"$ref": "#/definitions/Error"}},
                    "502": {"description": "Remote Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/write": {
            "post": {
                "tags": ["tables"],
                "summary": "Write Table",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"description": "Table and optional comment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tables.WriteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Written"},
                    "409": {"description": "Write Conflict", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/update": {
            "post": {
                "tags": ["tables"],
                "summary": "Update Table",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"type": "boolean", "description": "Only fill empty cells and append rows", "name": "augment", "in": "query"},
                    {"type": "boolean", "description": "Plan without writing", "name": "dry_run", "in": "query"},
                    {"type": "string", "description": "Comma separated columns", "name": "columns", "in": "query"},
                    {"description": "Desired table", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/table.Document"}}
                ],
                "responses": {
                    "200": {"description": "Update result", "schema": {"$ref": "#/definitions/tables.UpdateResult"}},
                    "409": {"description": "Write Conflict", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Schema Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/push": {
            "post": {
                "tags": ["tables"],
                "summary": "Push Database Table",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"description": "Source table", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tables.PushRequest"}}
                ],
                "responses": {
                    "200": {"description": "Update result", "schema": {"$ref": "#/definitions/tables.UpdateResult"}},
                    "501": {"description": "No Database", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/snapshots": {
            "get": {
                "tags": ["tables"],
                "summary": "List Snapshots",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Snapshots, newest first", "schema": {"type": "object", "properties": {"snapshots": {"type": "array", "items": {"$ref": "#/definitions/archive.Snapshot"}}}}},
                    "501": {"description": "No Archive", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/restore": {
            "post": {
                "tags": ["tables"],
                "summary": "Restore Snapshot",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"description": "Snapshot key", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/tables.RestoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "Update result", "schema": {"$ref": "#/definitions/tables.UpdateResult"}},
                    "501": {"description": "No Archive", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/tables/{worksheet}/runs": {
            "get": {
                "tags": ["tables"],
                "summary": "List Sync Runs",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Worksheet name", "name": "worksheet", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum number of runs", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Runs, newest first"},
                    "501": {"description": "No Database", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "table.Document": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/table.DocumentRow"}}
            }
        },
        "table.DocumentRow": {
            "type": "object",
            "properties": {
                "key": {},
                "values": {"type": "array", "items": {}}
            }
        },
        "tables.CreateWorksheetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "rows": {"type": "integer"},
                "cols": {"type": "integer"}
            }
        },
        "tables.WriteRequest": {
            "type": "object",
            "properties": {
                "index": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/table.DocumentRow"}},
                "comment": {"type": "string"}
            }
        },
        "tables.PushRequest": {
            "type": "object",
            "properties": {
                "table": {"type": "string"},
                "index": {"type": "string"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "limit": {"type": "integer"},
                "augment": {"type": "boolean"},
                "dry_run": {"type": "boolean"}
            }
        },
        "tables.RestoreRequest": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "dry_run": {"type": "boolean"}
            }
        },
        "tables.UpdateResult": {
            "type": "object",
            "properties": {
                "worksheet": {"type": "string"},
                "mode": {"type": "string"},
                "dry_run": {"type": "boolean"},
                "summary": {"$ref": "#/definitions/reconcile.PlanSummary"},
                "actions": {"type": "array", "items": {"type": "object"}},
                "executed": {"type": "integer"},
                "snapshot": {"type": "string"}
            }
        },
        "reconcile.PlanSummary": {
            "type": "object",
            "properties": {
                "observed_rows": {"type": "integer"},
                "desired_rows": {"type": "integer"},
                "cell_updates": {"type": "integer"},
                "swaps": {"type": "integer"},
                "deletes": {"type": "integer"},
                "adds": {"type": "integer"}
            }
        },
        "archive.Snapshot": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "worksheet": {"type": "string"},
                "size": {"type": "integer"},
                "created": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "gridsync API",
	Description:      "Reconciles keyed tables with spreadsheet worksheets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
