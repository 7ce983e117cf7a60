// Package docs registers the OpenAPI document served at /swagger/*.
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
        "/api/assets/{key}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["catalog"],
                "summary": "Download an uploaded image",
                "parameters": [
                    {"type": "string", "description": "Asset key, e.g. images/<id>.jpg", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/buses/{id}/images": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List the ready images of a bus",
                "parameters": [
                    {"type": "string", "description": "Bus id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ImageListResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List bus categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/model.Category"}}}}
                }
            }
        },
        "/api/categories/{id}/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List the models of a category",
                "parameters": [
                    {"type": "string", "description": "Category id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/model.BusModel"}}}}
                }
            }
        },
        "/api/getBuses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List buses for the upload picker",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/model.BusSummary"}}}}
                }
            }
        },
        "/api/models/{id}/buses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List the buses of a model",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/model.Bus"}}}}
                }
            }
        },
        "/api/uploadBusImages": {
            "post": {
                "description": "Streams a multipart body (busId, optional batchKey, one or more files) and stores each file as an asset plus a busImage document.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["upload"],
                "summary": "Upload bus images",
                "parameters": [
                    {"type": "string", "description": "Target bus id", "name": "busId", "in": "formData", "required": true},
                    {"type": "string", "description": "Client retry key", "name": "batchKey", "in": "formData"},
                    {"type": "file", "description": "Image files", "name": "files", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.uploadResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "405": {"description": "Method Not Allowed", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "handler.uploadResult": {
            "type": "object",
            "properties": {
                "images": {"type": "array", "items": {"$ref": "#/definitions/model.BusImage"}},
                "success": {"type": "boolean"}
            }
        },
        "model.Bus": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "model": {"$ref": "#/definitions/model.Reference"},
                "serialNumber": {"type": "string"}
            }
        },
        "model.BusImage": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "_type": {"type": "string"},
                "batchKey": {"type": "string"},
                "bus": {"$ref": "#/definitions/model.Reference"},
                "image": {"$ref": "#/definitions/model.ImageField"},
                "label": {"type": "string"},
                "status": {"type": "string"},
                "uploadDate": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.BusModel": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "parentCategory": {"$ref": "#/definitions/model.Reference"},
                "title": {"type": "string"}
            }
        },
        "model.BusSummary": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "model": {"$ref": "#/definitions/model.ModelSummary"},
                "serialNumber": {"type": "string"}
            }
        },
        "model.Category": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "model.ImageField": {
            "type": "object",
            "properties": {
                "_type": {"type": "string"},
                "asset": {"$ref": "#/definitions/model.Reference"}
            }
        },
        "model.ModelSummary": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            }
        },
        "model.Reference": {
            "type": "object",
            "properties": {
                "_ref": {"type": "string"},
                "_type": {"type": "string"}
            }
        },
        "service.ImageListResult": {
            "type": "object",
            "properties": {
                "images": {"type": "array", "items": {"$ref": "#/definitions/model.BusImage"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bus Gallery API",
	Description:      "Browse buses and upload their photographs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
