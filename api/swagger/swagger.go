package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Survey API",
        "description": "Student and employer survey collection with an admin portal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Surveys", "description": "Survey submission and retrieval"},
        {"name": "Images", "description": "Survey image uploads"},
        {"name": "Admin", "description": "Admin portal"}
    ],
    "paths": {
        "/surveys": {
            "post": {
                "tags": ["Surveys"],
                "summary": "Submit or replace a survey",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Submission"}}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or survey type"},
                    "429": {"description": "Rate limited"},
                    "503": {"description": "Storage unavailable"}
                }
            },
            "get": {
                "tags": ["Surveys"],
                "summary": "List a user's surveys across both types",
                "parameters": [
                    {"name": "user_name", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing user name"}
                }
            }
        },
        "/surveys/multipart": {
            "post": {
                "tags": ["Surveys"],
                "summary": "Submit a survey together with an image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "payload", "in": "formData", "type": "string", "required": true, "description": "Submission JSON"},
                    {"name": "image", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or image"}
                }
            }
        },
        "/surveys/{id}": {
            "delete": {
                "tags": ["Surveys"],
                "summary": "Delete the caller's own survey",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true, "description": "<type>_<user name>"},
                    {"name": "user_name", "in": "query", "type": "string", "required": true},
                    {"name": "image_public_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "403": {"description": "Survey belongs to another user"},
                    "404": {"description": "Survey not found"}
                }
            }
        },
        "/images": {
            "post": {
                "tags": ["Images"],
                "summary": "Upload a survey image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "image", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Uploaded", "schema": {"$ref": "#/definitions/ImageUpload"}},
                    "400": {"description": "Missing, oversized or unsupported image"}
                }
            }
        },
        "/auth/admin": {
            "post": {
                "tags": ["Admin"],
                "summary": "Exchange the admin password for a bearer token",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminLogin"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Token"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Dashboard statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/AdminStats"}}}
            }
        },
        "/admin/surveys": {
            "get": {
                "tags": ["Admin"],
                "summary": "List every survey, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "description": "RFC3339 or YYYY-MM-DD"},
                    {"name": "to", "in": "query", "type": "string", "description": "RFC3339 or YYYY-MM-DD"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/surveys/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download surveys as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/admin/surveys/reindex": {
            "post": {
                "tags": ["Admin"],
                "summary": "Rebuild object store indexes",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Backend keeps no indexes"}
                }
            }
        },
        "/admin/surveys/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete any survey",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Survey not found"}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Submission and storage counters",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "Submission": {
            "type": "object",
            "required": ["user_name", "survey_type"],
            "properties": {
                "user_name": {"type": "string"},
                "survey_type": {"type": "string", "enum": ["Student", "Employer"]},
                "branch": {"type": "string"},
                "image_url": {"type": "string"},
                "image_public_id": {"type": "string"},
                "answers": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "CanonicalAnswer": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "answer": {"type": "string"}
            }
        },
        "AggregatedSurvey": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_name": {"type": "string"},
                "survey_type": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "image_url": {"type": "string"},
                "image_public_id": {"type": "string"},
                "question1": {"type": "string"},
                "question2": {"type": "string"},
                "question3": {"type": "string"},
                "custom_questions": {"type": "array", "items": {"$ref": "#/definitions/CanonicalAnswer"}}
            }
        },
        "AdminStats": {
            "type": "object",
            "properties": {
                "total_surveys": {"type": "integer"},
                "total_users": {"type": "integer"},
                "user_stats": {"type": "object"},
                "type_stats": {"type": "object"},
                "recent_surveys": {"type": "array", "items": {"$ref": "#/definitions/AggregatedSurvey"}},
                "average_surveys_per_user": {"type": "number"}
            }
        },
        "ImageUpload": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "public_id": {"type": "string"}
            }
        },
        "AdminLogin": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string"}}
        },
        "Token": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
