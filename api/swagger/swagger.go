package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department CMS API",
        "description": "Content management backend for an academic department site",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Administrator sessions"},
        {"name": "Subjects", "description": "Curriculum subjects per course track"},
        {"name": "SubjectDetails", "description": "Per-subject hour breakdown and descriptions"},
        {"name": "Faculty", "description": "Faculty member management"},
        {"name": "Activities", "description": "Department activities and blogs"},
        {"name": "Public", "description": "Unauthenticated site projections"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects of a course track",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string", "enum": ["bachelor", "diploma"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Create subject",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Duplicate code or invalid payload"}
                }
            }
        },
        "/subjects/{id}": {
            "put": {
                "tags": ["Subjects"],
                "summary": "Update subject and replace its prerequisites",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Subjects"],
                "summary": "Delete subject and prerequisite links",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/subjects/export": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Export a track's curriculum table",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/subject-details": {
            "get": {
                "tags": ["SubjectDetails"],
                "summary": "List subject details of a course track",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SubjectDetails"],
                "summary": "Attach a detail record to a subject",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectDetailRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Subject already has a detail record"}
                }
            }
        },
        "/faculty": {
            "get": {
                "tags": ["Faculty"],
                "summary": "List faculty members",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Faculty"],
                "summary": "Create faculty member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FacultyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activities with blog references",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Create activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activity-blogs": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activity blogs",
                "parameters": [
                    {"name": "activityId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Create the single blog of an activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BlogRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Activity already has a blog"}
                }
            }
        },
        "/activity-images": {
            "get": {
                "tags": ["Public"],
                "summary": "Carousel images extracted from recent blog content",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/public/faculty": {
            "get": {
                "tags": ["Public"],
                "summary": "List faculty for the public site",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/public/activity-blogs": {
            "get": {
                "tags": ["Public"],
                "summary": "List published activity blogs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/public/activity/{id}": {
            "get": {
                "tags": ["Public"],
                "summary": "First published blog of an activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No published blog"}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Activities"],
                "summary": "Upload a blog image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "activityBlogId", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not an image or too large"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Public"],
                "summary": "Content statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SubjectRequest": {
            "type": "object",
            "properties": {
                "group_name": {"type": "string"},
                "code": {"type": "string"},
                "title": {"type": "string"},
                "credits": {"type": "integer"},
                "prerequisites": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["code", "title"]
        },
        "SubjectDetailRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "integer"},
                "theory_hours": {"type": "integer"},
                "practical_hours": {"type": "integer"},
                "self_study_hours": {"type": "integer"},
                "english_title": {"type": "string"},
                "original_code": {"type": "string"},
                "original_title": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["subject_id"]
        },
        "FacultyRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "image_url": {"type": "string"}
            },
            "required": ["first_name", "last_name"]
        },
        "ActivityRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            },
            "required": ["title"]
        },
        "BlogRequest": {
            "type": "object",
            "properties": {
                "activity_id": {"type": "integer"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "is_published": {"type": "boolean"}
            },
            "required": ["activity_id", "title", "content"]
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
