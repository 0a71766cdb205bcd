package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registrar API",
        "description": "Student registration and ID card service",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Registration", "description": "Public admission endpoints"},
        {"name": "Documents", "description": "Document upload and verification"},
        {"name": "OTP", "description": "Phone verification"},
        {"name": "Students", "description": "Back-office student management"},
        {"name": "Cards", "description": "ID card generation"},
        {"name": "Admins", "description": "Admin account management"},
        {"name": "Catalog", "description": "Campus store catalog"}
    ],
    "paths": {
        "/students/register": {
            "post": {
                "tags": ["Registration"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/students/{student_id}/status": {
            "get": {
                "tags": ["Registration"],
                "summary": "Check registration status",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/students/{student_id}/slip": {
            "get": {
                "tags": ["Registration"],
                "summary": "Download admission slip PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/students/{student_id}/print-document": {
            "post": {
                "tags": ["Registration"],
                "summary": "Publish the admission slip to Drive and return its link",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Documents not yet verified"}
                }
            }
        },
        "/students/{student_id}/documents": {
            "post": {
                "tags": ["Documents"],
                "summary": "Upload admission documents",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"}
                }
            },
            "get": {
                "tags": ["Documents"],
                "summary": "List uploaded documents and verification state",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Per-dependency health report",
                "responses": {
                    "200": {"description": "healthy or degraded"}
                }
            }
        },
        "/otp/send": {
            "post": {
                "tags": ["OTP"],
                "summary": "Send verification code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendOTPRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/otp/verify": {
            "post": {
                "tags": ["OTP"],
                "summary": "Verify code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyOTPRequest"}},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verified"},
                    "400": {"description": "Expired or mismatched code"}
                }
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Admins"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/init": {
            "post": {
                "tags": ["Admins"],
                "summary": "Seed the first super admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "An admin account already exists"}
                }
            }
        },
        "/admin/verify-token": {
            "get": {
                "tags": ["Admins"],
                "summary": "Validate the bearer token and return its claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or expired token"}
                }
            }
        },
        "/admin/google-drive/test": {
            "get": {
                "tags": ["Documents"],
                "summary": "Check Google Drive connectivity",
                "responses": {
                    "200": {"description": "Drive reachable"},
                    "502": {"description": "Drive unreachable or not configured"}
                }
            }
        },
        "/admin/google-drive/folders/{student_id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "List a student's Drive folder contents",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "has_photo", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export the visible roster",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster file"}
                }
            }
        },
        "/admin/students/pending": {
            "get": {
                "tags": ["Students"],
                "summary": "List students awaiting verification",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{student_id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{student_id}/verify": {
            "post": {
                "tags": ["Documents"],
                "summary": "Record verification checklist",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyDocumentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{student_id}/photo": {
            "post": {
                "tags": ["Students"],
                "summary": "Upload student photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "photo", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{student_id}/card": {
            "post": {
                "tags": ["Cards"],
                "summary": "Generate ID card",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Cards"],
                "summary": "Download generated card",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "pptx"]}
                ],
                "responses": {
                    "200": {"description": "Card file"}
                }
            }
        },
        "/admin/students/{student_id}/card/link": {
            "get": {
                "tags": ["Cards"],
                "summary": "Issue a time-limited download link",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "pptx"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/cards/bulk": {
            "post": {
                "tags": ["Cards"],
                "summary": "Queue card generation for a roster",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"department": {"type": "string"}}}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cards/download": {
            "get": {
                "tags": ["Cards"],
                "summary": "Download a card via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Card file"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/admin/students/{student_id}/attendance": {
            "post": {
                "tags": ["Students"],
                "summary": "Mark attendance",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/admins": {
            "get": {
                "tags": ["Admins"],
                "summary": "List admin accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admins"],
                "summary": "Create admin account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/products": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List catalog products",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "brand", "in": "query", "type": "string"},
                    {"name": "sort_by", "in": "query", "type": "string", "enum": ["name", "category", "brand", "price", "created_at"]},
                    {"name": "sort_order", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/brands": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List product brands",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/catalog/brands": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Register a brand",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBrandRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/catalog/customers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List merch customers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admins/stats": {
            "get": {
                "tags": ["Admins"],
                "summary": "Admin account totals by role",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "mobile": {"type": "string"},
                "department": {"type": "string"},
                "course": {"type": "string"},
                "program": {"type": "string"},
                "admission_year": {"type": "integer"},
                "ju_application": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "pincode": {"type": "string"},
                "documents": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/InlineDocument"}
                }
            },
            "required": ["name", "email", "mobile", "department"]
        },
        "InlineDocument": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "file_data": {"type": "string", "description": "Base64 encoded file content"}
            },
            "required": ["filename", "file_data"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            },
            "required": ["email", "password"]
        },
        "CreateAdminRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "fullName": {"type": "string"},
                "role": {"type": "string", "enum": ["super_admin", "department_admin", "photo_admin"]},
                "department": {"type": "string"}
            },
            "required": ["email", "password", "fullName", "role"]
        },
        "InitAdminRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateBrandRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "url": {"type": "string"}
            },
            "required": ["name"]
        },
        "UpdateCustomerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"}
            },
            "required": ["name", "email"]
        },
        "VerifyDocumentsRequest": {
            "type": "object",
            "properties": {
                "checks": {
                    "type": "object",
                    "additionalProperties": {"type": "boolean"}
                }
            }
        },
        "AttendanceRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["present", "absent"]}
            },
            "required": ["status"]
        },
        "SendOTPRequest": {
            "type": "object",
            "properties": {
                "phone": {"type": "string"}
            },
            "required": ["phone"]
        },
        "VerifyOTPRequest": {
            "type": "object",
            "properties": {
                "phone": {"type": "string"},
                "code": {"type": "string"}
            },
            "required": ["phone", "code"]
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
