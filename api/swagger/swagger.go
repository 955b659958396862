package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Results API",
        "description": "Exam result publishing, student records and class promotion",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "tags": [
        {"name": "Results", "description": "Result lookup, entry and export"},
        {"name": "Students", "description": "Student records and class rosters"},
        {"name": "Promotion", "description": "Year-to-year class enrolment"},
        {"name": "Subjects", "description": "Subject catalog per class"},
        {"name": "Authentication", "description": "Admin session"},
        {"name": "Dashboard", "description": "Admin overview"}
    ],
    "paths": {
        "/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Public result lookup",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "roll", "in": "query", "required": true, "type": "integer"},
                    {"name": "test", "in": "query", "required": true, "type": "string", "enum": ["Mid_Term", "Final"]},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing parameter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/print": {
            "get": {
                "tags": ["Results"],
                "summary": "Printable result card",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "roll", "in": "query", "required": true, "type": "integer"},
                    {"name": "test", "in": "query", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "PDF", "schema": {"type": "file"}}}
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Subjects offered to a class",
                "parameters": [{"name": "class", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "End the admin session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current admin identity",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin dashboard",
                "parameters": [{"name": "year", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/results": {
            "get": {
                "tags": ["Results"],
                "summary": "Class result sheet",
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "test", "in": "query", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Results"],
                "summary": "Submit a batch of exam marks",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultsRequest"}}],
                "responses": {
                    "200": {"description": "Per-student outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/results/export": {
            "get": {
                "tags": ["Results"],
                "summary": "Download a class result sheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "class", "in": "query", "required": true, "type": "string"},
                    {"name": "test", "in": "query", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/admin/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "class", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student with first class record",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Roll number taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/promote": {
            "post": {
                "tags": ["Promotion"],
                "summary": "Promote a student",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoteStudentRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Roll number taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student with class records and results",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentProfile"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/students/{id}/status": {
            "patch": {
                "tags": ["Students"],
                "summary": "Change student status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentStatusRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/students/{id}/promotion": {
            "get": {
                "tags": ["Promotion"],
                "summary": "Promotion options for a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/classes/{class}/roster": {
            "get": {
                "tags": ["Students"],
                "summary": "Students enrolled in a class",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "SubjectMark": {
            "type": "object",
            "properties": {
                "writtenMark": {"type": "number"},
                "mcqMark": {"type": "number"},
                "totalMark": {"type": "number"},
                "maxWrittenMark": {"type": "number"},
                "maxMcqMark": {"type": "number"},
                "maxTotalMark": {"type": "number"},
                "grade": {"type": "string"}
            }
        },
        "TestInfo": {
            "type": "object",
            "properties": {
                "className": {"type": "string", "enum": ["Class_6", "Class_7", "Class_8", "Class_9", "Class_10"]},
                "testType": {"type": "string", "enum": ["Mid_Term", "Final"]},
                "writtenMarks": {"type": "number"},
                "mcqMarks": {"type": "number"},
                "totalMarksPerSubject": {"type": "number"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "year": {"type": "integer"}
            },
            "required": ["className", "testType"]
        },
        "StudentResultEntry": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "studentName": {"type": "string"},
                "rollNumber": {"type": "integer"},
                "subjects": {"type": "object", "additionalProperties": {"$ref": "#/definitions/SubjectMark"}},
                "totalMarks": {"type": "number"}
            },
            "required": ["studentId"]
        },
        "SubmitResultsRequest": {
            "type": "object",
            "properties": {
                "testInfo": {"$ref": "#/definitions/TestInfo"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/StudentResultEntry"}}
            },
            "required": ["testInfo", "results"]
        },
        "Address": {
            "type": "object",
            "properties": {
                "houseOrRoad": {"type": "string"},
                "villageOrArea": {"type": "string"},
                "postOffice": {"type": "string"},
                "upazila": {"type": "string"},
                "district": {"type": "string"},
                "division": {"type": "string"},
                "postalCode": {"type": "string"}
            }
        },
        "StudentProfile": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "fatherName": {"type": "string"},
                "motherName": {"type": "string"},
                "mobile": {"type": "string"},
                "gender": {"type": "string", "enum": ["Male", "Female", "Other"]},
                "bloodGroup": {"type": "string"},
                "birthDate": {"type": "string", "format": "date-time"},
                "address": {"$ref": "#/definitions/Address"},
                "photoUrl": {"type": "string"}
            },
            "required": ["name"]
        },
        "CreateStudentRequest": {
            "allOf": [
                {"$ref": "#/definitions/StudentProfile"},
                {
                    "type": "object",
                    "properties": {
                        "className": {"type": "string"},
                        "rollNumber": {"type": "integer"},
                        "year": {"type": "integer"}
                    },
                    "required": ["className", "rollNumber"]
                }
            ]
        },
        "UpdateStudentStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Active", "Inactive", "Graduated", "Transferred", "Dropped_Out"]}
            },
            "required": ["status"]
        },
        "PromoteStudentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "className": {"type": "string"},
                "year": {"type": "integer"},
                "rollNumber": {"type": "integer"}
            },
            "required": ["studentId", "className", "year", "rollNumber"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
