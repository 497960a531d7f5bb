package api

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in {"detail": {"code": ...}}.
const (
	CodeDatabaseError = "DATABASE_ERROR"
	CodeTableNotFound = "TABLE_NOT_FOUND"
	CodeEmptyCSV      = "EMPTY_CSV"
	CodeFileNotFound  = "FILE_NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
)

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a structured {"detail": {status, message, code}} body.
func Error(w http.ResponseWriter, status int, message, code string) {
	JSON(w, status, map[string]any{
		"detail": errorDetail{Status: "error", Message: message, Code: code},
	})
}

// ErrorText writes a bare {"detail": "..."} body.
func ErrorText(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"detail": message})
}
