package ecode

import (
	"net/http"
	"sync"
)

const (
	OK = 0 // Success

	RequestErr = -400 // Invalid request
	NotFound   = -404 // Resource not found
	ServerErr  = -500 // Internal server error

	OptionsErr = 1000 // Invalid paginator options

	PaginationFieldsErr = 2000 // Pagination fields are not the suffix of the sort
	AlreadyExecuted     = 2001 // Paginator executed more than once

	DecodeErr = 3000 // Malformed or version-mismatched continuation token

	IdentityMismatch = 4000 // Token issued for another source
)

var (
	mu       sync.RWMutex
	messages = map[int]string{
		OK:                  "ok",
		RequestErr:          "Invalid request.",
		NotFound:            "Not found.",
		ServerErr:           "Internal server error.",
		OptionsErr:          "Invalid paginator options.",
		PaginationFieldsErr: "The query sort keys must end with the pagination fields.",
		AlreadyExecuted:     "The paginator has already been executed.",
		DecodeErr:           "Failed to parse next pagination cursor.",
		IdentityMismatch:    "The model name of next cursor token is not equal with query model name.",
	}
	statuses = map[int]int{
		OK:                  http.StatusOK,
		RequestErr:          http.StatusBadRequest,
		NotFound:            http.StatusNotFound,
		ServerErr:           http.StatusInternalServerError,
		OptionsErr:          http.StatusBadRequest,
		PaginationFieldsErr: http.StatusBadRequest,
		AlreadyExecuted:     http.StatusInternalServerError,
		DecodeErr:           http.StatusBadRequest,
		IdentityMismatch:    http.StatusBadRequest,
	}
)

// Register registers a message for a custom code.
func Register(code int, message string) {
	mu.Lock()
	defer mu.Unlock()
	messages[code] = message
}

// Text returns the registered message of code, or an empty string.
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	return messages[code]
}

// ToHTTPStatus maps a code to an HTTP status. Unknown codes map to 500.
func ToHTTPStatus(code int) int {
	mu.RLock()
	defer mu.RUnlock()
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
