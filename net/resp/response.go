package resp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ncobase/keyset/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// Success writes data with status 200.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode writes data with statusCode. A string is written as a
// message.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	r := &Exception{Status: statusCode}
	if len(data) > 0 {
		if msg, ok := data[0].(string); ok {
			r.Message = msg
		} else {
			r.Data = data[0]
		}
	}

	statusCode, result := buildSuccessResponse(r)
	writeJSON(w, statusCode, result)
}

// buildSuccessResponse builds the success response.
func buildSuccessResponse(r *Exception) (int, any) {
	status := http.StatusOK
	if r.Status != 0 {
		status = r.Status
	}

	if status < 200 || status >= 400 {
		return buildFailureResponse(r)
	}

	if r.Data != nil {
		return status, r.Data
	}

	message := "ok"
	if r.Message != "" {
		message = r.Message
	}
	return status, map[string]any{"message": message}
}

// Fail writes a failure response.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = &Exception{
			Status:  http.StatusInternalServerError,
			Code:    ecode.ServerErr,
			Message: ecode.Text(ecode.ServerErr),
		}
	}
	statusCode, result := buildFailureResponse(r)
	writeJSON(w, statusCode, result)
}

// buildFailureResponse builds the failure response.
func buildFailureResponse(r *Exception) (int, any) {
	status := http.StatusBadRequest
	code := ecode.RequestErr
	message := ecode.Text(code)

	if r.Status != 0 {
		status = r.Status
	}
	if r.Code != 0 {
		code = r.Code
	}
	if r.Message != "" {
		message = r.Message
	}

	return status, &Exception{
		Code:    code,
		Message: message,
		Errors:  r.Errors,
	}
}

// Error writes err as a failure. Coded errors keep their code and map to
// the status of the code; anything else is an internal error.
func Error(w http.ResponseWriter, err error) {
	Fail(w, FromError(err))
}

// FromError converts err into a failure response.
func FromError(err error) *Exception {
	var e *ecode.Error
	if errors.As(err, &e) {
		return &Exception{
			Status:  ecode.ToHTTPStatus(e.Code),
			Code:    e.Code,
			Message: e.Message,
		}
	}
	return &Exception{
		Status:  http.StatusInternalServerError,
		Code:    ecode.ServerErr,
		Message: ecode.Text(ecode.ServerErr),
	}
}

// BadRequest writes a 400 failure.
func BadRequest(w http.ResponseWriter, message string, errs ...any) {
	Fail(w, &Exception{Status: http.StatusBadRequest, Code: ecode.RequestErr, Message: message, Errors: first(errs)})
}

// NotFound writes a 404 failure.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, &Exception{Status: http.StatusNotFound, Code: ecode.NotFound, Message: message})
}

// ServerError writes a 500 failure.
func ServerError(w http.ResponseWriter, message string) {
	Fail(w, &Exception{Status: http.StatusInternalServerError, Code: ecode.ServerErr, Message: message})
}

func first(v []any) any {
	if len(v) > 0 {
		return v[0]
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
