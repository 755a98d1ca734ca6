package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncobase/keyset/ecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]any{"items": []int{1}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, []any{float64(1)}, decode(t, rec)["items"])

	rec = httptest.NewRecorder()
	WithStatusCode(rec, http.StatusAccepted, "queued")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "queued", decode(t, rec)["message"])
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"decode", ecode.Wrap(ecode.DecodeErr, "", errors.New("bad")), http.StatusBadRequest, ecode.DecodeErr},
		{"identity", ecode.New(ecode.IdentityMismatch, ""), http.StatusBadRequest, ecode.IdentityMismatch},
		{"pagination fields", ecode.New(ecode.PaginationFieldsErr, ""), http.StatusBadRequest, ecode.PaginationFieldsErr},
		{"plain", errors.New("connection refused"), http.StatusInternalServerError, ecode.ServerErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, float64(tt.code), body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestShortcuts(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "collection not found")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "collection not found", decode(t, rec)["message"])

	rec = httptest.NewRecorder()
	BadRequest(rec, "invalid limit", map[string]string{"limit": "must be a number"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotNil(t, decode(t, rec)["errors"])

	rec = httptest.NewRecorder()
	Fail(rec, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
