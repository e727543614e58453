package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, "Payroll generated", map[string]string{"id": "p-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Payroll generated", body.Message)
	assert.Nil(t, body.Error)
	assert.Equal(t, map[string]any{"id": "p-1"}, body.Data)

	rec = httptest.NewRecorder()
	Success(rec, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestErrorCodesFollowStatus(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", statusCode(http.StatusNotFound))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", statusCode(http.StatusInternalServerError))

	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"month": "month is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "month is required", body.Error.Details["month"])
}
