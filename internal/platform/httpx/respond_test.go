package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstreamErr struct {
	status int
	msg    string
}

func (e upstreamErr) Error() string   { return e.msg }
func (e upstreamErr) StatusCode() int { return e.status }

func TestRespondErrorMapping(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", Invalid("Please fill in all required fields"), http.StatusBadRequest, "validation_failed", "Please fill in all required fields"},
		{"wrapped not found", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound, "not_found", "load: resource not found"},
		{"backend 4xx", upstreamErr{status: 409, msg: "Email already registered"}, http.StatusConflict, "backend_rejected", "Email already registered"},
		{"backend 5xx", upstreamErr{status: 503, msg: "Service Unavailable"}, http.StatusBadGateway, "backend_error", "Service Unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
			assert.Equal(t, tc.message, body.Message)
			require.NotNil(t, body.Notification)
			assert.Equal(t, KindError, body.Notification.Kind)
			assert.True(t, body.Notification.ExpiresAt.Equal(fixed.Add(3*time.Second)))
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, map[string]int{"id": 7}, "Product added successfully!")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Data         map[string]int `json:"data"`
		Notification Notification   `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Data["id"])
	assert.Equal(t, KindSuccess, body.Notification.Kind)
	assert.Equal(t, "Product added successfully!", body.Notification.Message)
}
