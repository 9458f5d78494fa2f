// Package httpx provides HTTP response utilities for the storefront JSON API.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// NotificationTTL is how long a user-facing notification stays visible.
const NotificationTTL = 3 * time.Second

// Notification kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

// Notification is a transient message surfaced to the shopper.
type Notification struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notify builds a notification expiring NotificationTTL from now.
func Notify(kind, message string) *Notification {
	return &Notification{Kind: kind, Message: message, ExpiresAt: now().Add(NotificationTTL)}
}

var now = time.Now

// Envelope wraps a successful payload with an optional notification.
type Envelope struct {
	Data         any           `json:"data"`
	Notification *Notification `json:"notification,omitempty"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error        string        `json:"error"`
	Message      string        `json:"message"`
	Notification *Notification `json:"notification,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends data with status 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Data: data})
}

// Success sends data with a success notification.
func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Envelope{Data: data, Notification: Notify(KindSuccess, message)})
}

// Fail sends an error body whose notification repeats message.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{
		Error:        code,
		Message:      message,
		Notification: Notify(KindError, message),
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
