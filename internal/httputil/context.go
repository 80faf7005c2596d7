package httputil

import (
	"context"
	"net/http"
)

// contextKey is unexported so request-scoped values cannot collide with keys
// set by other packages.
type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns a copy of the request carrying the acting user's
// identity. Set once by the identity middleware.
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID returns the acting user's identity, or "" for anonymous requests.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
