package middleware

import (
	"net/http"

	"inkwell/internal/httputil"
)

// userIDHeader carries the authenticated user identity. Authentication itself
// is handled upstream (gateway/identity provider); the core trusts this
// header and performs no verification of its own.
const userIDHeader = "X-User-Id"

// Identity extracts the acting user from the request and stores it in the
// request context. Requests without an identity still pass through: read
// endpoints are anonymous, mutating handlers reject the empty user.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := r.Header.Get(userIDHeader); userID != "" {
				r = httputil.WithUserID(r, userID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
