package auth

import (
	"net/http"

	"vaultadmin/internal/response"
)

const (
	HeaderInternalCall = "x-internal-call"
	HeaderUserID       = "x-user-id"
	HeaderUserRole     = "x-user-role"

	internalCallSentinel = "true"
)

// InternalOnly admits server-to-server calls marked by the gateway and rejects everything else.
func InternalOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderInternalCall) != internalCallSentinel {
			response.Error(w, http.StatusForbidden, "Forbidden - External access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PropagateIdentity copies the gateway identity headers into the request context.
// It never rejects; absent headers yield an empty Identity.
func PropagateIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID: r.Header.Get(HeaderUserID),
			Role:   r.Header.Get(HeaderUserRole),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func RequireSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Subject(r.Context()) == "" {
			response.Error(w, http.StatusUnauthorized, "User ID not found. Authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).HasRole(role) {
				response.Error(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
