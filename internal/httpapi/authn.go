package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"zenclass.org/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// withAuth is the request authentication filter. It runs once per request:
// it extracts a bearer credential, verifies it and resolves the subject to a
// full identity, which it stores in the request context. It never rejects:
// every failure (missing header, wrong scheme, bad token, unknown subject)
// leaves the context empty and lets the request continue, so that the
// authorization gate on protected routes stays the single place that says no.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := a.codec.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := a.resolver.ResolveSubject(r.Context(), subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

// extractBearerToken pulls the credential out of an Authorization header.
// The "Bearer " scheme prefix must match exactly, case sensitive.
func extractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// requireAuth is the authorization gate for protected routes. Separate from
// the filter so public endpoints can share the same identity resolution.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			writeUnauthorized(w, r, "Full authentication is required to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureAdmin guards privileged operations inside handlers.
func (a *API) ensureAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "Full authentication is required to access this resource")
		return false
	}
	if !user.Admin {
		writeError(w, r, http.StatusForbidden, "admin privileges required")
		return false
	}
	return true
}

// unauthorizedBody is the error contract for unauthenticated access: a flat
// object with status, error, message and path, in that order.
type unauthorizedBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(unauthorizedBody{
		Status:  http.StatusUnauthorized,
		Error:   "Unauthorized",
		Message: message,
		Path:    r.URL.Path,
	})
}
