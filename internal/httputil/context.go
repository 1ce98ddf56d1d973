package httputil

import (
	"context"
	"net/http"

	"dealdesk/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// WithPrincipal adds the authenticated caller to the request context
func WithPrincipal(r *http.Request, principal *models.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, principal)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the authenticated caller, or nil if the request is anonymous
func GetPrincipal(r *http.Request) *models.Principal {
	principal, _ := r.Context().Value(principalKey).(*models.Principal)
	return principal
}

// GetUserID returns the caller's user ID, or empty string if anonymous
func GetUserID(r *http.Request) string {
	if principal := GetPrincipal(r); principal != nil {
		return principal.UserID
	}
	return ""
}
