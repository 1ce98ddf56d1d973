package middleware

import (
	"net/http"

	"dealdesk/internal/domain/models"
	"dealdesk/internal/httputil"
)

// RequireRole ensures that the authenticated user holds one of roles
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := httputil.GetPrincipal(r)
			if principal == nil {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !principal.HasRole(roles...) {
				httputil.RespondError(w, http.StatusForbidden, "access denied: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BankOnly requires the bank role
func BankOnly() func(http.Handler) http.Handler {
	return RequireRole(models.RoleBank)
}
