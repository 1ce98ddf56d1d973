package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"dealdesk/internal/domain"
	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/services"
	"dealdesk/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// DealAccess guards routes that carry a {dealID} URL parameter
type DealAccess struct {
	authorizer services.DealAuthorizer
	logger     *slog.Logger
}

// NewDealAccess creates deal access middleware backed by authorizer
func NewDealAccess(authorizer services.DealAuthorizer, logger *slog.Logger) *DealAccess {
	return &DealAccess{authorizer: authorizer, logger: logger}
}

// Read lets through callers that may read the deal
func (d *DealAccess) Read(next http.Handler) http.Handler {
	return d.guard(next, d.authorizer.CanReadDeal)
}

// Write lets through staff of the bank owning the deal
func (d *DealAccess) Write(next http.Handler) http.Handler {
	return d.guard(next, d.authorizer.CanWriteDeal)
}

type accessCheck func(ctx context.Context, p *models.Principal, dealID string) error

func (d *DealAccess) guard(next http.Handler, check accessCheck) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealID := chi.URLParam(r, "dealID")
		principal := httputil.GetPrincipal(r)

		if err := check(r.Context(), principal, dealID); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				httputil.RespondError(w, http.StatusNotFound, "deal not found")
			case errors.Is(err, domain.ErrUnauthorized):
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			case errors.Is(err, domain.ErrForbidden):
				d.logger.Warn("deal access denied",
					"deal_id", dealID,
					"user_id", principal.UserID,
					"role", principal.Role,
					"method", r.Method,
				)
				httputil.RespondError(w, http.StatusForbidden, "access denied to deal")
			default:
				d.logger.Error("deal access check failed", "deal_id", dealID, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
