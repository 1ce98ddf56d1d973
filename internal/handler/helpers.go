package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dealdesk/internal/domain"
	"dealdesk/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var (
		notEmptyErr *domain.NotEmptyError
		cycleErr    *domain.CycleError
		conflictErr *domain.ConflictError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &notEmptyErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmptyErr.Error(), map[string]any{
			"node_id":     notEmptyErr.NodeID,
			"child_count": notEmptyErr.ChildCount,
		})
	case errors.As(err, &cycleErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, cycleErr.Error(), map[string]any{
			"node_id": cycleErr.NodeID,
		})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// badRequest reports a malformed request body or query
func badRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, err.Error())
}
