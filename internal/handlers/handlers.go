// Package handlers exposes the services as JSON over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/services"
)

// writeError maps a service error to its HTTP status. Unexpected errors are
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrValidation), errors.Is(err, httpx.ErrInvalidJSON):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
	case errors.Is(err, services.ErrInvalidSession):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_token", nil)
	case errors.Is(err, services.ErrAuth):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "authentication_required", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_status_transition", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "conflict", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// pathID parses the numeric path parameter name.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeInvalidID(w http.ResponseWriter, name string) {
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{name: "invalid_id"})
}

// callerID returns the authenticated client. Routes are wrapped in
// auth.RequireAuth, so a missing identity only happens on misrouting.
func callerID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := auth.ClientIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication_required", nil)
	}
	return id, ok
}
