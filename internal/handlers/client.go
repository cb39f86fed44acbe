package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/services"
)

// ClientHandler serves the caller's own account.
type ClientHandler struct {
	clients *services.ClientService
	log     *zap.Logger
}

func NewClientHandler(clients *services.ClientService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, log: log}
}

// Profile handles GET /api/clients/profile.
func (h *ClientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

type profileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UpdateProfile handles PUT /api/clients/profile.
func (h *ClientHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	client, err := h.clients.UpdateProfile(r.Context(), id, services.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Profil mis à jour",
		"client":  client,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles PUT /api/clients/change-password.
func (h *ClientHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	err := h.clients.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, services.ErrAuth):
		// the caller is authenticated already, report the field instead of a 401
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"currentPassword": "incorrect"})
		return
	case err != nil:
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Mot de passe changé avec succès"})
}
