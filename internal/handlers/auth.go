package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/internal/services"
	"github.com/diewo77/medicaments-api/validation"
)

type AuthHandler struct {
	clients  *services.ClientService
	sessions *services.SessionService
	log      *zap.Logger
}

func NewAuthHandler(clients *services.ClientService, sessions *services.SessionService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{clients: clients, sessions: sessions, log: log}
}

type registerRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ClientType string `json:"clientType"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	client, err := h.clients.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.ClientType),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("client registered", zap.Uint("client_id", client.ID), zap.String("role", string(client.Role)))
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Inscription réussie",
		"client":  client,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	session, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Connexion réussie",
		"client":  session.Client,
		"token":   session.Token,
	})
}

// Logout handles POST /api/auth/logout. The presented token stops working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication_required", nil)
		return
	}
	if err := h.sessions.Logout(r.Context(), claims); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Déconnexion réussie"})
}
