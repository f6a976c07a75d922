package handler

import (
	"log/slog"
	"net/http"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/handler/dto"
	"github.com/taskly/taskly/internal/service"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	svc      *service.AuthService
	sessions *auth.Sessions
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, sessions *auth.Sessions, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeMessage(w, http.StatusOK, "User registered successfully")
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", result.User.ID)

	response := dto.LoginResponse{Message: "Login successful"}
	if h.sessions.TokenInBody() {
		response.Token = result.Token
		response.ExpiresAt = &result.ExpiresAt
	} else {
		h.sessions.Deliver(w, result.Token, result.ExpiresAt)
	}
	writeJSON(w, http.StatusOK, response)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this only
// clears the client's cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.TokenInBody() {
		h.sessions.Clear(w)
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
