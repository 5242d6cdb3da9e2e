package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"authapi/internal/auth"
	"authapi/internal/middleware"
	"authapi/internal/models"
)

const (
	resetRequestedMessage = "If your email is registered, you will receive a password reset link shortly"
	resetCompletedMessage = "Password has been reset successfully"
	loggedOutMessage      = "Logged out successfully"
)

var errNoSession = errors.New("session middleware not installed")

type AuthHandler struct {
	svc    *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(svc *auth.Service, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, errNoSession)
		return nil, false
	}
	return s, true
}

// Register
// @Tags Auth
// @Summary Register a new user
// @Accept json
// @Produce json
// @Param body body models.RegisterRequest true "Registration"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Register(r.Context(), sess, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login
// @Tags Auth
// @Summary Log in with username and password
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Login(r.Context(), sess, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout
// @Tags Auth
// @Summary End the current session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.svc.Logout(r.Context(), sess); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, loggedOutMessage)
}

// User
// @Tags Auth
// @Summary Current user
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]interface{}
// @Router /api/user [get]
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	user, err := h.svc.CurrentUser(r.Context(), sess)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RequestPasswordReset
// @Tags Auth
// @Summary Email a password reset link
// @Accept json
// @Produce json
// @Param body body models.PasswordResetRequest true "Email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Origin = requestOrigin(r)

	if err := h.svc.RequestPasswordReset(r.Context(), req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, resetRequestedMessage)
}

// ResetPassword
// @Tags Auth
// @Summary Set a new password with a reset token
// @Accept json
// @Produce json
// @Param body body models.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, resetCompletedMessage)
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
