package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/api/request"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/auth"
	"github.com/mcoot/arise-roster/internal/validation"
)

// AuthHandler handles login, logout and identity endpoints
type AuthHandler struct {
	authService   *auth.Service
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		WriteError(w, err)
		return
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	session, err := h.authService.Login(r.Context(), req.Username, req.Password, role)
	if err != nil {
		WriteError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.Token, h.authService.SessionDuration(), h.secureCookies)
	response.JSON(w, http.StatusOK, response.Login{
		Message: "Login successful",
		Role:    session.Role,
		Token:   session.Token,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Me(r.Context(), middleware.MustGetSession(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.ExtractToken(r)); err != nil {
		WriteError(w, err)
		return
	}
	middleware.ClearSessionCookie(w, h.secureCookies)
	response.JSON(w, http.StatusOK, response.Message{Message: "Logged out"})
}
