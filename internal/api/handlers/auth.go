package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rohits-web03/sharelink/internal/api/middleware"
	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
)

type loginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// POST /api/v1/auth/login
// Login godoc
// @Summary Admin login
// @Description Checks the admin password and sets the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Admin password"
// @Success 200 {object} utils.Payload "Login successful"
// @Failure 400 {object} utils.Payload "Invalid input or auth disabled"
// @Failure 401 {object} utils.Payload "Invalid credentials"
// @Failure 429 {object} utils.Payload "Too many attempts"
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := h.decodeJSON(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, expiration, err := h.sessions.Login(input.Password)
	if err != nil {
		h.audit(r, services.AuditEvent{
			Type: services.EventAuthentication, Actor: "admin", ResourceType: "session", Action: "login",
		})
		if errors.Is(err, common.ErrUnauthorized) {
			utils.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventAuthentication, Actor: "admin", ResourceType: "session", Action: "login", Success: true,
	})

	isProd := h.cfg.IsProduction()
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteStrictMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiration).Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})

	utils.OK(w, http.StatusOK, "Login successful", map[string]any{
		"expiresAt": expiration.UTC(),
	})
}

// POST /api/v1/auth/logout
// Logout godoc
// @Summary Admin logout
// @Description Clears the session cookie.
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload "Logged out successfully"
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.audit(r, services.AuditEvent{
		Type: services.EventAuthentication, Actor: "admin", ResourceType: "session", Action: "logout", Success: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.OK(w, http.StatusOK, "Logged out successfully", nil)
}

// GET /api/v1/auth/status
// AuthStatus godoc
// @Summary Session status
// @Description Reports whether authentication is enabled and whether the caller holds a valid session.
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload "Status"
// @Router /api/v1/auth/status [get]
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	if h.sessions.Enabled() {
		_, authenticated = middleware.Authenticate(r, h.sessions)
	}
	utils.OK(w, http.StatusOK, "Status", map[string]bool{
		"authEnabled":   h.sessions.Enabled(),
		"authenticated": authenticated,
	})
}
