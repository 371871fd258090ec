package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/services"
	"github.com/yungbote/sprout-backend/internal/types"
)

const demoCookieMaxAge = 365 * 24 * 60 * 60

type AuthHandler struct {
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Passcode   string `json:"passcode"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Passcode == "" {
		response.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	token, ttl, err := ah.authService.Login(req.Passcode, req.RememberMe)
	if err != nil {
		response.RespondFromError(c, err, "INTERNAL_ERROR")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(ttl.Seconds()), "/", "", ah.secureCookie, true)
	c.SetCookie(middleware.DemoCookieName, "", -1, "/", "", ah.secureCookie, true)
	response.RespondOK(c, gin.H{
		"authenticated": true,
		"mode":          types.AuthModeAuthenticated,
	})
}

// POST /api/auth/logout
//
// Logging out lands the browser back in demo mode rather than locking it out
// of the app entirely.
func (ah *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ah.secureCookie, true)
	c.SetCookie(middleware.DemoCookieName, "true", demoCookieMaxAge, "/", "", ah.secureCookie, true)
	response.RespondOK(c, gin.H{
		"authenticated": false,
		"mode":          types.AuthModeDemo,
	})
}

// POST /api/auth/demo
func (ah *AuthHandler) Demo(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.DemoCookieName, "true", demoCookieMaxAge, "/", "", ah.secureCookie, true)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", ah.secureCookie, true)
	response.RespondOK(c, gin.H{
		"authenticated": false,
		"mode":          types.AuthModeDemo,
	})
}

// GET /api/auth/status
func (ah *AuthHandler) Status(c *gin.Context) {
	response.RespondOK(c, middleware.AuthStatus(c))
}
