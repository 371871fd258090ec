package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/services"
	"github.com/yungbote/sprout-backend/internal/types"
)

const (
	SessionCookieName = "sprout_session"
	DemoCookieName    = "sprout_demo"

	authStatusKey = "authStatus"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(baseLog *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		log:         baseLog.With("middleware", "AuthMiddleware"),
		authService: authService,
	}
}

// ResolveMode classifies every request from its cookies and stashes the
// result on the gin context. It never rejects; route guards do that.
func (am *AuthMiddleware) ResolveMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := c.Cookie(SessionCookieName)
		demo, _ := c.Cookie(DemoCookieName)
		c.Set(authStatusKey, am.authService.Mode(session, demo))
		c.Next()
	}
}

// RequireMode rejects requests that are neither authenticated nor in demo
// mode.
func (am *AuthMiddleware) RequireMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := AuthStatus(c)
		if status.Mode == types.AuthModeUnauthenticated {
			response.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED",
				fmt.Errorf("please login or continue in demo mode"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everything but an authenticated admin session.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := AuthStatus(c)
		if !status.IsAuthenticated {
			response.RespondError(c, http.StatusForbidden, "FORBIDDEN",
				fmt.Errorf("only the authenticated admin can perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthStatus returns the mode ResolveMode stored for this request.
func AuthStatus(c *gin.Context) types.AuthStatus {
	if v, ok := c.Get(authStatusKey); ok {
		if status, ok := v.(types.AuthStatus); ok {
			return status
		}
	}
	return types.AuthStatus{Mode: types.AuthModeUnauthenticated}
}
