package services

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/types"
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies admin session tokens. The app has exactly
// one credential, a shared admin passcode; demo mode needs no credential at
// all and is resolved from its own cookie.
type AuthService interface {
	// Login validates the passcode and returns a signed session token plus
	// its TTL.
	Login(passcode string, rememberMe bool) (string, time.Duration, error)
	VerifySession(token string) bool
	// Mode classifies a request from its two cookies. A valid session wins
	// over the demo cookie.
	Mode(sessionToken, demoCookie string) types.AuthStatus
	Enabled() bool
}

type authService struct {
	log           *logger.Logger
	sessionSecret string
	adminPasscode string
	sessionTTL    time.Duration
	rememberTTL   time.Duration
	now           func() time.Time
}

func NewAuthService(baseLog *logger.Logger, sessionSecret, adminPasscode string, sessionTTL, rememberTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	return &authService{
		log:           baseLog.With("service", "AuthService"),
		sessionSecret: sessionSecret,
		adminPasscode: adminPasscode,
		sessionTTL:    sessionTTL,
		rememberTTL:   rememberTTL,
		now:           time.Now,
	}
}

func (s *authService) Enabled() bool { return s.sessionSecret != "" }

func (s *authService) Login(passcode string, rememberMe bool) (string, time.Duration, error) {
	if s.sessionSecret == "" {
		return "", 0, apierr.Unavailable("AUTH_DISABLED",
			fmt.Errorf("authentication is disabled because no session secret is configured; demo mode is still available"))
	}
	if s.adminPasscode == "" {
		return "", 0, apierr.New(http.StatusInternalServerError, "AUTH_MISCONFIGURED",
			fmt.Errorf("admin passcode is not configured"))
	}
	if subtle.ConstantTimeCompare([]byte(passcode), []byte(s.adminPasscode)) != 1 {
		return "", 0, apierr.Unauthorized("INVALID_CREDENTIALS",
			fmt.Errorf("incorrect passcode"))
	}

	ttl := s.sessionTTL
	if rememberMe {
		ttl = s.rememberTTL
	}

	now := s.now()
	claims := sessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.sessionSecret))
	if err != nil {
		return "", 0, fmt.Errorf("sign session token: %w", err)
	}
	return token, ttl, nil
}

func (s *authService) VerifySession(token string) bool {
	if s.sessionSecret == "" || token == "" {
		return false
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.sessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return false
	}
	return claims.Role == "admin"
}

func (s *authService) Mode(sessionToken, demoCookie string) types.AuthStatus {
	if s.VerifySession(sessionToken) {
		return types.AuthStatus{Mode: types.AuthModeAuthenticated, IsAuthenticated: true}
	}
	if demoCookie == "true" {
		return types.AuthStatus{Mode: types.AuthModeDemo, IsDemo: true}
	}
	return types.AuthStatus{Mode: types.AuthModeUnauthenticated}
}
