package services

import (
	"errors"
	"testing"
	"time"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/types"
)

func newAuthFixture(t *testing.T, secret, passcode string) AuthService {
	t.Helper()
	return NewAuthService(testLogger(t), secret, passcode, time.Hour, 24*time.Hour)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "open-sesame")

	token, ttl, err := svc.Login("open-sesame", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ttl != time.Hour {
		t.Fatalf("ttl want=1h got=%v", ttl)
	}
	if !svc.VerifySession(token) {
		t.Fatalf("issued token failed verification")
	}
}

func TestLoginRememberMeExtendsTTL(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "open-sesame")

	_, ttl, err := svc.Login("open-sesame", true)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ttl != 24*time.Hour {
		t.Fatalf("ttl want=24h got=%v", ttl)
	}
}

func TestLoginRejectsWrongPasscode(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "open-sesame")

	_, _, err := svc.Login("guess", false)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 401 || apiErr.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("want 401 INVALID_CREDENTIALS, got %v", err)
	}
}

func TestLoginWithoutSecretIsUnavailable(t *testing.T) {
	svc := newAuthFixture(t, "", "open-sesame")

	_, _, err := svc.Login("open-sesame", false)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 503 || apiErr.Code != "AUTH_DISABLED" {
		t.Fatalf("want 503 AUTH_DISABLED, got %v", err)
	}
	if svc.Enabled() {
		t.Fatalf("auth should report disabled without a secret")
	}
}

func TestLoginWithoutPasscodeIsMisconfigured(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "")

	_, _, err := svc.Login("anything", false)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "AUTH_MISCONFIGURED" {
		t.Fatalf("want AUTH_MISCONFIGURED, got %v", err)
	}
}

func TestVerifySessionRejectsForgedAndExpiredTokens(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "open-sesame")
	other := newAuthFixture(t, "other-secret", "open-sesame")

	token, _, err := other.Login("open-sesame", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if svc.VerifySession(token) {
		t.Fatalf("token signed with a different secret must not verify")
	}
	if svc.VerifySession("not.a.token") {
		t.Fatalf("garbage token must not verify")
	}

	past := NewAuthService(testLogger(t), "test-secret", "open-sesame", time.Hour, 0).(*authService)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := past.Login("open-sesame", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if svc.VerifySession(expiredToken) {
		t.Fatalf("expired token must not verify")
	}
}

func TestModeResolution(t *testing.T) {
	svc := newAuthFixture(t, "test-secret", "open-sesame")
	token, _, err := svc.Login("open-sesame", false)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	cases := []struct {
		name    string
		session string
		demo    string
		want    types.AuthMode
	}{
		{"valid session", token, "", types.AuthModeAuthenticated},
		{"session wins over demo", token, "true", types.AuthModeAuthenticated},
		{"demo cookie", "", "true", types.AuthModeDemo},
		{"nothing", "", "", types.AuthModeUnauthenticated},
		{"bad session no demo", "junk", "", types.AuthModeUnauthenticated},
		{"bad session with demo", "junk", "true", types.AuthModeDemo},
	}
	for _, tc := range cases {
		got := svc.Mode(tc.session, tc.demo)
		if got.Mode != tc.want {
			t.Fatalf("%s: mode want=%s got=%s", tc.name, tc.want, got.Mode)
		}
	}
}
