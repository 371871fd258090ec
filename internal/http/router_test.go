package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/sprout-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
	"github.com/yungbote/sprout-backend/internal/services"
	"github.com/yungbote/sprout-backend/internal/types"
)

type unconfiguredCompletions struct{}

func (unconfiguredCompletions) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}
func (unconfiguredCompletions) Model() string    { return "test-model" }
func (unconfiguredCompletions) Configured() bool { return false }

type testEnv struct {
	router *gin.Engine
	plans  *repos.MockWeeklyPlanRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	profileRepo := repos.NewMockProfileRepo(log, repos.DefaultMockProfile())
	dailyLogRepo := repos.NewMockDailyLogRepo(log, repos.DefaultMockLogEntries())
	planRepo := repos.NewMockWeeklyPlanRepo(log, "plans")
	planRepo.SeedDefaultPlan("Yumi")

	set := repos.Set{Profile: profileRepo, DailyLog: dailyLogRepo, WeeklyPlan: planRepo}
	selector := repos.NewSelector(repos.ModeMock, set, repos.Set{})

	authService := services.NewAuthService(log, "test-secret", "open-sesame", time.Hour, 24*time.Hour)
	extraction := services.NewExtractionService(log, unconfiguredCompletions{}, 0)
	dailyLogService := services.NewDailyLogService(log, selector, extraction)
	profileService := services.NewProfileService(log, selector)
	invoker := services.NewMockPlanInvoker(log, planRepo, 0)
	weeklyPlanService := services.NewWeeklyPlanService(log, selector, invoker, 10*time.Minute)

	router := NewRouter(RouterConfig{
		AuthHandler:       httpH.NewAuthHandler(authService, false),
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, authService),
		DailyLogHandler:   httpH.NewDailyLogHandler(dailyLogService),
		ProfileHandler:    httpH.NewProfileHandler(profileService),
		WeeklyPlanHandler: httpH.NewWeeklyPlanHandler(weeklyPlanService),
		HealthHandler:     httpH.NewHealthHandler(),
	})
	return &testEnv{router: router, plans: planRepo}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"passcode":"open-sesame"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == httpMW.SessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("login response did not set a session cookie")
	return nil
}

func demoCookie() *http.Cookie {
	return &http.Cookie{Name: httpMW.DemoCookieName, Value: "true"}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		NextCursor string `json:"nextCursor"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	return env
}

func TestHealthcheck(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDailyLogsRequireSessionOrDemo(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/daily-logs", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status want=401 got=%d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	if got.Error == nil || got.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("error code want=UNAUTHORIZED got=%+v", got.Error)
	}
}

func TestDailyLogsListInDemoMode(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/daily-logs?limit=2", "", demoCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)

	var items []types.DailyLogEntry
	if err := json.Unmarshal(got.Data, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items want=2 got=%d", len(items))
	}
	if got.Meta == nil || got.Meta.NextCursor == "" {
		t.Fatalf("want pagination cursor, got meta=%+v", got.Meta)
	}
}

func TestDailyLogsRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/daily-logs?limit=999", "", demoCookie())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status want=400 got=%d", rec.Code)
	}
}

func TestCreateDailyLogReturnsFallbackCandidates(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/daily-logs",
		`{"rawText":"stacked blocks all afternoon"}`, demoCookie())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)

	var created services.CreateDailyLogResult
	if err := json.Unmarshal(got.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ExtractionSource != types.ExtractionSourceFallback {
		t.Fatalf("extraction source want=fallback got=%s", created.ExtractionSource)
	}
	if created.Log.Entry != "stacked blocks all afternoon" {
		t.Fatalf("entry got=%q", created.Log.Entry)
	}
}

func TestCreateDailyLogValidatesRawText(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/daily-logs", `{"rawText":"   "}`, demoCookie())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status want=400 got=%d", rec.Code)
	}
}

func TestAcceptCandidatesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPatch, "/api/v1/daily-logs",
		`{"storageKey":"MOCK#1001","milestones":["Standing with support"]}`, demoCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)

	var result services.AcceptCandidatesResult
	if err := json.Unmarshal(got.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.AppliedProfileUpdates.Milestones) != 1 {
		t.Fatalf("applied milestones got=%v", result.AppliedProfileUpdates.Milestones)
	}
}

func TestWeeklyPlanGenerateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/weekly-plan",
		`{"action":"generate"}`, demoCookie())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demo generate status want=403 got=%d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	if got.Error == nil || got.Error.Code != "FORBIDDEN" {
		t.Fatalf("error code want=FORBIDDEN got=%+v", got.Error)
	}
}

func TestWeeklyPlanGenerateConflict(t *testing.T) {
	env := newTestEnv(t)
	session := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/weekly-plan", `{"action":"generate"}`, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("first generate status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/weekly-plan", `{"action":"generate"}`, session)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second generate status want=409 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)
	if got.Error == nil || got.Error.Code != "PLAN_ALREADY_IN_PROGRESS" {
		t.Fatalf("error code want=PLAN_ALREADY_IN_PROGRESS got=%+v", got.Error)
	}
}

func TestWeeklyPlanGetReturnsSeededPlan(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/weekly-plan", "", demoCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)

	var payload types.WeeklyPlanPayload
	if err := json.Unmarshal(got.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.SelectedObjectKey == "" || payload.Markdown == "" {
		t.Fatalf("seeded plan should be selected, got %+v", payload)
	}
	if payload.PlanJob.Status != types.PlanJobIdle {
		t.Fatalf("job status want=idle got=%s", payload.PlanJob.Status)
	}
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/profile", "", demoCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile status want=200 got=%d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	var profile types.ChildProfile
	if err := json.Unmarshal(got.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Name == "" {
		t.Fatalf("seeded profile missing name: %+v", profile)
	}

	// Demo sessions cannot edit the profile directly.
	rec = env.do(t, http.MethodPatch, "/api/v1/profile",
		`{"milestones":["Clapping"]}`, demoCookie())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demo profile patch status want=403 got=%d", rec.Code)
	}

	session := env.login(t)
	rec = env.do(t, http.MethodPatch, "/api/v1/profile",
		`{"milestones":["Clapping"]}`, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin profile patch status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/profile",
		`{"field":"milestones","value":"clapping"}`, session)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile delete status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	got = decodeEnvelope(t, rec)
	if err := json.Unmarshal(got.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	for _, m := range profile.Milestones {
		if m == "Clapping" {
			t.Fatalf("value should have been removed, milestones=%v", profile.Milestones)
		}
	}
}

func TestAuthStatusReflectsCookies(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/status", "")
	got := decodeEnvelope(t, rec)
	var status types.AuthStatus
	if err := json.Unmarshal(got.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Mode != types.AuthModeUnauthenticated {
		t.Fatalf("mode want=unauthenticated got=%s", status.Mode)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/status", "", demoCookie())
	got = decodeEnvelope(t, rec)
	if err := json.Unmarshal(got.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Mode != types.AuthModeDemo || !status.IsDemo {
		t.Fatalf("mode want=demo got=%+v", status)
	}

	session := env.login(t)
	rec = env.do(t, http.MethodGet, "/api/auth/status", "", session)
	got = decodeEnvelope(t, rec)
	if err := json.Unmarshal(got.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Mode != types.AuthModeAuthenticated || !status.IsAuthenticated {
		t.Fatalf("mode want=authenticated got=%+v", status)
	}
}

func TestLoginRejectsWrongPasscode(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", `{"passcode":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status want=401 got=%d", rec.Code)
	}
	got := decodeEnvelope(t, rec)
	if got.Error == nil || got.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("error code want=INVALID_CREDENTIALS got=%+v", got.Error)
	}
}
