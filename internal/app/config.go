package app

import (
	"strings"
	"time"

	"github.com/yungbote/sprout-backend/internal/platform/envutil"
	"github.com/yungbote/sprout-backend/internal/repos"
)

type Config struct {
	DataMode string

	AWSRegion          string
	DynamoTable        string
	S3PlanBucket       string
	S3PlanPrefix       string
	PlanWorkerFunction string

	SessionSecret  string
	AdminPasscode  string
	SessionTTL     time.Duration
	RememberTTL    time.Duration
	SecureCookies  bool
	CORSOrigins    []string
	ListenAddr     string
	ExtractTimeout time.Duration
	PlanJobTimeout time.Duration
	MockPlanDelay  time.Duration
}

func LoadConfig() Config {
	mode := envutil.Get("DATA_MODE", repos.ModeMock)
	if mode != repos.ModeAws {
		mode = repos.ModeMock
	}

	var origins []string
	for _, origin := range strings.Split(envutil.Get("CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return Config{
		DataMode: mode,

		AWSRegion:          envutil.Get("AWS_REGION", "us-east-1"),
		DynamoTable:        envutil.Get("DYNAMODB_TABLE", "Sprout_Data"),
		S3PlanBucket:       envutil.Get("S3_WEEKLY_PLAN_BUCKET", ""),
		S3PlanPrefix:       envutil.Get("S3_WEEKLY_PLAN_PREFIX", "plans"),
		PlanWorkerFunction: envutil.Get("WEEKLY_PLAN_WORKER_FUNCTION", ""),

		SessionSecret:  envutil.Get("SESSION_SECRET", ""),
		AdminPasscode:  envutil.Get("ADMIN_PASSCODE", ""),
		SessionTTL:     time.Duration(envutil.Int("SESSION_TTL_HOURS", 12)) * time.Hour,
		RememberTTL:    time.Duration(envutil.Int("SESSION_REMEMBER_TTL_DAYS", 30)) * 24 * time.Hour,
		SecureCookies:  envutil.Get("APP_ENV", "development") == "production",
		CORSOrigins:    origins,
		ListenAddr:     ":" + envutil.Get("PORT", "8080"),
		ExtractTimeout: time.Duration(envutil.Int("EXTRACTION_TIMEOUT_SECONDS", 15)) * time.Second,
		PlanJobTimeout: time.Duration(envutil.Int("PLAN_JOB_TIMEOUT_MINUTES", 10)) * time.Minute,
		MockPlanDelay:  time.Duration(envutil.Int("MOCK_PLAN_DELAY_SECONDS", 5)) * time.Second,
	}
}
