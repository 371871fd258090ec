package services

import (
	"testing"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// testRepoSet builds a mock-only selector seeded with the given profile.
func testSelector(t *testing.T, profile *repos.MockProfileRepo, dailyLogs *repos.MockDailyLogRepo, plans *repos.MockWeeklyPlanRepo) *repos.Selector {
	t.Helper()
	set := repos.Set{Profile: profile, DailyLog: dailyLogs, WeeklyPlan: plans}
	return repos.NewSelector(repos.ModeMock, set, repos.Set{})
}
