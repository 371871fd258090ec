// Package app assembles the configuration, repositories, services, and HTTP
// surface into a runnable server.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http"
	"github.com/yungbote/sprout-backend/internal/http/handlers"
	"github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/platform/awsx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/platform/openrouter"
	"github.com/yungbote/sprout-backend/internal/repos"
	"github.com/yungbote/sprout-backend/internal/services"
)

const demoChildID = "Yumi"

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Router *gin.Engine

	selector   *repos.Selector
	mockPlan   *repos.MockWeeklyPlanRepo
	awsClients *awsx.Clients

	authService       services.AuthService
	profileService    services.ProfileService
	dailyLogService   services.DailyLogService
	weeklyPlanService services.WeeklyPlanService
}

func New(log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: LoadConfig()}

	if err := a.wireRepos(); err != nil {
		return nil, err
	}
	a.wireServices()
	a.wireRouter()

	log.Info("App initialized", "dataMode", a.selector.Mode(), "addr", a.Cfg.ListenAddr)
	return a, nil
}

// wireRepos always builds the seeded in-memory set so demo mode works without
// credentials, and adds the AWS-backed set only when configured for it.
func (a *App) wireRepos() error {
	profile := repos.NewMockProfileRepo(a.Log, repos.DefaultMockProfile())
	dailyLog := repos.NewMockDailyLogRepo(a.Log, repos.DefaultMockLogEntries())
	a.mockPlan = repos.NewMockWeeklyPlanRepo(a.Log, a.Cfg.S3PlanPrefix)
	a.mockPlan.SeedDefaultPlan(demoChildID)
	mock := repos.Set{Profile: profile, DailyLog: dailyLog, WeeklyPlan: a.mockPlan}

	var aws repos.Set
	if a.Cfg.DataMode == repos.ModeAws {
		clients, err := awsx.NewClients(context.Background(), a.Log, a.Cfg.AWSRegion)
		if err != nil {
			return fmt.Errorf("wire aws repos: %w", err)
		}
		a.awsClients = clients
		aws = repos.Set{
			Profile:  repos.NewAwsProfileRepo(a.Log, clients.Dynamo, a.Cfg.DynamoTable),
			DailyLog: repos.NewAwsDailyLogRepo(a.Log, clients.Dynamo, a.Cfg.DynamoTable),
			WeeklyPlan: repos.NewAwsWeeklyPlanRepo(a.Log, clients.Dynamo, clients.S3,
				a.Cfg.DynamoTable, a.Cfg.S3PlanBucket, a.Cfg.S3PlanPrefix),
		}
	}

	a.selector = repos.NewSelector(a.Cfg.DataMode, mock, aws)
	return nil
}

func (a *App) wireServices() {
	extraction := services.NewExtractionService(a.Log, openrouter.NewClient(a.Log), a.Cfg.ExtractTimeout)

	var invoker services.PlanWorkerInvoker
	if a.Cfg.DataMode == repos.ModeAws {
		invoker = services.NewLambdaPlanInvoker(a.Log, a.awsClients.Lambda, a.Cfg.PlanWorkerFunction)
	} else {
		invoker = services.NewMockPlanInvoker(a.Log, a.mockPlan, a.Cfg.MockPlanDelay)
	}

	a.authService = services.NewAuthService(a.Log, a.Cfg.SessionSecret, a.Cfg.AdminPasscode,
		a.Cfg.SessionTTL, a.Cfg.RememberTTL)
	a.profileService = services.NewProfileService(a.Log, a.selector)
	a.dailyLogService = services.NewDailyLogService(a.Log, a.selector, extraction)
	a.weeklyPlanService = services.NewWeeklyPlanService(a.Log, a.selector, invoker, a.Cfg.PlanJobTimeout)
}

func (a *App) wireRouter() {
	a.Router = http.NewRouter(http.RouterConfig{
		AuthHandler:       handlers.NewAuthHandler(a.authService, a.Cfg.SecureCookies),
		AuthMiddleware:    middleware.NewAuthMiddleware(a.Log, a.authService),
		DailyLogHandler:   handlers.NewDailyLogHandler(a.dailyLogService),
		ProfileHandler:    handlers.NewProfileHandler(a.profileService),
		WeeklyPlanHandler: handlers.NewWeeklyPlanHandler(a.weeklyPlanService),
		HealthHandler:     handlers.NewHealthHandler(),
		CORSOrigins:       a.Cfg.CORSOrigins,
	})
}

func (a *App) Run() error {
	return a.Router.Run(a.Cfg.ListenAddr)
}

func (a *App) Close() {
	a.Log.Sync()
}
