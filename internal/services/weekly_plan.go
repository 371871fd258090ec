package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
	"github.com/yungbote/sprout-backend/internal/types"
)

const (
	planInvokeFailedMessage = "Weekly plan generation could not be started"
	planTimeoutMessage      = "Weekly plan generation timed out"
)

type WeeklyPlanService interface {
	// Get reconciles the job record, then returns the selected plan markdown
	// alongside the available outputs and current job state.
	Get(ctx context.Context, childID, objectKey string, demo bool) (*types.WeeklyPlanPayload, error)
	// StartGeneration transitions the job to in_progress and triggers the
	// worker. A job already running surfaces as a 409 conflict.
	StartGeneration(ctx context.Context, childID string, demo bool) (types.WeeklyPlanJob, error)
	// SyncJobStatus is the idempotent reconciliation step, safe on every poll.
	SyncJobStatus(ctx context.Context, childID string, demo bool) (types.WeeklyPlanJob, error)
	DeleteOutput(ctx context.Context, childID, objectKey string, demo bool) error
}

type weeklyPlanService struct {
	log        *logger.Logger
	selector   *repos.Selector
	invoker    PlanWorkerInvoker
	jobTimeout time.Duration
	now        func() time.Time
}

func NewWeeklyPlanService(baseLog *logger.Logger, selector *repos.Selector, invoker PlanWorkerInvoker, jobTimeout time.Duration) WeeklyPlanService {
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}
	return &weeklyPlanService{
		log:        baseLog.With("service", "WeeklyPlanService"),
		selector:   selector,
		invoker:    invoker,
		jobTimeout: jobTimeout,
		now:        time.Now,
	}
}

func (s *weeklyPlanService) Get(ctx context.Context, childID, objectKey string, demo bool) (*types.WeeklyPlanPayload, error) {
	set := s.selector.For(demo)

	if _, err := s.syncJobStatus(ctx, set, childID); err != nil {
		return nil, err
	}

	var (
		plans []types.WeeklyPlanListItem
		job   types.WeeklyPlanJob
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		plans, err = set.WeeklyPlan.ListPlans(groupCtx, childID)
		return err
	})
	group.Go(func() error {
		var err error
		job, err = set.WeeklyPlan.GetPlanJob(groupCtx, childID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("load weekly plan state: %w", err)
	}

	selected := selectPlanKey(plans, objectKey)
	payload := &types.WeeklyPlanPayload{
		ChildID:           childID,
		SelectedObjectKey: selected,
		AvailablePlans:    plans,
		PlanJob:           job,
		Source:            s.selector.Mode(),
	}
	if selected == "" {
		return payload, nil
	}

	markdown, err := set.WeeklyPlan.ReadMarkdown(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("read weekly plan markdown: %w", err)
	}
	payload.Markdown = markdown
	return payload, nil
}

func (s *weeklyPlanService) StartGeneration(ctx context.Context, childID string, demo bool) (types.WeeklyPlanJob, error) {
	set := s.selector.For(demo)
	startedAt := s.now().UTC().Format(time.RFC3339)

	job, err := set.WeeklyPlan.PutPlanJobInProgress(ctx, childID, startedAt)
	if errors.Is(err, repos.ErrPlanJobInProgress) {
		return types.WeeklyPlanJob{}, apierr.Conflict("PLAN_ALREADY_IN_PROGRESS", err)
	}
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("start weekly plan job: %w", err)
	}

	if err := s.invoker.Invoke(ctx, childID, "api"); err != nil {
		s.log.Error("plan worker invocation failed", "child_id", childID, "error", err)
		failedAt := s.now().UTC().Format(time.RFC3339)
		if failed, markErr := set.WeeklyPlan.PutPlanJobFailed(ctx, childID, failedAt, planInvokeFailedMessage); markErr == nil {
			job = failed
		} else {
			s.log.Error("marking plan job failed after invoke error", "child_id", childID, "error", markErr)
		}
		return job, fmt.Errorf("%s: %w", planInvokeFailedMessage, err)
	}

	return job, nil
}

func (s *weeklyPlanService) SyncJobStatus(ctx context.Context, childID string, demo bool) (types.WeeklyPlanJob, error) {
	return s.syncJobStatus(ctx, s.selector.For(demo), childID)
}

func (s *weeklyPlanService) syncJobStatus(ctx context.Context, set repos.Set, childID string) (types.WeeklyPlanJob, error) {
	job, err := set.WeeklyPlan.GetPlanJob(ctx, childID)
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("get plan job: %w", err)
	}
	if job.Status != types.PlanJobInProgress {
		return job, nil
	}

	startedAt, err := time.Parse(time.RFC3339, job.StartedAt)
	if err != nil {
		// Without a usable start time the job can neither time out nor be
		// matched against output freshness. Leave it running.
		return job, nil
	}

	now := s.now().UTC()
	if now.Sub(startedAt) > s.jobTimeout {
		failed, err := set.WeeklyPlan.PutPlanJobFailed(ctx, childID, now.Format(time.RFC3339), planTimeoutMessage)
		if err != nil {
			return types.WeeklyPlanJob{}, fmt.Errorf("mark plan job timed out: %w", err)
		}
		return failed, nil
	}

	plans, err := set.WeeklyPlan.ListPlans(ctx, childID)
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("list plan outputs: %w", err)
	}
	if len(plans) == 0 {
		return job, nil
	}

	newest := plans[0]
	modified, err := time.Parse(time.RFC3339, newest.LastModified)
	if err != nil {
		// Unparseable output timestamp: stay in_progress rather than guess.
		return job, nil
	}
	if modified.Before(startedAt) {
		return job, nil
	}

	completed, err := set.WeeklyPlan.PutPlanJobCompleted(ctx, childID, now.Format(time.RFC3339), newest.ObjectKey)
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("mark plan job completed: %w", err)
	}
	return completed, nil
}

func (s *weeklyPlanService) DeleteOutput(ctx context.Context, childID, objectKey string, demo bool) error {
	err := s.selector.For(demo).WeeklyPlan.DeletePlanObject(ctx, childID, objectKey)
	if errors.Is(err, repos.ErrPlanKeyMismatch) {
		return apierr.Validation(err)
	}
	if err != nil {
		return fmt.Errorf("delete weekly plan output: %w", err)
	}
	return nil
}

func selectPlanKey(plans []types.WeeklyPlanListItem, requested string) string {
	if requested != "" {
		for _, plan := range plans {
			if plan.ObjectKey == requested {
				return requested
			}
		}
	}
	if len(plans) > 0 {
		return plans[0].ObjectKey
	}
	return ""
}
