package repos

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/types"
)

type mockPlanObject struct {
	markdown     string
	lastModified time.Time
}

type MockWeeklyPlanRepo struct {
	mu      sync.Mutex
	log     *logger.Logger
	prefix  string
	objects map[string]mockPlanObject
	jobs    map[string]types.WeeklyPlanJob
	now     func() time.Time
}

func NewMockWeeklyPlanRepo(baseLog *logger.Logger, planPrefix string) *MockWeeklyPlanRepo {
	return &MockWeeklyPlanRepo{
		log:     baseLog.With("repo", "MockWeeklyPlanRepo"),
		prefix:  strings.Trim(planPrefix, "/"),
		objects: make(map[string]mockPlanObject),
		jobs:    make(map[string]types.WeeklyPlanJob),
		now:     time.Now,
	}
}

// SeedDefaultPlan installs the bundled demo plan for a child, dated now.
func (r *MockWeeklyPlanRepo) SeedDefaultPlan(childID string) {
	r.PutPlanObject(childID, "weekly-plan.md", defaultMockPlanMarkdown, r.now())
}

// PutPlanObject stores a plan output the way the generation worker would.
// The mock invoker uses it to simulate worker completion.
func (r *MockWeeklyPlanRepo) PutPlanObject(childID, name, markdown string, lastModified time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.childPrefix(childID) + name
	r.objects[key] = mockPlanObject{markdown: markdown, lastModified: lastModified}
	return key
}

func (r *MockWeeklyPlanRepo) ListPlans(ctx context.Context, childID string) ([]types.WeeklyPlanListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.childPrefix(childID)
	items := make([]types.WeeklyPlanListItem, 0, len(r.objects))
	modified := make(map[string]time.Time, len(r.objects))
	for key, obj := range r.objects {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(strings.ToLower(key), ".md") {
			continue
		}
		items = append(items, types.WeeklyPlanListItem{
			ObjectKey:    key,
			DisplayName:  path.Base(key),
			LastModified: obj.lastModified.UTC().Format(time.RFC3339),
		})
		modified[key] = obj.lastModified
	}
	sort.Slice(items, func(i, j int) bool {
		return modified[items[i].ObjectKey].After(modified[items[j].ObjectKey])
	})
	return items, nil
}

func (r *MockWeeklyPlanRepo) ReadMarkdown(ctx context.Context, objectKey string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objects[objectKey]
	if !ok {
		return "", fmt.Errorf("plan object %q not found", objectKey)
	}
	return obj.markdown, nil
}

func (r *MockWeeklyPlanRepo) DeletePlanObject(ctx context.Context, childID, objectKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !strings.HasPrefix(objectKey, r.childPrefix(childID)) {
		return ErrPlanKeyMismatch
	}
	delete(r.objects, objectKey)
	return nil
}

func (r *MockWeeklyPlanRepo) GetPlanJob(ctx context.Context, childID string) (types.WeeklyPlanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[childID]
	if !ok {
		return types.IdlePlanJob(childID), nil
	}
	return job, nil
}

func (r *MockWeeklyPlanRepo) PutPlanJobInProgress(ctx context.Context, childID, startedAt string) (types.WeeklyPlanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.jobs[childID]; ok && existing.Status == types.PlanJobInProgress {
		return types.WeeklyPlanJob{}, ErrPlanJobInProgress
	}
	job := types.WeeklyPlanJob{
		ChildID:   childID,
		Status:    types.PlanJobInProgress,
		StartedAt: startedAt,
	}
	r.jobs[childID] = job
	return job, nil
}

func (r *MockWeeklyPlanRepo) PutPlanJobCompleted(ctx context.Context, childID, completedAt, outputObjectKey string) (types.WeeklyPlanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.jobs[childID]
	job.ChildID = childID
	job.Status = types.PlanJobCompleted
	job.CompletedAt = completedAt
	job.FailedAt = ""
	job.OutputObjectKey = outputObjectKey
	job.ErrorMessage = ""
	r.jobs[childID] = job
	return job, nil
}

func (r *MockWeeklyPlanRepo) PutPlanJobFailed(ctx context.Context, childID, failedAt, errorMessage string) (types.WeeklyPlanJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.jobs[childID]
	job.ChildID = childID
	job.Status = types.PlanJobFailed
	job.FailedAt = failedAt
	job.ErrorMessage = errorMessage
	job.CompletedAt = ""
	job.OutputObjectKey = ""
	r.jobs[childID] = job
	return job, nil
}

func (r *MockWeeklyPlanRepo) childPrefix(childID string) string {
	if r.prefix == "" {
		return childID + "/"
	}
	return r.prefix + "/" + childID + "/"
}
