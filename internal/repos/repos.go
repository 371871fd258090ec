// Package repos defines the storage boundary of the service. Each repository
// has a mock in-memory implementation seeded at construction and an AWS-backed
// implementation (DynamoDB for documents, S3 for plan outputs); the Selector
// picks one per request based on the configured data mode and the caller's
// demo flag.
package repos

import (
	"context"
	"errors"

	"github.com/yungbote/sprout-backend/internal/types"
)

// ErrPlanJobInProgress is the distinct signal for the job-start conditional
// write losing to a job that is already running. Handlers map it to 409.
var ErrPlanJobInProgress = errors.New("a weekly plan is already being generated for this child")

// ErrPlanKeyMismatch rejects plan object keys outside the child's prefix.
var ErrPlanKeyMismatch = errors.New("weekly plan key does not belong to the selected child")

type MergeCandidatesInput struct {
	ChildID       string
	Milestones    []string
	ActiveSchemas []string
	Interests     []string
}

type ProfileRepo interface {
	GetProfile(ctx context.Context, childID string) (*types.ChildProfile, error)
	// MergeCandidates folds the given values into the stored profile with
	// case/whitespace-insensitive dedup and returns the merged profile.
	MergeCandidates(ctx context.Context, input MergeCandidatesInput) (*types.ChildProfile, error)
	// RemoveValue drops every stored value normalized-equal to value from the
	// given field and returns the updated profile.
	RemoveValue(ctx context.Context, childID string, field types.ProfileField, value string) (*types.ChildProfile, error)
}

type ListDailyLogsInput struct {
	ChildID string
	Limit   int
	Cursor  string
}

type ListDailyLogsOutput struct {
	Items      []types.DailyLogEntry
	NextCursor string
}

type CreateDailyLogInput struct {
	ChildID       string
	RawText       string
	PlanReference *types.PlanReference
	Extraction    *types.DailyLogExtractionResult
}

type DailyLogRepo interface {
	List(ctx context.Context, input ListDailyLogsInput) (*ListDailyLogsOutput, error)
	Create(ctx context.Context, input CreateDailyLogInput) (*types.DailyLogEntry, error)
	UpdateNote(ctx context.Context, childID, storageKey, rawText string) error
	// SaveAppliedUpdates annotates the log entry identified by storageKey.
	// A missing entry is not an error; the annotation is simply dropped.
	SaveAppliedUpdates(ctx context.Context, childID, storageKey string, updates types.AppliedProfileUpdates) error
	Delete(ctx context.Context, childID, storageKey string) error
}

type WeeklyPlanRepo interface {
	// ListPlans returns the child's plan outputs newest first.
	ListPlans(ctx context.Context, childID string) ([]types.WeeklyPlanListItem, error)
	ReadMarkdown(ctx context.Context, objectKey string) (string, error)
	DeletePlanObject(ctx context.Context, childID, objectKey string) error

	GetPlanJob(ctx context.Context, childID string) (types.WeeklyPlanJob, error)
	// PutPlanJobInProgress is the one conditional write in the system: it
	// fails with ErrPlanJobInProgress instead of overwriting a running job.
	PutPlanJobInProgress(ctx context.Context, childID, startedAt string) (types.WeeklyPlanJob, error)
	PutPlanJobCompleted(ctx context.Context, childID, completedAt, outputObjectKey string) (types.WeeklyPlanJob, error)
	PutPlanJobFailed(ctx context.Context, childID, failedAt, errorMessage string) (types.WeeklyPlanJob, error)
}
