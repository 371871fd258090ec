package repos

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/types"
)

type MockDailyLogRepo struct {
	mu   sync.Mutex
	log  *logger.Logger
	logs []types.DailyLogEntry
	now  func() time.Time
}

func NewMockDailyLogRepo(baseLog *logger.Logger, seed []types.DailyLogEntry) *MockDailyLogRepo {
	return &MockDailyLogRepo{
		log:  baseLog.With("repo", "MockDailyLogRepo"),
		logs: append([]types.DailyLogEntry(nil), seed...),
		now:  time.Now,
	}
}

// List pages through the in-memory slice with a numeric offset cursor.
func (r *MockDailyLogRepo) List(ctx context.Context, input ListDailyLogsInput) (*ListDailyLogsOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset := 0
	if input.Cursor != "" {
		if parsed, err := strconv.Atoi(input.Cursor); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	if offset > len(r.logs) {
		offset = len(r.logs)
	}

	end := offset + input.Limit
	if end > len(r.logs) {
		end = len(r.logs)
	}

	out := &ListDailyLogsOutput{
		Items: append([]types.DailyLogEntry(nil), r.logs[offset:end]...),
	}
	if end < len(r.logs) {
		out.NextCursor = strconv.Itoa(end)
	}
	return out, nil
}

func (r *MockDailyLogRepo) Create(ctx context.Context, input CreateDailyLogInput) (*types.DailyLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	entry := types.DailyLogEntry{
		ID:            id,
		TimeLabel:     "Just now",
		Entry:         input.RawText,
		CreatedAt:     r.now().UTC().Format(time.RFC3339),
		StorageKey:    "MOCK#" + id,
		PlanReference: input.PlanReference,
	}

	r.logs = append([]types.DailyLogEntry{entry}, r.logs...)
	return &entry, nil
}

func (r *MockDailyLogRepo) UpdateNote(ctx context.Context, childID, storageKey, rawText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.logs {
		if r.logs[i].StorageKey == storageKey {
			r.logs[i].Entry = rawText
			return nil
		}
	}
	return nil
}

func (r *MockDailyLogRepo) SaveAppliedUpdates(ctx context.Context, childID, storageKey string, updates types.AppliedProfileUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.logs {
		if r.logs[i].StorageKey == storageKey {
			saved := updates
			r.logs[i].AppliedProfileUpdates = &saved
			return nil
		}
	}
	// Missing entry: acceptance still succeeded, only provenance is lost.
	return nil
}

func (r *MockDailyLogRepo) Delete(ctx context.Context, childID, storageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.logs {
		if r.logs[i].StorageKey == storageKey {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return nil
}
