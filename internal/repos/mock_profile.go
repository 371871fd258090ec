package repos

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/sprout-backend/internal/normalize"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/timeutil"
	"github.com/yungbote/sprout-backend/internal/types"
)

type MockProfileRepo struct {
	mu      sync.Mutex
	log     *logger.Logger
	profile types.ChildProfile
	now     func() time.Time
}

func NewMockProfileRepo(baseLog *logger.Logger, seed types.ChildProfile) *MockProfileRepo {
	return &MockProfileRepo{
		log:     baseLog.With("repo", "MockProfileRepo"),
		profile: cloneProfile(seed),
		now:     time.Now,
	}
}

func (r *MockProfileRepo) GetProfile(ctx context.Context, childID string) (*types.ChildProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(childID), nil
}

func (r *MockProfileRepo) MergeCandidates(ctx context.Context, input MergeCandidatesInput) (*types.ChildProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile.Milestones = normalize.MergeUnique(r.profile.Milestones, input.Milestones)
	r.profile.ActiveSchemas = normalize.MergeUnique(r.profile.ActiveSchemas, input.ActiveSchemas)
	r.profile.Interests = normalize.MergeUnique(r.profile.Interests, input.Interests)

	return r.snapshot(input.ChildID), nil
}

func (r *MockProfileRepo) RemoveValue(ctx context.Context, childID string, field types.ProfileField, value string) (*types.ChildProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch field {
	case types.ProfileFieldMilestones:
		r.profile.Milestones = normalize.RemoveValue(r.profile.Milestones, value)
	case types.ProfileFieldActiveSchemas:
		r.profile.ActiveSchemas = normalize.RemoveValue(r.profile.ActiveSchemas, value)
	case types.ProfileFieldInterests:
		r.profile.Interests = normalize.RemoveValue(r.profile.Interests, value)
	}

	return r.snapshot(childID), nil
}

// snapshot returns a copy so callers never alias the guarded state.
// Callers must hold r.mu.
func (r *MockProfileRepo) snapshot(childID string) *types.ChildProfile {
	now := r.now()
	out := cloneProfile(r.profile)
	if out.Name == "" {
		out.Name = childID
	}
	if out.BirthDate == "" {
		out.BirthDate = timeutil.ApproxBirthDate(0, now)
	}
	out.AgeMonths = timeutil.AgeMonths(out.BirthDate, now)
	return &out
}

func cloneProfile(p types.ChildProfile) types.ChildProfile {
	out := p
	out.Milestones = append([]string(nil), p.Milestones...)
	out.ActiveSchemas = append([]string(nil), p.ActiveSchemas...)
	out.Interests = append([]string(nil), p.Interests...)
	return out
}
