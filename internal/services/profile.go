package services

import (
	"context"
	"fmt"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
	"github.com/yungbote/sprout-backend/internal/types"
)

type ProfileService interface {
	Get(ctx context.Context, childID string, demo bool) (*types.ChildProfile, error)
	// MergeCandidates folds accepted values into the stored profile and
	// returns the merged result.
	MergeCandidates(ctx context.Context, input MergeProfileInput) (*types.ChildProfile, error)
	// RemoveValue drops one value (all normalized-equal occurrences) from a
	// list field.
	RemoveValue(ctx context.Context, childID string, field types.ProfileField, value string, demo bool) (*types.ChildProfile, error)
}

type MergeProfileInput struct {
	ChildID       string
	Milestones    []string
	ActiveSchemas []string
	Interests     []string
	Demo          bool
}

type profileService struct {
	log      *logger.Logger
	selector *repos.Selector
}

func NewProfileService(baseLog *logger.Logger, selector *repos.Selector) ProfileService {
	return &profileService{
		log:      baseLog.With("service", "ProfileService"),
		selector: selector,
	}
}

func (s *profileService) Get(ctx context.Context, childID string, demo bool) (*types.ChildProfile, error) {
	profile, err := s.selector.For(demo).Profile.GetProfile(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) MergeCandidates(ctx context.Context, input MergeProfileInput) (*types.ChildProfile, error) {
	profile, err := s.selector.For(input.Demo).Profile.MergeCandidates(ctx, repos.MergeCandidatesInput{
		ChildID:       input.ChildID,
		Milestones:    input.Milestones,
		ActiveSchemas: input.ActiveSchemas,
		Interests:     input.Interests,
	})
	if err != nil {
		return nil, fmt.Errorf("merge profile candidates: %w", err)
	}
	return profile, nil
}

func (s *profileService) RemoveValue(ctx context.Context, childID string, field types.ProfileField, value string, demo bool) (*types.ChildProfile, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown profile field %q", field)
	}
	profile, err := s.selector.For(demo).Profile.RemoveValue(ctx, childID, field, value)
	if err != nil {
		return nil, fmt.Errorf("remove profile value: %w", err)
	}
	return profile, nil
}
