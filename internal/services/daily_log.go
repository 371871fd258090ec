package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/sprout-backend/internal/normalize"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
	"github.com/yungbote/sprout-backend/internal/timeutil"
	"github.com/yungbote/sprout-backend/internal/types"
)

type ListDailyLogsResult struct {
	Items      []types.DailyLogEntry
	NextCursor string
}

type CreateDailyLogResult struct {
	Log               types.DailyLogEntry           `json:"log"`
	ProfileCandidates types.ProfileUpdateCandidates `json:"profileCandidates"`
	ExtractionSource  types.ExtractionSource        `json:"extractionSource"`
}

type AcceptCandidatesInput struct {
	ChildID       string
	StorageKey    string
	Milestones    []string
	ActiveSchemas []string
	Interests     []string
	Demo          bool
}

type AcceptCandidatesResult struct {
	UpdatedProfile        *types.ChildProfile         `json:"updatedProfile"`
	AppliedProfileUpdates types.AppliedProfileUpdates `json:"appliedProfileUpdates"`
}

type DailyLogService interface {
	List(ctx context.Context, childID string, limit int, cursor string, demo bool) (*ListDailyLogsResult, error)
	// Create runs extraction over the raw text and persists the entry. An
	// extraction failure degrades to the fallback result; creation proceeds.
	Create(ctx context.Context, childID, rawText string, planRef *types.PlanReference, demo bool) (*CreateDailyLogResult, error)
	UpdateNote(ctx context.Context, childID, storageKey, rawText string, demo bool) error
	// AcceptCandidates merges the user-curated candidate values into the
	// profile and annotates the originating log with what was truly new.
	AcceptCandidates(ctx context.Context, input AcceptCandidatesInput) (*AcceptCandidatesResult, error)
	Delete(ctx context.Context, childID, storageKey string, demo bool) error
}

type dailyLogService struct {
	log        *logger.Logger
	selector   *repos.Selector
	extraction ExtractionService
	now        func() time.Time
}

func NewDailyLogService(baseLog *logger.Logger, selector *repos.Selector, extraction ExtractionService) DailyLogService {
	return &dailyLogService{
		log:        baseLog.With("service", "DailyLogService"),
		selector:   selector,
		extraction: extraction,
		now:        time.Now,
	}
}

func (s *dailyLogService) List(ctx context.Context, childID string, limit int, cursor string, demo bool) (*ListDailyLogsResult, error) {
	out, err := s.selector.For(demo).DailyLog.List(ctx, repos.ListDailyLogsInput{
		ChildID: childID,
		Limit:   limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}

	now := s.now()
	items := make([]types.DailyLogEntry, len(out.Items))
	for i, item := range out.Items {
		item.TimeLabel = timeutil.RelativeLabel(item.CreatedAt, item.StorageKey, item.TimeLabel, now)
		items[i] = item
	}
	return &ListDailyLogsResult{Items: items, NextCursor: out.NextCursor}, nil
}

func (s *dailyLogService) Create(ctx context.Context, childID, rawText string, planRef *types.PlanReference, demo bool) (*CreateDailyLogResult, error) {
	set := s.selector.For(demo)

	profile, err := set.Profile.GetProfile(ctx, childID)
	if err != nil {
		// Extraction can run without profile context; creation must not fail
		// on a profile read.
		s.log.Warn("profile read before extraction failed", "child_id", childID, "error", err)
		profile = nil
	}

	extraction := s.extraction.Extract(ctx, childID, rawText, profile)

	entry, err := set.DailyLog.Create(ctx, repos.CreateDailyLogInput{
		ChildID:       childID,
		RawText:       rawText,
		PlanReference: planRef,
		Extraction:    &extraction,
	})
	if err != nil {
		return nil, fmt.Errorf("create daily log: %w", err)
	}

	created := *entry
	created.TimeLabel = timeutil.RelativeLabel(created.CreatedAt, created.StorageKey, created.TimeLabel, s.now())
	return &CreateDailyLogResult{
		Log:               created,
		ProfileCandidates: extraction.ProfileCandidates,
		ExtractionSource:  extraction.Source,
	}, nil
}

func (s *dailyLogService) UpdateNote(ctx context.Context, childID, storageKey, rawText string, demo bool) error {
	if err := s.selector.For(demo).DailyLog.UpdateNote(ctx, childID, storageKey, rawText); err != nil {
		return fmt.Errorf("update daily log note: %w", err)
	}
	return nil
}

func (s *dailyLogService) AcceptCandidates(ctx context.Context, input AcceptCandidatesInput) (*AcceptCandidatesResult, error) {
	set := s.selector.For(input.Demo)

	current, err := set.Profile.GetProfile(ctx, input.ChildID)
	if err != nil {
		return nil, fmt.Errorf("load profile for acceptance: %w", err)
	}
	if current == nil {
		current = &types.ChildProfile{}
	}

	// Diff before merging so resubmitted values never count as new again.
	applied := types.AppliedProfileUpdates{
		Milestones:    normalize.DiffNew(current.Milestones, input.Milestones),
		ActiveSchemas: normalize.DiffNew(current.ActiveSchemas, input.ActiveSchemas),
		Interests:     normalize.DiffNew(current.Interests, input.Interests),
	}

	updated, err := set.Profile.MergeCandidates(ctx, repos.MergeCandidatesInput{
		ChildID:       input.ChildID,
		Milestones:    input.Milestones,
		ActiveSchemas: input.ActiveSchemas,
		Interests:     input.Interests,
	})
	if err != nil {
		return nil, fmt.Errorf("merge accepted candidates: %w", err)
	}

	// Annotation comes last: a merge failure above must not leave provenance
	// pointing at profile changes that never landed.
	if err := set.DailyLog.SaveAppliedUpdates(ctx, input.ChildID, input.StorageKey, applied); err != nil {
		return nil, fmt.Errorf("annotate applied updates: %w", err)
	}

	return &AcceptCandidatesResult{UpdatedProfile: updated, AppliedProfileUpdates: applied}, nil
}

func (s *dailyLogService) Delete(ctx context.Context, childID, storageKey string, demo bool) error {
	if err := s.selector.For(demo).DailyLog.Delete(ctx, childID, storageKey); err != nil {
		return fmt.Errorf("delete daily log: %w", err)
	}
	return nil
}
