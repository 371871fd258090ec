package types

type ProfileCandidateItem struct {
	Value      string  `json:"value"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type ProfileUpdateCandidates struct {
	Milestones    []ProfileCandidateItem `json:"milestones"`
	ActiveSchemas []ProfileCandidateItem `json:"activeSchemas"`
	Interests     []ProfileCandidateItem `json:"interests"`
}

func EmptyCandidates() ProfileUpdateCandidates {
	return ProfileUpdateCandidates{
		Milestones:    []ProfileCandidateItem{},
		ActiveSchemas: []ProfileCandidateItem{},
		Interests:     []ProfileCandidateItem{},
	}
}

type DailyLogStructuredInsights struct {
	KeyTakeaways []string `json:"keyTakeaways"`
	Sentiment    string   `json:"sentiment"`
}

type ExtractionSource string

const (
	ExtractionSourceOpenRouter ExtractionSource = "openrouter"
	ExtractionSourceFallback   ExtractionSource = "fallback"
)

type DailyLogExtractionResult struct {
	StructuredLog     DailyLogStructuredInsights `json:"structuredLog"`
	ProfileCandidates ProfileUpdateCandidates    `json:"profileCandidates"`
	Model             string                     `json:"model"`
	Source            ExtractionSource           `json:"source"`
}

type AppliedProfileUpdates struct {
	Milestones    []string `json:"milestones"`
	ActiveSchemas []string `json:"activeSchemas"`
	Interests     []string `json:"interests"`
}

func (u AppliedProfileUpdates) IsEmpty() bool {
	return len(u.Milestones) == 0 && len(u.ActiveSchemas) == 0 && len(u.Interests) == 0
}

// PlanReference points a daily log at the weekly-plan passage it was written
// about. Label and snippet are denormalized so the log still renders after the
// source plan object is deleted.
type PlanReference struct {
	PlanObjectKey            string `json:"planObjectKey"`
	SectionTitle             string `json:"sectionTitle"`
	SubsectionTitle          string `json:"subsectionTitle,omitempty"`
	ReferenceLabel           string `json:"referenceLabel"`
	ReferenceSnippet         string `json:"referenceSnippet"`
	ReferenceContentMarkdown string `json:"referenceContentMarkdown,omitempty"`
}

type DailyLogEntry struct {
	ID                    string                 `json:"id"`
	TimeLabel             string                 `json:"timeLabel"`
	Entry                 string                 `json:"entry"`
	CreatedAt             string                 `json:"createdAt,omitempty"`
	StorageKey            string                 `json:"storageKey,omitempty"`
	PlanReference         *PlanReference         `json:"planReference,omitempty"`
	AppliedProfileUpdates *AppliedProfileUpdates `json:"appliedProfileUpdates,omitempty"`
}
