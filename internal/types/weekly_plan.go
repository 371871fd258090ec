package types

type PlanJobStatus string

const (
	PlanJobIdle       PlanJobStatus = "idle"
	PlanJobInProgress PlanJobStatus = "in_progress"
	PlanJobCompleted  PlanJobStatus = "completed"
	PlanJobFailed     PlanJobStatus = "failed"
)

func ParsePlanJobStatus(v string) PlanJobStatus {
	switch PlanJobStatus(v) {
	case PlanJobIdle, PlanJobInProgress, PlanJobCompleted, PlanJobFailed:
		return PlanJobStatus(v)
	default:
		return PlanJobIdle
	}
}

// WeeklyPlanJob is the per-child singleton record tracking one asynchronous
// plan generation. At most one job per child may be in_progress; the store
// enforces that with a conditional write.
type WeeklyPlanJob struct {
	ChildID         string        `json:"childId"`
	Status          PlanJobStatus `json:"status"`
	StartedAt       string        `json:"startedAt,omitempty"`
	CompletedAt     string        `json:"completedAt,omitempty"`
	FailedAt        string        `json:"failedAt,omitempty"`
	OutputObjectKey string        `json:"outputObjectKey,omitempty"`
	ErrorMessage    string        `json:"errorMessage,omitempty"`
}

func IdlePlanJob(childID string) WeeklyPlanJob {
	return WeeklyPlanJob{ChildID: childID, Status: PlanJobIdle}
}

type WeeklyPlanListItem struct {
	ObjectKey    string `json:"objectKey"`
	DisplayName  string `json:"displayName"`
	LastModified string `json:"lastModified,omitempty"`
}

type WeeklyPlanPayload struct {
	ChildID           string               `json:"childId"`
	SelectedObjectKey string               `json:"selectedObjectKey,omitempty"`
	AvailablePlans    []WeeklyPlanListItem `json:"availablePlans"`
	Markdown          string               `json:"markdown"`
	PlanJob           WeeklyPlanJob        `json:"planJob"`
	Source            string               `json:"source"`
}
