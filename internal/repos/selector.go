package repos

// Set groups the three repositories backing one storage mode.
type Set struct {
	Profile    ProfileRepo
	DailyLog   DailyLogRepo
	WeeklyPlan WeeklyPlanRepo
}

// Selector picks between the persistent AWS-backed repositories and the
// in-memory mock repositories. Demo sessions always read the mock set so a
// demo visitor can never touch real data, regardless of the configured mode.
type Selector struct {
	mock Set
	aws  Set
	mode string
}

const (
	ModeMock = "mock"
	ModeAws  = "aws"
)

func NewSelector(mode string, mock, aws Set) *Selector {
	if mode != ModeAws {
		mode = ModeMock
	}
	return &Selector{mock: mock, aws: aws, mode: mode}
}

func (s *Selector) Mode() string { return s.mode }

func (s *Selector) For(demo bool) Set {
	if demo || s.mode != ModeAws {
		return s.mock
	}
	return s.aws
}
