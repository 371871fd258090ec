package types

type ChildProfile struct {
	Name          string   `json:"name"`
	BirthDate     string   `json:"birthDate"`
	AgeMonths     int      `json:"ageMonths"`
	Milestones    []string `json:"milestones"`
	ActiveSchemas []string `json:"activeSchemas"`
	Interests     []string `json:"interests"`
}

// ProfileField names the three list-valued profile fields that candidate
// extraction and single-value removal operate on.
type ProfileField string

const (
	ProfileFieldMilestones    ProfileField = "milestones"
	ProfileFieldActiveSchemas ProfileField = "activeSchemas"
	ProfileFieldInterests     ProfileField = "interests"
)

func (f ProfileField) Valid() bool {
	switch f {
	case ProfileFieldMilestones, ProfileFieldActiveSchemas, ProfileFieldInterests:
		return true
	default:
		return false
	}
}
