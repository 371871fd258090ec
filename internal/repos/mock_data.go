package repos

import "github.com/yungbote/sprout-backend/internal/types"

// Demo-mode seed data. Every mock store copies what it needs at construction
// so tests and concurrent demo sessions never share mutable state.

func DefaultMockProfile() types.ChildProfile {
	return types.ChildProfile{
		Name:      "Yumi",
		BirthDate: "2024-11-01",
		Milestones: []string{
			"Rolling over",
			"Sitting unassisted",
			"Crawling",
		},
		ActiveSchemas: []string{
			"Transporting",
			"Trajectory",
		},
		Interests: []string{
			"Water play",
			"Stacking cups",
			"Picture books",
		},
	}
}

func DefaultMockLogEntries() []types.DailyLogEntry {
	return []types.DailyLogEntry{
		{
			ID:         "1001",
			TimeLabel:  "2 hours ago",
			Entry:      "Spent a long time dropping blocks into the big bucket, then tipping it over and starting again. Laughed every single time.",
			CreatedAt:  "2026-08-30T07:40:00Z",
			StorageKey: "MOCK#1001",
		},
		{
			ID:         "1002",
			TimeLabel:  "1 day ago",
			Entry:      "Bath time was the highlight today. She kept pouring water from the small cup into the big one and watching it overflow.",
			CreatedAt:  "2026-08-29T18:15:00Z",
			StorageKey: "MOCK#1002",
		},
		{
			ID:         "1003",
			TimeLabel:  "3 days ago",
			Entry:      "Pulled herself up on the couch and stood for a few seconds before sitting back down. First time!",
			CreatedAt:  "2026-08-27T09:05:00Z",
			StorageKey: "MOCK#1003",
		},
	}
}

const defaultMockPlanMarkdown = `# Weekly Plan

## Focus: pouring and container play

### Morning
- **Water station**: two cups and a shallow tub. Let her lead; narrate the pouring.
- **Stacking practice**: offer the cups nested, then scattered.

### Afternoon
- **Book corner**: picture books with flaps; pause and let her turn pages.
- **Couch cruising**: clear a safe path along the couch edge.

## Watch for
- Standing without support for longer stretches.
- Combining schemas: transporting water between rooms.
`
