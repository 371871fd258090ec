// Package timeutil carries the calendar helpers shared by the profile and
// daily-log layers: child age derivation from a birth date and the relative
// display labels shown next to log entries.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const logStorageKeyPrefix = "DATE#"

// AgeMonths computes full calendar months between birthDate (YYYY-MM-DD,
// treated as UTC midnight) and now. Invalid or future dates yield 0.
func AgeMonths(birthDate string, now time.Time) int {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(birthDate))
	if err != nil {
		return 0
	}
	now = now.UTC()
	months := (now.Year()-parsed.Year())*12 + int(now.Month()) - int(parsed.Month())
	if now.Day() < parsed.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// ApproxBirthDate returns the first of the month ageMonths before now, as a
// YYYY-MM-DD string. Used when a stored profile only carries an age.
func ApproxBirthDate(ageMonths int, now time.Time) string {
	if ageMonths < 0 {
		ageMonths = 0
	}
	now = now.UTC()
	approx := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -ageMonths, 0)
	return approx.Format("2006-01-02")
}

// TimestampFromStorageKey recovers the ISO timestamp embedded in a log
// storage key ("DATE#<iso>"), or "" when the key has a different shape.
func TimestampFromStorageKey(storageKey string) string {
	if !strings.HasPrefix(storageKey, logStorageKeyPrefix) {
		return ""
	}
	return storageKey[len(logStorageKeyPrefix):]
}

// RelativeLabel renders createdAt (RFC3339) as a human label relative to now:
// "Just now", "N minutes ago", "N hours ago", "N days ago", then an absolute
// date past a week. An unparseable timestamp yields fallback.
func RelativeLabel(createdAt, storageKey, fallback string, now time.Time) string {
	ts := createdAt
	if ts == "" {
		ts = TimestampFromStorageKey(storageKey)
	}
	if ts == "" {
		return fallback
	}
	created, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return fallback
	}

	elapsed := now.Sub(created)
	// Covers future timestamps from clock skew as well.
	if elapsed < 45*time.Second {
		return "Just now"
	}

	minutes := int(elapsed.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}

	days := hours / 24
	if days < 7 {
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}

	return created.Format("Jan 2, 2006")
}
