// Package normalize holds the pure string-set helpers behind profile merging:
// comparison is always on the trimmed, lowercased form of a value while the
// original casing of whichever value was seen first is preserved for display.
package normalize

import "strings"

// Fold returns the comparison form of a value.
func Fold(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// MergeUnique appends to existing every incoming value whose folded form is
// not already present, deduplicating incoming against itself in first-seen
// order. Blank values are skipped. Existing order is preserved.
func MergeUnique(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		key := Fold(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	for _, v := range incoming {
		key := Fold(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// RemoveValue removes every entry whose folded form equals the folded target.
func RemoveValue(existing []string, target string) []string {
	key := Fold(target)
	out := make([]string, 0, len(existing))
	for _, v := range existing {
		if Fold(v) == key {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DiffNew returns the subset of selected whose folded form is absent from
// existing, deduplicated against itself in first-seen order. This is exactly
// the set recorded as applied profile updates at candidate acceptance.
func DiffNew(existing, selected []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		key := Fold(v)
		if key == "" {
			continue
		}
		have[key] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, v := range selected {
		key := Fold(v)
		if key == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		have[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
