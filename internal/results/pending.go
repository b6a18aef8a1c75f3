package results

import (
	"sort"

	"tmplint/internal/lint"
)

// BookkeepingRules are emitted by the linter about the pending list itself.
// They never make a module pending.
var BookkeepingRules = []string{
	lint.RuleInvalidPendingModule,
	lint.RuleInvalidPendingModuleRule,
}

// PendingEntry records the rules a module currently fails.
type PendingEntry struct {
	ModuleID string   `json:"moduleId"`
	Only     []string `json:"only"`
}

func isBookkeeping(rule string) bool {
	for _, r := range BookkeepingRules {
		if r == rule {
			return true
		}
	}
	return false
}

// BuildPending derives the pending manifest from a report: one entry per file
// with at least one non-bookkeeping failure, in report order, with the rule
// ids de-duplicated and sorted.
func BuildPending(r Report) []PendingEntry {
	entries := make([]PendingEntry, 0, len(r.Files))

	for _, f := range r.Files {
		seen := make(map[string]struct{})
		var only []string
		for _, m := range f.Messages {
			if isBookkeeping(m.Rule) {
				continue
			}
			if _, dup := seen[m.Rule]; dup {
				continue
			}
			seen[m.Rule] = struct{}{}
			only = append(only, m.Rule)
		}
		if len(only) == 0 {
			continue
		}
		sort.Strings(only)
		entries = append(entries, PendingEntry{
			ModuleID: lint.ModuleID(f.FilePath),
			Only:     only,
		})
	}

	return entries
}
