package usecase

import (
	"strings"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
)

// MatchUpdate pairs a stored match with the feed entry that changed it.
type MatchUpdate struct {
	Existing match.Match
	Incoming ExternalMatch
}

// MatchPlan is the write plan for one team. It is computed before any write so
// a failed persist can simply be retried with the same plan on the next run.
type MatchPlan struct {
	ToCreate  []ExternalMatch
	ToUpdate  []MatchUpdate
	Unchanged []ExternalMatch
	// Duplicates counts feed entries whose external id already appeared earlier
	// in the same feed.
	Duplicates int
	// Skipped counts feed entries without an external id.
	Skipped int
}

// ReconcileMatches diffs the external feed against stored matches keyed by
// external match id. Stored matches missing from the feed are left alone, and
// when the feed repeats an external id the first occurrence wins.
func ReconcileMatches(internal []match.Match, external []ExternalMatch) MatchPlan {
	byExternalID := make(map[string]match.Match, len(internal))
	for _, item := range internal {
		key := strings.TrimSpace(item.ExternalID)
		if key == "" {
			continue
		}
		if _, exists := byExternalID[key]; exists {
			continue
		}
		byExternalID[key] = item
	}

	plan := MatchPlan{
		ToCreate:  make([]ExternalMatch, 0, len(external)),
		ToUpdate:  make([]MatchUpdate, 0),
		Unchanged: make([]ExternalMatch, 0, len(external)),
	}
	seen := make(map[string]struct{}, len(external))
	for _, item := range external {
		key := strings.TrimSpace(item.ExternalID)
		if key == "" {
			plan.Skipped++
			continue
		}
		if _, dup := seen[key]; dup {
			plan.Duplicates++
			plan.Unchanged = append(plan.Unchanged, item)
			continue
		}
		seen[key] = struct{}{}

		existing, ok := byExternalID[key]
		if !ok {
			plan.ToCreate = append(plan.ToCreate, item)
			continue
		}
		if matchChanged(existing, item) {
			plan.ToUpdate = append(plan.ToUpdate, MatchUpdate{Existing: existing, Incoming: item})
			continue
		}
		plan.Unchanged = append(plan.Unchanged, item)
	}

	return plan
}

func matchChanged(existing match.Match, incoming ExternalMatch) bool {
	if !existing.ScheduledAt.Equal(incoming.ScheduledAt) {
		return true
	}
	if strings.TrimSpace(existing.Opponent) != strings.TrimSpace(incoming.Opponent) {
		return true
	}
	return match.NormalizeResult(string(existing.Result)) != match.NormalizeResult(string(incoming.Result))
}

// applyExternalMatch copies the mutable feed fields onto a stored match. A
// blank or unknown result becomes pending and an empty room link in the feed
// keeps the stored one.
func applyExternalMatch(existing match.Match, incoming ExternalMatch, teamName string) match.Match {
	existing.ScheduledAt = incoming.ScheduledAt
	existing.Opponent = strings.TrimSpace(incoming.Opponent)
	existing.Result = match.NormalizeResult(string(incoming.Result))
	existing.Title = match.BuildTitle(teamName, existing.Opponent)
	if room := strings.TrimSpace(incoming.RoomURL); room != "" {
		existing.RoomURL = room
	}
	return existing
}
