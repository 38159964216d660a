package faceit

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// collectItems finds the list of rows in a FaceIt envelope. Lists appear
// directly under "payload", under payload.<key>, or at the root.
func collectItems(root map[string]any, keys ...string) []map[string]any {
	candidates := []any{root["payload"], root["data"]}
	for _, parent := range []map[string]any{relationDataMap(root["payload"]), root} {
		for _, key := range keys {
			candidates = append(candidates, lookupMapValue(parent, key))
		}
	}
	for _, candidate := range candidates {
		if rows := asMapSlice(candidate); rows != nil {
			return rows
		}
	}
	return nil
}

func asMapSlice(raw any) []map[string]any {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func findStandingsRow(rows []map[string]any, teamExternalID string) (map[string]any, bool) {
	for _, row := range rows {
		if strings.EqualFold(standingsTeamID(row), teamExternalID) {
			return row, true
		}
	}
	return nil, false
}

func standingsTeamID(row map[string]any) string {
	if id := firstNonEmpty(getString(row, "premadeTeamId"), getString(row, "teamId"), getString(row, "team_id")); id != "" {
		return id
	}
	team := relationDataMap(firstPresent(row, "team", "premadeTeam", "participant"))
	return firstNonEmpty(getString(team, "id"), getString(team, "teamId"))
}

func parseStandingsRow(row map[string]any) usecase.ExternalStandings {
	stats := relationDataMap(row["stats"])
	if stats == nil {
		stats = row
	}
	pick := func(keys ...string) int {
		if value := getIntAny(row, keys...); value != 0 {
			return value
		}
		return getIntAny(stats, keys...)
	}
	return usecase.ExternalStandings{
		Rank:     pick("rank", "position", "placement"),
		Wins:     pick("wins", "won", "matchesWon"),
		Losses:   pick("losses", "lost", "matchesLost"),
		Ties:     pick("ties", "draws", "tied"),
		Points:   pick("points", "score"),
		Division: firstNonEmpty(getString(row, "division"), getString(row, "divisionName"), getString(relationDataMap(row["division"]), "name")),
		Region:   firstNonEmpty(getString(row, "region"), getString(row, "regionName")),
	}
}

func parseMatch(item map[string]any, teamExternalID, game string) usecase.ExternalMatch {
	origin := relationDataMap(item["origin"])
	matchID := firstNonEmpty(getString(item, "matchId"), getString(item, "id"), getString(origin, "id"))

	ours, opponent := splitFactions(item, teamExternalID)
	return usecase.ExternalMatch{
		ExternalID:  matchID,
		Opponent:    firstNonEmpty(getString(opponent, "name"), getString(item, "opponentName"), getString(relationDataMap(item["opponent"]), "name")),
		ScheduledAt: getTime(item, "scheduledAt", "scheduled_at", "startTime", "origin_start_time"),
		Result:      resolveResult(item, ours, teamExternalID),
		RoomURL:     roomURL(item, matchID, firstNonEmpty(getString(item, "game"), getString(origin, "game"), game)),
	}
}

type faction struct {
	key  string
	data map[string]any
}

// splitFactions returns our faction key and the opponent's faction data. Two
// shapes exist: a "teams" map keyed faction1/faction2 and a "factions" list.
func splitFactions(item map[string]any, teamExternalID string) (string, map[string]any) {
	factions := make([]faction, 0, 2)
	for _, key := range []string{"teams", "factions"} {
		switch typed := item[key].(type) {
		case map[string]any:
			for _, factionKey := range []string{"faction1", "faction2"} {
				if data := relationDataMap(typed[factionKey]); data != nil {
					factions = append(factions, faction{key: factionKey, data: data})
				}
			}
		case []any:
			for i, data := range asMapSlice(typed) {
				factions = append(factions, faction{key: firstNonEmpty(getString(data, "faction"), "faction"+strconv.Itoa(i+1)), data: data})
			}
		}
		if len(factions) > 0 {
			break
		}
	}

	ours := ""
	var opponent map[string]any
	for _, f := range factions {
		id := firstNonEmpty(getString(f.data, "id"), getString(f.data, "faction_id"), getString(f.data, "teamId"))
		if strings.EqualFold(id, teamExternalID) {
			ours = f.key
			continue
		}
		if opponent == nil {
			opponent = f.data
		}
	}
	return ours, opponent
}

func resolveResult(item map[string]any, ourFaction, teamExternalID string) match.Result {
	if direct := match.NormalizeResult(getString(item, "result")); direct != match.ResultPending {
		return direct
	}

	switch strings.ToUpper(getString(item, "status")) {
	case "FINISHED", "CLOSED", "DONE", "COMPLETED":
	default:
		return match.ResultPending
	}

	results := relationDataMap(item["results"])
	winner := firstNonEmpty(getString(item, "winner"), getString(results, "winner"))
	if winner == "" {
		return match.ResultPending
	}
	if strings.EqualFold(winner, teamExternalID) || (ourFaction != "" && strings.EqualFold(winner, ourFaction)) {
		return match.ResultWin
	}
	return match.ResultLoss
}

func roomURL(item map[string]any, matchID, game string) string {
	if raw := firstNonEmpty(getString(item, "faceitUrl"), getString(item, "faceit_url")); raw != "" {
		return strings.ReplaceAll(raw, "{lang}", "en")
	}
	if matchID == "" || game == "" {
		return ""
	}
	return "https://www.faceit.com/en/" + game + "/room/" + matchID
}

func getTime(src map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		switch typed := lookupMapValue(src, key).(type) {
		case string:
			text := strings.TrimSpace(typed)
			if text == "" {
				continue
			}
			for _, layout := range timeLayouts {
				if parsed, err := time.Parse(layout, text); err == nil {
					return parsed.UTC()
				}
			}
			if epoch, err := strconv.ParseInt(text, 10, 64); err == nil {
				return epochToTime(float64(epoch))
			}
		case float64:
			if typed > 0 {
				return epochToTime(typed)
			}
		}
	}
	return time.Time{}
}

// epochToTime accepts both seconds and milliseconds.
func epochToTime(value float64) time.Time {
	if value >= 1e12 {
		return time.UnixMilli(int64(value)).UTC()
	}
	sec, frac := math.Modf(value)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return ""
	}
	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt(src map[string]any, key string) int {
	return int(getInt64(src, key))
}

func getIntAny(src map[string]any, keys ...string) int {
	for _, key := range keys {
		value := getInt(src, key)
		if value != 0 {
			return value
		}
	}
	return 0
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return 0
	}
	switch typed := raw.(type) {
	case float64:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return v
	case map[string]any:
		for _, nestedKey := range []string{"total", "all", "overall", "value"} {
			if v := getInt64(typed, nestedKey); v != 0 {
				return v
			}
		}
		return 0
	default:
		return 0
	}
}

func relationDataMap(raw any) map[string]any {
	if raw == nil {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if data, ok := obj["data"].(map[string]any); ok {
		return data
	}
	return obj
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func firstPresent(src map[string]any, keys ...string) any {
	for _, key := range keys {
		if value := lookupMapValue(src, key); value != nil {
			return value
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
