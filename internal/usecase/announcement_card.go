package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	"github.com/valyala/bytebufferpool"
)

const (
	cardColorDefault = 0x5865F2
	cardColorWinning = 0x57F287
	cardColorLosing  = 0xED4245
	cardMaxMatches   = 3
)

// RenderTeamCard builds the standings card for a team. Upcoming matches are
// listed soonest first and played matches most recent first.
func RenderTeamCard(item team.Team, active season.Season, matches []match.Match, now time.Time) MessageContent {
	standings := active.Standings

	upcoming := make([]match.Match, 0, len(matches))
	played := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.SeasonKey != "" && active.SeasonKey != "" && m.SeasonKey != active.SeasonKey {
			continue
		}
		if m.Result == match.ResultPending {
			if !m.ScheduledAt.IsZero() && m.ScheduledAt.Before(now) {
				continue
			}
			upcoming = append(upcoming, m)
			continue
		}
		played = append(played, m)
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt) })
	sort.SliceStable(played, func(i, j int) bool { return played[i].ScheduledAt.After(played[j].ScheduledAt) })

	fields := []EmbedField{
		{Name: "Rank", Value: rankLabel(standings.Rank), Inline: true},
		{Name: "Record", Value: recordLabel(standings), Inline: true},
		{Name: "Points", Value: strconv.Itoa(standings.Points), Inline: true},
	}
	if len(upcoming) > 0 {
		fields = append(fields, EmbedField{Name: "Upcoming", Value: matchLines(upcoming, cardMaxMatches)})
	}
	if len(played) > 0 {
		fields = append(fields, EmbedField{Name: "Recent results", Value: matchLines(played, cardMaxMatches)})
	}

	color := cardColorDefault
	switch {
	case standings.Wins > standings.Losses:
		color = cardColorWinning
	case standings.Losses > standings.Wins:
		color = cardColorLosing
	}

	stamp := now.UTC()
	embed := MessageEmbed{
		Title:        strings.TrimSpace(item.Name),
		Description:  describeStandings(item, standings),
		Color:        color,
		ThumbnailURL: strings.TrimSpace(item.LogoURL),
		Footer:       "Season " + active.SeasonKey,
		Timestamp:    &stamp,
		Fields:       fields,
	}
	if len(item.Roster) > 0 {
		embed.Fields = append(embed.Fields, EmbedField{Name: "Roster", Value: strings.Join(item.Roster, ", ")})
	}

	return MessageContent{Embeds: []MessageEmbed{embed}}
}

func describeStandings(item team.Team, standings season.Standings) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	region := firstNonBlank(standings.Region, item.Region)
	division := firstNonBlank(standings.Division, item.Division)
	switch {
	case region != "" && division != "":
		_, _ = buf.WriteString(region + " · " + division)
	case region != "":
		_, _ = buf.WriteString(region)
	case division != "":
		_, _ = buf.WriteString(division)
	}
	if item.Rating > 0 {
		if buf.Len() > 0 {
			_, _ = buf.WriteString(" · ")
		}
		_, _ = buf.WriteString("Rating " + strconv.Itoa(item.Rating))
	}
	return buf.String()
}

func matchLines(items []match.Match, limit int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, item := range items {
		if i >= limit {
			break
		}
		if i > 0 {
			_ = buf.WriteByte('\n')
		}
		opponent := firstNonBlank(item.Opponent, "TBD")
		if item.RoomURL != "" {
			opponent = "[" + opponent + "](" + item.RoomURL + ")"
		}
		line := fmt.Sprintf("%s vs %s", scheduleLabel(item.ScheduledAt), opponent)
		switch item.Result {
		case match.ResultWin:
			line += " · W"
		case match.ResultLoss:
			line += " · L"
		}
		_, _ = buf.WriteString(line)
	}
	return buf.String()
}

func scheduleLabel(at time.Time) string {
	if at.IsZero() {
		return "TBD"
	}
	// Discord renders <t:unix:f> in the reader's timezone.
	return fmt.Sprintf("<t:%d:f>", at.Unix())
}

func rankLabel(rank int) string {
	if rank <= 0 {
		return "-"
	}
	return "#" + strconv.Itoa(rank)
}

func recordLabel(standings season.Standings) string {
	out := strconv.Itoa(standings.Wins) + "-" + strconv.Itoa(standings.Losses)
	if standings.Ties > 0 {
		out += "-" + strconv.Itoa(standings.Ties)
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
