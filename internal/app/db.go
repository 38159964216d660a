package app

import (
	"net/url"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var whitespaceRun = regexp.MustCompile(`\s+`)

// withApplicationName tags connections in pg_stat_activity. lib/pq accepts
// both URL and key=value DSNs; an explicit name in the DSN wins.
func withApplicationName(dsn, name string) string {
	dsn = strings.TrimSpace(dsn)
	name = strings.TrimSpace(name)
	if dsn == "" || name == "" || strings.Contains(dsn, "application_name") {
		return dsn
	}

	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		query.Set("fallback_application_name", name)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}
	return dsn + " fallback_application_name=" + name
}

func dbNameFromDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}
	for _, token := range strings.Fields(dsn) {
		if value, ok := strings.CutPrefix(token, "dbname="); ok {
			if name := strings.Trim(value, `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

// traceQuery collapses whitespace and truncates long statements for span
// attributes.
func traceQuery(query string) string {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
