package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Volence/elemental-website-sub005/internal/usecase"
	"gopkg.in/yaml.v3"
)

// CompetitionCatalog maps a team's competition key to the league context the
// sync engine queries. Keys are matched case-insensitively.
type CompetitionCatalog struct {
	contexts map[string]usecase.LeagueContext
}

var _ usecase.LeagueContextResolver = (*CompetitionCatalog)(nil)

type competitionFile struct {
	Competitions map[string]usecase.LeagueContext `yaml:"competitions"`
}

// LoadCompetitionCatalog reads the catalog at path. An empty path yields an
// empty catalog, so every tracked team fails with a missing identifier.
func LoadCompetitionCatalog(path string) (*CompetitionCatalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &CompetitionCatalog{contexts: map[string]usecase.LeagueContext{}}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read competition catalog %s: %w", path, err)
	}
	catalog, err := ParseCompetitionCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parse competition catalog %s: %w", path, err)
	}
	return catalog, nil
}

func ParseCompetitionCatalog(raw []byte) (*CompetitionCatalog, error) {
	var file competitionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	contexts := make(map[string]usecase.LeagueContext, len(file.Competitions))
	for key, lc := range file.Competitions {
		normalized := normalizeCompetitionKey(key)
		if normalized == "" {
			return nil, fmt.Errorf("competition key cannot be empty")
		}
		if _, exists := contexts[normalized]; exists {
			return nil, fmt.Errorf("duplicate competition key %q", key)
		}
		contexts[normalized] = trimLeagueContext(lc)
	}
	return &CompetitionCatalog{contexts: contexts}, nil
}

func (c *CompetitionCatalog) Resolve(competitionKey string) (usecase.LeagueContext, bool) {
	if c == nil {
		return usecase.LeagueContext{}, false
	}
	lc, ok := c.contexts[normalizeCompetitionKey(competitionKey)]
	return lc, ok
}

func (c *CompetitionCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.contexts)
}

func normalizeCompetitionKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func trimLeagueContext(lc usecase.LeagueContext) usecase.LeagueContext {
	lc.ChampionshipID = strings.TrimSpace(lc.ChampionshipID)
	lc.LeagueID = strings.TrimSpace(lc.LeagueID)
	lc.SeasonID = strings.TrimSpace(lc.SeasonID)
	lc.StageID = strings.TrimSpace(lc.StageID)
	lc.Region = strings.TrimSpace(lc.Region)
	lc.Division = strings.TrimSpace(lc.Division)
	return lc
}
