package memory

import "github.com/Volence/elemental-website-sub005/internal/domain/team"

const (
	TeamIDElementalFire  = "team-elemental-fire"
	TeamIDElementalWater = "team-elemental-water"
	TeamIDElementalEarth = "team-elemental-earth"
)

// SeedTeams returns the demo rosters used when STORAGE_DRIVER=memory.
func SeedTeams() []team.Team {
	return []team.Team{
		{
			ID:              TeamIDElementalFire,
			Name:            "Elemental Fire",
			ExternalTeamID:  "3d0b1c0e-6a4c-4e0f-9d7a-2f4a6b1d9f10",
			CompetitionKey:  "owcs-na-open",
			TrackingEnabled: true,
			Region:          "NA",
			Division:        "Open",
			Rating:          3400,
			Roster:          []string{"Blaze", "Ember", "Cinder", "Ash", "Flint"},
		},
		{
			ID:              TeamIDElementalWater,
			Name:            "Elemental Water",
			ExternalTeamID:  "8f2e4a7b-1c3d-4b5e-a6f7-0d9c8b7a6e51",
			CompetitionKey:  "owcs-emea-advanced",
			TrackingEnabled: true,
			Region:          "EMEA",
			Division:        "Advanced",
			Rating:          3650,
			Roster:          []string{"Tide", "Current", "Brook", "Delta", "Reef"},
		},
		{
			ID:              TeamIDElementalEarth,
			Name:            "Elemental Earth",
			TrackingEnabled: false,
			Region:          "NA",
			Division:        "Open",
		},
	}
}
