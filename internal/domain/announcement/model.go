package announcement

import (
	"fmt"
	"strings"
	"time"
)

type EntityType string

const (
	EntityTeam  EntityType = "team"
	EntityMatch EntityType = "match"
	EntityScrim EntityType = "scrim"
)

// EntityRef identifies the internal record a chat message represents.
type EntityRef struct {
	Type EntityType
	ID   string
}

func (r EntityRef) Validate() error {
	switch r.Type {
	case EntityTeam, EntityMatch, EntityScrim:
	default:
		return fmt.Errorf("invalid entity type: %q", r.Type)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("entity id is required")
	}
	return nil
}

func (r EntityRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// Binding maps an entity to the chat message currently showing it.
type Binding struct {
	Ref         EntityRef
	ChannelID   string
	MessageID   string
	ContentHash string
	UpdatedAt   time.Time
}
