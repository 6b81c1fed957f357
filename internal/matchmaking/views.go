// internal/matchmaking/views.go
package matchmaking

import (
	"github.com/ashwelt/skirmish/internal/entity"
	"github.com/google/uuid"
)

// GameInfo is the list-view of a lobby.
type GameInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Map        string    `json:"map"`
	MapVersion string    `json:"map_version"`
	Mode       string    `json:"mode"`
	MaxPlayers int       `json:"max_players"`
	Players    int       `json:"players"`
	// Ping is a placeholder; no measurement channel exists.
	Ping int `json:"ping"`
}

// MemberInfo is one player's standing within a lobby.
type MemberInfo struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"is_host"`
	Ready    bool      `json:"is_ready"`
}

// GameDetails is the full lobby snapshot returned by Update and Create.
// Address and Port are set only while the game is in progress.
type GameDetails struct {
	Info    GameInfo     `json:"info"`
	State   entity.State `json:"state"`
	Address string       `json:"address,omitempty"`
	Port    int          `json:"port,omitempty"`
	Members []MemberInfo `json:"members"`
	Chat    []string     `json:"chat"`
}
