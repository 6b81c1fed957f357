// internal/entity/membership.go
package entity

import "github.com/google/uuid"

// Role distinguishes the lobby host from ordinary players. The host owns
// the lobby (edit/start authority) and is never "ready" — it starts the
// match instead.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Membership relates one player to one game. A player holds at most one
// membership at a time; memberships are keyed by player id in the store.
type Membership struct {
	PlayerID uuid.UUID
	GameID   uuid.UUID
	Role     Role
	Ready    bool
}

// NewHost returns the host membership created alongside a new game.
func NewHost(playerID, gameID uuid.UUID) Membership {
	return Membership{PlayerID: playerID, GameID: gameID, Role: RoleHost}
}

// NewMember returns a regular, not-yet-ready membership.
func NewMember(playerID, gameID uuid.UUID) Membership {
	return Membership{PlayerID: playerID, GameID: gameID, Role: RolePlayer}
}

// Clone implements store.Cloner. Membership is a pure value type.
func (m Membership) Clone() Membership { return m }
