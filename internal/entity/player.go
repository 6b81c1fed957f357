// internal/entity/player.go
package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Player is an identity created at login. Immutable once created.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewPlayer mints a player with a fresh id. The display name gets a
// discriminator suffix derived from the id (last four characters of the
// uppercased UUID) so identical usernames stay visually unique.
func NewPlayer(username string) Player {
	id := uuid.New()
	tag := strings.ToUpper(id.String())
	return Player{
		ID:   id,
		Name: username + "#" + tag[len(tag)-4:],
	}
}

// Clone implements store.Cloner. Player is a pure value type.
func (p Player) Clone() Player { return p }
