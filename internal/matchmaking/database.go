// internal/matchmaking/database.go
package matchmaking

import (
	"github.com/ashwelt/skirmish/internal/entity"
	"github.com/ashwelt/skirmish/internal/notify"
	"github.com/ashwelt/skirmish/internal/store"
)

// DB bundles the in-memory session tables. One table per entity type, each
// independently locked; there are no cross-table transactions. Constructed
// once at startup and passed into every component that needs live session
// data.
//
// Memberships are keyed by player id: a player holds at most one membership
// at a time. Wait handles are keyed by game id and live exactly as long as
// their game.
type DB struct {
	Players *store.Table[entity.Player]
	Games   *store.Table[entity.Game]
	Members *store.Table[entity.Membership]
	Waits   *store.Table[*notify.Handle]
}

// NewDB returns empty tables.
func NewDB() *DB {
	return &DB{
		Players: store.New[entity.Player](),
		Games:   store.New[entity.Game](),
		Members: store.New[entity.Membership](),
		Waits:   store.New[*notify.Handle](),
	}
}
