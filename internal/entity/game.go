// internal/entity/game.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// State is a game's lifecycle state. The only transitions are
// InLobby -> InGame (host starts the match) and InGame -> InLobby (the
// spawned server reports the match ended).
type State string

const (
	StateInLobby State = "in_lobby"
	StateInGame  State = "in_game"
)

// Game is a user-created lobby that players join before a match starts.
//
// Key is the trust key: an unguessable token issued at creation and handed
// to the spawned game-server process, which presents it to authenticate
// callbacks. It is never exposed to players.
//
// Address and Port are populated exactly while the game is InGame.
type Game struct {
	ID         uuid.UUID
	Key        uuid.UUID
	Name       string
	Map        string
	MapVersion string
	Mode       string
	MaxPlayers int
	Chat       ChatRing

	State   State
	Address string
	Port    int

	// LastActive is bumped by every state-changing operation on the game
	// and drives reaping of abandoned lobbies.
	LastActive time.Time
}

// NewGame builds a lobby in the InLobby state with a fresh id and trust key.
func NewGame(name, mapName, mapVersion, mode string, maxPlayers int) Game {
	return Game{
		ID:         uuid.New(),
		Key:        uuid.New(),
		Name:       name,
		Map:        mapName,
		MapVersion: mapVersion,
		Mode:       mode,
		MaxPlayers: maxPlayers,
		State:      StateInLobby,
		LastActive: time.Now(),
	}
}

// Touch records activity on the game.
func (g *Game) Touch() {
	g.LastActive = time.Now()
}

// Clone implements store.Cloner, deep-copying the chat ring.
func (g Game) Clone() Game {
	g.Chat = g.Chat.Clone()
	return g
}
