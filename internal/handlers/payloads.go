// internal/handlers/payloads.go
package handlers

import "github.com/google/uuid"

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type listGamesRequest struct {
	// Full includes lobbies at capacity in the listing. Accepted for
	// client compatibility; filtering happens client-side today.
	Full bool `json:"full"`
}

type createGameRequest struct {
	PlayerID   uuid.UUID `json:"player_id"`
	Name       string    `json:"name"`
	Map        string    `json:"map"`
	Mode       string    `json:"mode"`
	MaxPlayers int       `json:"max_players"`
}

type editGameRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	GameID   uuid.UUID `json:"game_id"`
	Name     string    `json:"name,omitempty"`
	Map      string    `json:"map,omitempty"`
	Mode     string    `json:"mode,omitempty"`
}

type joinGameRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	GameID   uuid.UUID `json:"game_id"`
}

type leaveGameRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

type toggleReadyRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

type toggleReadyResponse struct {
	Ready bool `json:"is_ready"`
}

type chatRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	Message  string    `json:"message"`
}

type updateGameRequest struct {
	GameID uuid.UUID `json:"game_id"`
	// Forced skips the long-poll wait and returns the snapshot
	// immediately.
	Forced bool `json:"forced"`
}

type startGameRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
	GameID   uuid.UUID `json:"game_id"`
}

type serverEventRequest struct {
	GameID uuid.UUID `json:"game_id"`
	Key    uuid.UUID `json:"key"`
	Event  string    `json:"event"`
	// PlayerID accompanies player_left events.
	PlayerID uuid.UUID `json:"player_id,omitempty"`
}
