// internal/handlers/callback.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ashwelt/skirmish/internal/matchmaking"
)

// handleServerEvent receives reports from spawned game-server processes.
// The trust key issued at lobby creation is the sole credential; the event
// vocabulary is exactly player_left and game_ended.
func (s *Server) handleServerEvent(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req serverEventRequest
	if !decode(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil || req.Key == uuid.Nil {
		http.Error(w, "game_id and key are required", http.StatusBadRequest)
		return
	}

	var ev matchmaking.CallbackEvent
	switch matchmaking.CallbackKind(req.Event) {
	case matchmaking.CallbackPlayerLeft:
		if req.PlayerID == uuid.Nil {
			http.Error(w, "player_id is required for player_left", http.StatusBadRequest)
			return
		}
		ev = matchmaking.CallbackEvent{Kind: matchmaking.CallbackPlayerLeft, PlayerID: req.PlayerID}
	case matchmaking.CallbackGameEnded:
		ev = matchmaking.CallbackEvent{Kind: matchmaking.CallbackGameEnded}
	default:
		http.Error(w, "unknown event", http.StatusBadRequest)
		return
	}

	if err := s.svc.ServerCallback(req.GameID, req.Key, ev); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
