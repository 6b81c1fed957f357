// internal/handlers/game.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ashwelt/skirmish/internal/matchmaking"
)

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req listGamesRequest
	if !decode(w, r, &req) {
		return
	}

	games := s.svc.ListGames()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req createGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil || req.Name == "" || req.Map == "" || req.Mode == "" {
		http.Error(w, "player_id, name, map and mode are required", http.StatusBadRequest)
		return
	}
	if req.MaxPlayers < 1 || req.MaxPlayers > 255 {
		http.Error(w, "max_players out of range", http.StatusBadRequest)
		return
	}

	details, err := s.svc.Create(req.PlayerID, matchmaking.CreateGameParams{
		Name:       req.Name,
		Map:        req.Map,
		Mode:       req.Mode,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleEditGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req editGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil || req.GameID == uuid.Nil {
		http.Error(w, "player_id and game_id are required", http.StatusBadRequest)
		return
	}

	err := s.svc.Edit(req.GameID, req.PlayerID, matchmaking.EditGameParams{
		Name: req.Name,
		Map:  req.Map,
		Mode: req.Mode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req joinGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil || req.GameID == uuid.Nil {
		http.Error(w, "player_id and game_id are required", http.StatusBadRequest)
		return
	}

	if err := s.svc.Join(req.GameID, req.PlayerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req leaveGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	if err := s.svc.Leave(req.PlayerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleToggleReady(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req toggleReadyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	ready, err := s.svc.ToggleReady(req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleReadyResponse{Ready: ready})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil || req.Message == "" {
		http.Error(w, "player_id and message are required", http.StatusBadRequest)
		return
	}

	if err := s.svc.Chat(req.PlayerID, req.Message); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleUpdateGame is the long-poll endpoint: it blocks until the lobby
// changes or the poll timeout elapses, then returns the current snapshot
// either way. Forced requests skip the wait.
func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req updateGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.GameID == uuid.Nil {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}

	details, err := s.svc.Update(r.Context(), req.GameID, req.Forced)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req startGameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PlayerID == uuid.Nil || req.GameID == uuid.Nil {
		http.Error(w, "player_id and game_id are required", http.StatusBadRequest)
		return
	}

	details, err := s.svc.Start(r.Context(), req.GameID, req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
