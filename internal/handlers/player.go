// internal/handlers/player.go
package handlers

import "net/http"

// handleLogin registers a player and returns their id plus the
// discriminated display name. There is no credential check: supplying a
// valid player id on later requests is the whole authorization story for
// player-initiated operations.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	p, err := s.svc.Login(req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{ID: p.ID, Username: p.Name})
}
