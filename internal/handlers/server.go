// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ashwelt/skirmish/internal/matchmaking"
)

// maxBodyBytes caps request payloads; lobby operations are tiny.
const maxBodyBytes = 16 * 1024

// Server exposes the lobby lifecycle operations over HTTP. The core stays
// transport-agnostic; everything here is payload plumbing and error-to-
// status mapping.
type Server struct {
	svc *matchmaking.Service
	log *logrus.Logger
}

// New builds the HTTP surface over a lifecycle service.
func New(svc *matchmaking.Service, log *logrus.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/list_games", s.handleListGames)
	mux.HandleFunc("/create_game", s.handleCreateGame)
	mux.HandleFunc("/edit_game", s.handleEditGame)
	mux.HandleFunc("/join_game", s.handleJoinGame)
	mux.HandleFunc("/leave_game", s.handleLeaveGame)
	mux.HandleFunc("/toggle_ready", s.handleToggleReady)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/update_game", s.handleUpdateGame)
	mux.HandleFunc("/start_game", s.handleStartGame)
	mux.HandleFunc("/server_event", s.handleServerEvent)
	return mux
}
