// internal/handlers/status.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashwelt/skirmish/internal/matchmaking"
)

// statusFor maps a service error to its HTTP status. The mapping is 1:1
// with the error taxonomy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, matchmaking.ErrPlayerNotFound),
		errors.Is(err, matchmaking.ErrGameNotFound),
		errors.Is(err, matchmaking.ErrMembershipNotFound):
		return http.StatusNotFound
	case errors.Is(err, matchmaking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, matchmaking.ErrGameFull),
		errors.Is(err, matchmaking.ErrAlreadyInGame),
		errors.Is(err, matchmaking.ErrWrongState):
		return http.StatusConflict
	case errors.Is(err, matchmaking.ErrMapInvalid):
		return http.StatusBadRequest
	case errors.Is(err, matchmaking.ErrLaunchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode parses a JSON body into dst, enforcing the payload size cap.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad request payload", http.StatusBadRequest)
		return false
	}
	return true
}

// requirePost rejects anything but POST; every operation mutates or polls.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
