// internal/matchmaking/errors.go
package matchmaking

import "errors"

// Sentinel errors returned by lobby operations. Callers classify them with
// errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrPlayerNotFound: the supplied player id is unknown.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrGameNotFound: the supplied game id is unknown (or the lobby was
	// deleted concurrently).
	ErrGameNotFound = errors.New("game not found")
	// ErrMembershipNotFound: the player is not in any lobby.
	ErrMembershipNotFound = errors.New("player is not in a game")
	// ErrMapInvalid: the requested map is unknown or does not support the
	// requested mode.
	ErrMapInvalid = errors.New("map not found or invalid")
	// ErrForbidden: role or trust-key violation.
	ErrForbidden = errors.New("forbidden")
	// ErrGameFull: the lobby is at its configured capacity.
	ErrGameFull = errors.New("game is full")
	// ErrAlreadyInGame: the player already holds a membership.
	ErrAlreadyInGame = errors.New("player is already in a game")
	// ErrWrongState: the lobby is not in the state the transition requires.
	ErrWrongState = errors.New("game is not in the required state")
	// ErrLaunchFailed: the external game-server process could not be
	// started.
	ErrLaunchFailed = errors.New("failed to launch game server")
	// ErrInternal: store inconsistency that should not occur; surfaced
	// instead of crashing, since cross-table atomicity is never guaranteed.
	ErrInternal = errors.New("internal error")
)
