// internal/matchmaking/service.go
package matchmaking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ashwelt/skirmish/internal/entity"
	"github.com/ashwelt/skirmish/internal/events"
	"github.com/ashwelt/skirmish/internal/launch"
	"github.com/ashwelt/skirmish/internal/maps"
	"github.com/ashwelt/skirmish/internal/notify"
)

// DefaultPollTimeout bounds how long an Update call may hold its connection
// waiting for a lobby change.
const DefaultPollTimeout = 15 * time.Second

// MapResolver is the boundary to the map-storage component: given a map
// name it yields the declared metadata and the payload file path handed to
// spawned servers.
type MapResolver interface {
	Resolve(name string) (maps.Info, error)
	FilePath(info maps.Info) string
}

// Launcher is the boundary to the process-spawn wrapper.
type Launcher interface {
	Launch(ctx context.Context, spec launch.Spec) (launch.Endpoint, error)
}

// Service implements the lobby lifecycle operations over the shared session
// tables. Mutating operations serialize per lobby through the lobby's wait
// handle guard, update the game's last-activity stamp, and signal the
// handle exactly once after the change is applied.
type Service struct {
	db          *DB
	maps        MapResolver
	launcher    Launcher
	feed        *events.Publisher
	log         *logrus.Logger
	pollTimeout time.Duration
}

// NewService wires a Service. feed may be nil when no event feed is
// configured; pollTimeout of zero falls back to DefaultPollTimeout.
func NewService(db *DB, resolver MapResolver, launcher Launcher, feed *events.Publisher, log *logrus.Logger, pollTimeout time.Duration) *Service {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Service{
		db:          db,
		maps:        resolver,
		launcher:    launcher,
		feed:        feed,
		log:         log,
		pollTimeout: pollTimeout,
	}
}

// Login registers a new player and returns it. The display name carries a
// discriminator suffix so equal usernames remain distinguishable.
func (s *Service) Login(username string) (entity.Player, error) {
	p := entity.NewPlayer(username)
	s.db.Players.Insert(p.ID, p)
	s.log.WithFields(logrus.Fields{
		"player_id": p.ID,
		"name":      p.Name,
	}).Info("player logged in")
	return p, nil
}

// ListGames returns the list-view of every live lobby.
func (s *Service) ListGames() []GameInfo {
	counts := make(map[uuid.UUID]int)
	for _, m := range s.db.Members.All() {
		counts[m.GameID]++
	}

	games := s.db.Games.All()
	out := make([]GameInfo, 0, len(games))
	for _, g := range games {
		out = append(out, gameInfo(g, counts[g.ID]))
	}
	return out
}

// CreateGameParams are the host-supplied lobby settings.
type CreateGameParams struct {
	Name       string
	Map        string
	Mode       string
	MaxPlayers int
}

// Create allocates a lobby with a fresh trust key and wait handle, then
// joins the requesting player as host.
func (s *Service) Create(playerID uuid.UUID, params CreateGameParams) (GameDetails, error) {
	if _, ok := s.db.Players.Get(playerID); !ok {
		return GameDetails{}, fmt.Errorf("create: %w", ErrPlayerNotFound)
	}
	if _, ok := s.db.Members.Get(playerID); ok {
		return GameDetails{}, fmt.Errorf("create: %w", ErrAlreadyInGame)
	}

	info, err := s.maps.Resolve(params.Map)
	if err != nil {
		return GameDetails{}, fmt.Errorf("%w: %v", ErrMapInvalid, err)
	}
	if !info.SupportsMode(params.Mode) {
		return GameDetails{}, fmt.Errorf("%w: map %q does not support mode %q", ErrMapInvalid, info.Name, params.Mode)
	}

	g := entity.NewGame(params.Name, info.Name, info.Version, params.Mode, params.MaxPlayers)
	s.db.Games.Insert(g.ID, g)
	s.db.Waits.Insert(g.ID, notify.NewHandle())
	s.db.Members.Insert(playerID, entity.NewHost(playerID, g.ID))

	s.log.WithFields(logrus.Fields{
		"game_id": g.ID,
		"name":    g.Name,
		"map":     g.Map,
		"mode":    g.Mode,
		"host":    playerID,
	}).Info("game created")
	s.feed.Publish(events.Record{Type: events.TypeGameCreated, GameID: g.ID, GameName: g.Name})

	return s.details(g), nil
}

// EditGameParams are partial lobby settings; empty fields stay unchanged.
type EditGameParams struct {
	Name string
	Map  string
	Mode string
}

// Edit updates lobby settings. Only the host may edit. Every member's ready
// flag is reset, since the thing they agreed to has changed.
func (s *Service) Edit(gameID, playerID uuid.UUID, params EditGameParams) error {
	m, ok := s.db.Members.Get(playerID)
	if !ok || m.GameID != gameID || m.Role != entity.RoleHost {
		return fmt.Errorf("edit: %w", ErrForbidden)
	}

	h, ok := s.db.Waits.Get(gameID)
	if !ok {
		return fmt.Errorf("edit: %w", ErrGameNotFound)
	}
	h.Lock()
	defer h.Unlock()

	g, ok := s.db.Games.Get(gameID)
	if !ok {
		return fmt.Errorf("edit: %w", ErrGameNotFound)
	}

	if params.Name != "" {
		g.Name = params.Name
	}
	mapName := g.Map
	if params.Map != "" {
		mapName = params.Map
	}
	mode := g.Mode
	if params.Mode != "" {
		mode = params.Mode
	}
	if mapName != g.Map || mode != g.Mode {
		info, err := s.maps.Resolve(mapName)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMapInvalid, err)
		}
		if !info.SupportsMode(mode) {
			return fmt.Errorf("%w: map %q does not support mode %q", ErrMapInvalid, info.Name, mode)
		}
		g.Map = info.Name
		g.MapVersion = info.Version
		g.Mode = mode
	}

	for _, mm := range s.membersOf(gameID) {
		if mm.Ready {
			mm.Ready = false
			s.db.Members.Insert(mm.PlayerID, mm)
		}
	}

	g.Touch()
	s.db.Games.Insert(g.ID, g)
	h.Signal()

	s.log.WithField("game_id", gameID).Info("game settings updated")
	return nil
}

// Join adds the player to the lobby as a regular, not-ready member.
func (s *Service) Join(gameID, playerID uuid.UUID) error {
	h, ok := s.db.Waits.Get(gameID)
	if !ok {
		return fmt.Errorf("join: %w", ErrGameNotFound)
	}
	h.Lock()
	defer h.Unlock()

	g, ok := s.db.Games.Get(gameID)
	if !ok {
		return fmt.Errorf("join: %w", ErrGameNotFound)
	}
	if _, ok := s.db.Players.Get(playerID); !ok {
		return fmt.Errorf("join: %w", ErrPlayerNotFound)
	}
	if _, ok := s.db.Members.Get(playerID); ok {
		return fmt.Errorf("join: %w", ErrAlreadyInGame)
	}
	if len(s.membersOf(gameID)) >= g.MaxPlayers {
		return fmt.Errorf("join: %w", ErrGameFull)
	}

	s.db.Members.Insert(playerID, entity.NewMember(playerID, gameID))
	g.Touch()
	s.db.Games.Insert(g.ID, g)
	h.Signal()

	s.log.WithFields(logrus.Fields{
		"game_id":   gameID,
		"player_id": playerID,
	}).Info("player joined game")
	return nil
}

// Leave removes the player's membership. An emptied lobby is deleted along
// with its wait handle; otherwise a departing host hands the role to some
// remaining member.
func (s *Service) Leave(playerID uuid.UUID) error {
	m, ok := s.db.Members.Get(playerID)
	if !ok {
		return fmt.Errorf("leave: %w", ErrMembershipNotFound)
	}

	h, hasHandle := s.db.Waits.Get(m.GameID)
	if hasHandle {
		h.Lock()
		defer h.Unlock()
	}

	m, ok = s.db.Members.Get(playerID)
	if !ok {
		return fmt.Errorf("leave: %w", ErrMembershipNotFound)
	}
	s.db.Members.Remove(playerID)

	g, ok := s.db.Games.Get(m.GameID)
	if !ok {
		// The lobby disappeared between steps; the membership is gone,
		// which is all the caller asked for.
		return nil
	}

	remaining := s.membersOf(g.ID)
	if len(remaining) == 0 {
		s.db.Games.Remove(g.ID)
		s.db.Waits.Remove(g.ID)
		s.log.WithField("game_id", g.ID).Info("last player left, game deleted")
		s.feed.Publish(events.Record{Type: events.TypeGameClosed, GameID: g.ID, GameName: g.Name})
		return nil
	}

	if m.Role == entity.RoleHost {
		next := remaining[0]
		next.Role = entity.RoleHost
		next.Ready = false
		s.db.Members.Insert(next.PlayerID, next)
		s.log.WithFields(logrus.Fields{
			"game_id":  g.ID,
			"old_host": playerID,
			"new_host": next.PlayerID,
		}).Info("host migrated")
	}

	g.Touch()
	s.db.Games.Insert(g.ID, g)
	if hasHandle {
		h.Signal()
	}

	s.log.WithFields(logrus.Fields{
		"game_id":   g.ID,
		"player_id": playerID,
	}).Info("player left game")
	return nil
}

// ToggleReady flips the player's ready flag and returns the new value.
// Hosts have no ready flag to flip.
func (s *Service) ToggleReady(playerID uuid.UUID) (bool, error) {
	m, ok := s.db.Members.Get(playerID)
	if !ok {
		return false, fmt.Errorf("toggle ready: %w", ErrMembershipNotFound)
	}
	if m.Role == entity.RoleHost {
		return false, fmt.Errorf("toggle ready: %w", ErrForbidden)
	}

	h, ok := s.db.Waits.Get(m.GameID)
	if !ok {
		return false, fmt.Errorf("toggle ready: %w", ErrGameNotFound)
	}
	h.Lock()
	defer h.Unlock()

	m, ok = s.db.Members.Get(playerID)
	if !ok {
		return false, fmt.Errorf("toggle ready: %w", ErrMembershipNotFound)
	}
	m.Ready = !m.Ready
	s.db.Members.Insert(m.PlayerID, m)

	g, ok := s.db.Games.Get(m.GameID)
	if !ok {
		return false, fmt.Errorf("toggle ready: %w", ErrGameNotFound)
	}
	g.Touch()
	s.db.Games.Insert(g.ID, g)
	h.Signal()

	return m.Ready, nil
}

// Chat appends "{player name}: {text}" to the lobby's bounded chat log.
func (s *Service) Chat(playerID uuid.UUID, text string) error {
	m, ok := s.db.Members.Get(playerID)
	if !ok {
		return fmt.Errorf("chat: %w", ErrMembershipNotFound)
	}
	p, ok := s.db.Players.Get(playerID)
	if !ok {
		return fmt.Errorf("chat: %w", ErrPlayerNotFound)
	}

	h, ok := s.db.Waits.Get(m.GameID)
	if !ok {
		return fmt.Errorf("chat: %w", ErrGameNotFound)
	}
	h.Lock()
	defer h.Unlock()

	g, ok := s.db.Games.Get(m.GameID)
	if !ok {
		return fmt.Errorf("chat: %w", ErrGameNotFound)
	}
	g.Chat.Push(p.Name + ": " + text)
	g.Touch()
	s.db.Games.Insert(g.ID, g)
	h.Signal()

	return nil
}

// Update returns a lobby snapshot. Unless forced, it first waits up to the
// poll timeout for the lobby to change, then reports the current state
// whether or not anything did.
func (s *Service) Update(ctx context.Context, gameID uuid.UUID, forced bool) (GameDetails, error) {
	h, ok := s.db.Waits.Get(gameID)
	if !ok {
		return GameDetails{}, fmt.Errorf("update: %w", ErrGameNotFound)
	}
	if !forced {
		h.Await(ctx, s.pollTimeout)
	}

	g, ok := s.db.Games.Get(gameID)
	if !ok {
		// Deleted while we were waiting.
		return GameDetails{}, fmt.Errorf("update: %w", ErrGameNotFound)
	}
	return s.details(g), nil
}

// Start launches the dedicated server for the lobby and moves it InGame.
// Only the host may start, and only from the InLobby state. A launch
// failure leaves the lobby untouched.
func (s *Service) Start(ctx context.Context, gameID, playerID uuid.UUID) (GameDetails, error) {
	m, ok := s.db.Members.Get(playerID)
	if !ok || m.GameID != gameID || m.Role != entity.RoleHost {
		return GameDetails{}, fmt.Errorf("start: %w", ErrForbidden)
	}

	h, ok := s.db.Waits.Get(gameID)
	if !ok {
		return GameDetails{}, fmt.Errorf("start: %w", ErrGameNotFound)
	}
	h.Lock()
	defer h.Unlock()

	g, ok := s.db.Games.Get(gameID)
	if !ok {
		return GameDetails{}, fmt.Errorf("start: %w", ErrGameNotFound)
	}
	if g.State != entity.StateInLobby {
		return GameDetails{}, fmt.Errorf("start: %w", ErrWrongState)
	}

	info, err := s.maps.Resolve(g.Map)
	if err != nil {
		return GameDetails{}, fmt.Errorf("%w: %v", ErrMapInvalid, err)
	}

	members := s.membersOf(gameID)
	ep, err := s.launcher.Launch(ctx, launch.Spec{
		GameID:      g.ID,
		Key:         g.Key,
		MapFile:     s.maps.FilePath(info),
		Mode:        g.Mode,
		MaxPlayers:  g.MaxPlayers,
		PlayerCount: len(members),
		TakenPorts:  s.takenPorts(),
	})
	if err != nil {
		s.log.WithError(err).WithField("game_id", gameID).Error("game server launch failed")
		return GameDetails{}, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	for _, mm := range members {
		if mm.Ready {
			mm.Ready = false
			s.db.Members.Insert(mm.PlayerID, mm)
		}
	}

	g.State = entity.StateInGame
	g.Address = ep.Address
	g.Port = ep.Port
	g.Touch()
	s.db.Games.Insert(g.ID, g)
	h.Signal()

	s.log.WithFields(logrus.Fields{
		"game_id": g.ID,
		"address": g.Address,
		"port":    g.Port,
	}).Info("game started")
	s.feed.Publish(events.Record{Type: events.TypeGameStarted, GameID: g.ID, GameName: g.Name})

	return s.details(g), nil
}

// CallbackKind enumerates the events a spawned server may report.
type CallbackKind string

const (
	CallbackPlayerLeft CallbackKind = "player_left"
	CallbackGameEnded  CallbackKind = "game_ended"
)

// CallbackEvent is one report from a spawned server. PlayerID is set for
// player_left events.
type CallbackEvent struct {
	Kind     CallbackKind
	PlayerID uuid.UUID
}

// ServerCallback handles a report from the spawned game server,
// authenticated by exact trust-key match. This is the only channel by which
// the server process writes back.
func (s *Service) ServerCallback(gameID, key uuid.UUID, ev CallbackEvent) error {
	g, ok := s.db.Games.Get(gameID)
	if !ok {
		return fmt.Errorf("server callback: %w", ErrGameNotFound)
	}
	if g.Key != key {
		return fmt.Errorf("server callback: %w", ErrForbidden)
	}

	switch ev.Kind {
	case CallbackPlayerLeft:
		m, ok := s.db.Members.Get(ev.PlayerID)
		if !ok || m.GameID != gameID {
			return fmt.Errorf("server callback: %w", ErrMembershipNotFound)
		}
		return s.Leave(ev.PlayerID)

	case CallbackGameEnded:
		h, ok := s.db.Waits.Get(gameID)
		if !ok {
			return fmt.Errorf("server callback: %w", ErrGameNotFound)
		}
		h.Lock()
		defer h.Unlock()

		g, ok := s.db.Games.Get(gameID)
		if !ok {
			return fmt.Errorf("server callback: %w", ErrGameNotFound)
		}
		if g.State != entity.StateInGame {
			return fmt.Errorf("server callback: %w", ErrWrongState)
		}
		g.State = entity.StateInLobby
		g.Address = ""
		g.Port = 0
		g.Touch()
		s.db.Games.Insert(g.ID, g)
		h.Signal()

		s.log.WithField("game_id", g.ID).Info("game ended, back to lobby")
		s.feed.Publish(events.Record{Type: events.TypeGameEnded, GameID: g.ID, GameName: g.Name})
		return nil

	default:
		return fmt.Errorf("server callback: %w: unknown event kind %q", ErrInternal, ev.Kind)
	}
}

// membersOf scans the membership table for a game's members.
func (s *Service) membersOf(gameID uuid.UUID) []entity.Membership {
	var out []entity.Membership
	for _, m := range s.db.Members.All() {
		if m.GameID == gameID {
			out = append(out, m)
		}
	}
	return out
}

// takenPorts lists ports recorded on live lobbies.
func (s *Service) takenPorts() []int {
	var out []int
	for _, g := range s.db.Games.All() {
		if g.Port != 0 {
			out = append(out, g.Port)
		}
	}
	return out
}

// details builds the full snapshot for a game.
func (s *Service) details(g entity.Game) GameDetails {
	members := s.membersOf(g.ID)
	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		name := "unknown"
		if p, ok := s.db.Players.Get(m.PlayerID); ok {
			name = p.Name
		}
		infos = append(infos, MemberInfo{
			PlayerID: m.PlayerID,
			Name:     name,
			IsHost:   m.Role == entity.RoleHost,
			Ready:    m.Ready,
		})
	}

	return GameDetails{
		Info:    gameInfo(g, len(members)),
		State:   g.State,
		Address: g.Address,
		Port:    g.Port,
		Members: infos,
		Chat:    g.Chat.Lines(),
	}
}

func gameInfo(g entity.Game, players int) GameInfo {
	return GameInfo{
		ID:         g.ID,
		Name:       g.Name,
		Map:        g.Map,
		MapVersion: g.MapVersion,
		Mode:       g.Mode,
		MaxPlayers: g.MaxPlayers,
		Players:    players,
		Ping:       0,
	}
}
