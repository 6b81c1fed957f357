// internal/matchmaking/service_test.go
package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwelt/skirmish/internal/entity"
	"github.com/ashwelt/skirmish/internal/launch"
	"github.com/ashwelt/skirmish/internal/maps"
)

// stubResolver knows two maps, both supporting DeathMatch and
// CaptureTheFlag.
type stubResolver struct{}

func (stubResolver) Resolve(name string) (maps.Info, error) {
	switch name {
	case "Kobra", "Dust":
		return maps.Info{
			Name:    name,
			Version: "1.0",
			File:    name + ".zip",
			Modes:   []string{"DeathMatch", "CaptureTheFlag"},
		}, nil
	}
	return maps.Info{}, fmt.Errorf("unknown map %q", name)
}

func (stubResolver) FilePath(info maps.Info) string {
	return "/maps/" + info.File
}

// stubLauncher records launch specs instead of spawning anything.
type stubLauncher struct {
	mu       sync.Mutex
	launches []launch.Spec
	fail     bool
}

func (l *stubLauncher) Launch(ctx context.Context, spec launch.Spec) (launch.Endpoint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return launch.Endpoint{}, errors.New("spawn rejected")
	}
	l.launches = append(l.launches, spec)
	return launch.Endpoint{Address: "127.0.0.1", Port: 8000 + len(l.launches)}, nil
}

func (l *stubLauncher) last(t *testing.T) launch.Spec {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.launches)
	return l.launches[len(l.launches)-1]
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T) (*Service, *DB, *stubLauncher) {
	t.Helper()
	db := NewDB()
	launcher := &stubLauncher{}
	svc := NewService(db, stubResolver{}, launcher, nil, testLogger(), 100*time.Millisecond)
	return svc, db, launcher
}

func login(t *testing.T, svc *Service, name string) entity.Player {
	t.Helper()
	p, err := svc.Login(name)
	require.NoError(t, err)
	return p
}

func createArena(t *testing.T, svc *Service, host entity.Player, maxPlayers int) GameDetails {
	t.Helper()
	details, err := svc.Create(host.ID, CreateGameParams{
		Name:       "Arena",
		Map:        "Kobra",
		Mode:       "DeathMatch",
		MaxPlayers: maxPlayers,
	})
	require.NoError(t, err)
	return details
}

func TestLoginAddsDiscriminator(t *testing.T) {
	svc, db, _ := newTestService(t)

	p := login(t, svc, "alice")
	assert.Contains(t, p.Name, "alice#")

	stored, ok := db.Players.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p.Name, stored.Name)
}

func TestCreateRequiresKnownPlayer(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(uuid.New(), CreateGameParams{Name: "Arena", Map: "Kobra", Mode: "DeathMatch", MaxPlayers: 4})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestCreateRejectsBadMapOrMode(t *testing.T) {
	svc, _, _ := newTestService(t)
	host := login(t, svc, "host")

	_, err := svc.Create(host.ID, CreateGameParams{Name: "Arena", Map: "Nope", Mode: "DeathMatch", MaxPlayers: 4})
	assert.ErrorIs(t, err, ErrMapInvalid)

	_, err = svc.Create(host.ID, CreateGameParams{Name: "Arena", Map: "Kobra", Mode: "Racing", MaxPlayers: 4})
	assert.ErrorIs(t, err, ErrMapInvalid)
}

func TestCreateJoinsHostAndResolvesMap(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "host")

	details := createArena(t, svc, host, 16)

	assert.Equal(t, "Kobra", details.Info.Map)
	assert.Equal(t, "1.0", details.Info.MapVersion)
	assert.Equal(t, entity.StateInLobby, details.State)
	require.Len(t, details.Members, 1)
	assert.True(t, details.Members[0].IsHost)

	m, ok := db.Members.Get(host.ID)
	require.True(t, ok)
	assert.Equal(t, entity.RoleHost, m.Role)

	_, ok = db.Waits.Get(details.Info.ID)
	assert.True(t, ok, "wait handle created alongside the game")
}

func TestJoinFillsUpToCapacity(t *testing.T) {
	svc, _, _ := newTestService(t)
	host := login(t, svc, "p1")
	details := createArena(t, svc, host, 2)
	gameID := details.Info.ID

	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(gameID, p2.ID))

	snap, err := svc.Update(context.Background(), gameID, true)
	require.NoError(t, err)
	assert.Equal(t, snap.Info.MaxPlayers, snap.Info.Players, "lobby is full")

	p3 := login(t, svc, "p3")
	err = svc.Join(gameID, p3.ID)
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestJoinErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)

	err := svc.Join(uuid.New(), login(t, svc, "p2").ID)
	assert.ErrorIs(t, err, ErrGameNotFound)

	err = svc.Join(details.Info.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// The host already holds a membership in this lobby.
	err = svc.Join(details.Info.ID, host.ID)
	assert.ErrorIs(t, err, ErrAlreadyInGame)
}

func TestHostLeavePromotesRemainingMember(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "p1")
	details := createArena(t, svc, host, 4)
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(details.Info.ID, p2.ID))

	require.NoError(t, svc.Leave(host.ID))

	_, ok := db.Games.Get(details.Info.ID)
	assert.True(t, ok, "lobby survives with one member")

	m, ok := db.Members.Get(p2.ID)
	require.True(t, ok)
	assert.Equal(t, entity.RoleHost, m.Role)
	assert.False(t, m.Ready)
}

func TestLastLeaveDeletesGame(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "p1")
	details := createArena(t, svc, host, 4)

	require.NoError(t, svc.Leave(host.ID))

	_, ok := db.Games.Get(details.Info.ID)
	assert.False(t, ok)
	_, ok = db.Waits.Get(details.Info.ID)
	assert.False(t, ok, "wait handle destroyed with the game")

	err := svc.Leave(host.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestToggleReadyRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(details.Info.ID, p2.ID))

	ready, err := svc.ToggleReady(p2.ID)
	require.NoError(t, err)
	assert.True(t, ready)

	ready, err = svc.ToggleReady(p2.ID)
	require.NoError(t, err)
	assert.False(t, ready, "two toggles restore the original state")

	_, err = svc.ToggleReady(host.ID)
	assert.ErrorIs(t, err, ErrForbidden, "the host has no ready flag")

	_, err = svc.ToggleReady(uuid.New())
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestEditResetsReadyFlags(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(details.Info.ID, p2.ID))
	_, err := svc.ToggleReady(p2.ID)
	require.NoError(t, err)

	err = svc.Edit(details.Info.ID, p2.ID, EditGameParams{Name: "Hijack"})
	assert.ErrorIs(t, err, ErrForbidden, "only the host may edit")

	require.NoError(t, svc.Edit(details.Info.ID, host.ID, EditGameParams{Map: "Dust", Mode: "CaptureTheFlag"}))

	g, ok := db.Games.Get(details.Info.ID)
	require.True(t, ok)
	assert.Equal(t, "Dust", g.Map)
	assert.Equal(t, "CaptureTheFlag", g.Mode)

	m, ok := db.Members.Get(p2.ID)
	require.True(t, ok)
	assert.False(t, m.Ready, "edit resets every ready flag")
}

func TestChatFormatsAndBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)

	require.NoError(t, svc.Chat(host.ID, "hello"))
	snap, err := svc.Update(context.Background(), details.Info.ID, true)
	require.NoError(t, err)
	require.Len(t, snap.Chat, 1)
	assert.Equal(t, host.Name+": hello", snap.Chat[0])

	for i := 0; i < entity.ChatBacklog+3; i++ {
		require.NoError(t, svc.Chat(host.ID, fmt.Sprintf("spam %d", i)))
	}
	snap, err = svc.Update(context.Background(), details.Info.ID, true)
	require.NoError(t, err)
	assert.Len(t, snap.Chat, entity.ChatBacklog)
	assert.Equal(t, host.Name+": spam 3", snap.Chat[0], "oldest entries evicted")
}

func TestUpdateLongPollWakesOnMutation(t *testing.T) {
	db := NewDB()
	svc := NewService(db, stubResolver{}, &stubLauncher{}, nil, testLogger(), 2*time.Second)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)

	type result struct {
		snap GameDetails
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := svc.Update(context.Background(), details.Info.ID, false)
		done <- result{snap, err}
	}()

	// Let the poller park, then mutate the lobby.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, svc.Chat(host.ID, "wake up"))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.NotEmpty(t, res.snap.Chat)
		assert.Contains(t, res.snap.Chat[len(res.snap.Chat)-1], "wake up")
	case <-time.After(time.Second):
		t.Fatal("long-poll did not wake on mutation")
	}
}

func TestStartLifecycle(t *testing.T) {
	svc, db, launcher := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)
	gameID := details.Info.ID
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(gameID, p2.ID))
	_, err := svc.ToggleReady(p2.ID)
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), gameID, p2.ID)
	assert.ErrorIs(t, err, ErrForbidden, "only the host starts the match")

	started, err := svc.Start(context.Background(), gameID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateInGame, started.State)
	assert.Equal(t, "127.0.0.1", started.Address)
	assert.NotZero(t, started.Port)

	spec := launcher.last(t)
	assert.Equal(t, gameID, spec.GameID)
	assert.Equal(t, "/maps/Kobra.zip", spec.MapFile)
	assert.Equal(t, 4, spec.MaxPlayers)
	assert.Equal(t, 2, spec.PlayerCount)

	m, ok := db.Members.Get(p2.ID)
	require.True(t, ok)
	assert.False(t, m.Ready, "start resets ready flags")

	_, err = svc.Start(context.Background(), gameID, host.ID)
	assert.ErrorIs(t, err, ErrWrongState, "start is only valid from the lobby state")
}

func TestStartLaunchFailureLeavesStateUntouched(t *testing.T) {
	svc, db, launcher := newTestService(t)
	launcher.fail = true
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)

	_, err := svc.Start(context.Background(), details.Info.ID, host.ID)
	assert.ErrorIs(t, err, ErrLaunchFailed)

	g, ok := db.Games.Get(details.Info.ID)
	require.True(t, ok)
	assert.Equal(t, entity.StateInLobby, g.State)
	assert.Empty(t, g.Address)
	assert.Zero(t, g.Port)
}

func TestServerCallbackAuthAndEvents(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)
	gameID := details.Info.ID
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(gameID, p2.ID))

	g, ok := db.Games.Get(gameID)
	require.True(t, ok)

	err := svc.ServerCallback(gameID, uuid.New(), CallbackEvent{Kind: CallbackGameEnded})
	assert.ErrorIs(t, err, ErrForbidden, "wrong trust key")

	err = svc.ServerCallback(gameID, g.Key, CallbackEvent{Kind: CallbackGameEnded})
	assert.ErrorIs(t, err, ErrWrongState, "no match in progress")

	_, err = svc.Start(context.Background(), gameID, host.ID)
	require.NoError(t, err)

	err = svc.ServerCallback(gameID, g.Key, CallbackEvent{Kind: CallbackPlayerLeft, PlayerID: p2.ID})
	require.NoError(t, err)
	_, ok = db.Members.Get(p2.ID)
	assert.False(t, ok)

	err = svc.ServerCallback(gameID, g.Key, CallbackEvent{Kind: CallbackGameEnded})
	require.NoError(t, err)

	after, ok := db.Games.Get(gameID)
	require.True(t, ok)
	assert.Equal(t, entity.StateInLobby, after.State)
	assert.Empty(t, after.Address)
	assert.Zero(t, after.Port)
}

// Hammer one lobby with concurrent joins and leaves; capacity and the
// single-host invariant must hold at the end.
func TestConcurrentJoinLeaveHoldsInvariants(t *testing.T) {
	svc, db, _ := newTestService(t)
	host := login(t, svc, "host")
	details := createArena(t, svc, host, 4)
	gameID := details.Info.ID

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		p := login(t, svc, fmt.Sprintf("p%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := svc.Join(gameID, p.ID); err != nil {
					continue
				}
				svc.ToggleReady(p.ID)
				svc.Leave(p.ID)
			}
		}()
	}
	wg.Wait()

	members := 0
	hosts := 0
	for _, m := range db.Members.All() {
		if m.GameID != gameID {
			continue
		}
		members++
		if m.Role == entity.RoleHost {
			hosts++
		}
	}
	assert.LessOrEqual(t, members, 4, "capacity never exceeded")
	assert.Equal(t, 1, hosts, "exactly one host while non-empty")
	assert.Equal(t, 1, members, "only the host remains after the churn")
}

func TestListGamesCountsMembers(t *testing.T) {
	svc, _, _ := newTestService(t)
	h1 := login(t, svc, "h1")
	d1 := createArena(t, svc, h1, 4)
	p2 := login(t, svc, "p2")
	require.NoError(t, svc.Join(d1.Info.ID, p2.ID))

	h2 := login(t, svc, "h2")
	createArena(t, svc, h2, 8)

	games := svc.ListGames()
	require.Len(t, games, 2)

	byID := map[uuid.UUID]GameInfo{}
	for _, g := range games {
		byID[g.ID] = g
	}
	assert.Equal(t, 2, byID[d1.Info.ID].Players)
}
