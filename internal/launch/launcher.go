// internal/launch/launcher.go
//
// Spawns dedicated game-server processes for lobbies that start a match.
package launch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os/exec"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Endpoint is the network address a spawned server listens on.
type Endpoint struct {
	Address string
	Port    int
}

// Spec carries everything a game server needs on its command line. GameID
// and Key let the server authenticate its callbacks to the coordinator.
type Spec struct {
	GameID      uuid.UUID
	Key         uuid.UUID
	MapFile     string
	Mode        string
	MaxPlayers  int
	PlayerCount int

	// TakenPorts are ports already recorded on live lobbies; the allocator
	// must not hand one of them out again.
	TakenPorts []int
}

// Config configures the process launcher.
type Config struct {
	// ServerPath is the game-server executable.
	ServerPath string
	// Address is the interface spawned servers bind to.
	Address string
	// PortMin and PortMax bound the inclusive port range servers are
	// allocated from.
	PortMin int
	PortMax int
}

// ProcessLauncher allocates ports and spawns game-server processes.
type ProcessLauncher struct {
	cfg Config
	log *logrus.Logger
}

// New returns a launcher with the given configuration.
func New(cfg Config, log *logrus.Logger) *ProcessLauncher {
	return &ProcessLauncher{cfg: cfg, log: log}
}

// ErrNoFreePort is returned when the port range is exhausted.
var ErrNoFreePort = errors.New("no free port in range")

// allocatePort probes random candidates in [PortMin, PortMax], skipping
// taken ones; collisions are cheap to detect and retry since the range is
// large relative to expected concurrent matches. After the probe budget a
// linear sweep settles whether the range is truly exhausted.
func (l *ProcessLauncher) allocatePort(taken []int) (int, error) {
	size := l.cfg.PortMax - l.cfg.PortMin + 1
	if size <= 0 {
		return 0, fmt.Errorf("%w: bad range [%d, %d]", ErrNoFreePort, l.cfg.PortMin, l.cfg.PortMax)
	}

	inUse := make(map[int]bool, len(taken))
	for _, p := range taken {
		inUse[p] = true
	}

	for attempt := 0; attempt < 32; attempt++ {
		candidate := l.cfg.PortMin + rand.Intn(size)
		if !inUse[candidate] {
			return candidate, nil
		}
	}
	for candidate := l.cfg.PortMin; candidate <= l.cfg.PortMax; candidate++ {
		if !inUse[candidate] {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w [%d, %d]", ErrNoFreePort, l.cfg.PortMin, l.cfg.PortMax)
}

// Launch allocates a port and starts the game-server process for the given
// spec. It returns the endpoint the server was told to bind. A failure to
// spawn is reported to the caller; the lobby itself is untouched.
func (l *ProcessLauncher) Launch(ctx context.Context, spec Spec) (Endpoint, error) {
	port, err := l.allocatePort(spec.TakenPorts)
	if err != nil {
		return Endpoint{}, err
	}

	// Positional arguments, in the order the server expects them. The
	// process must outlive the request that started it, so it is not tied
	// to ctx.
	cmd := exec.Command(l.cfg.ServerPath,
		l.cfg.Address,
		strconv.Itoa(port),
		spec.MapFile,
		strconv.Itoa(spec.MaxPlayers),
		strconv.Itoa(spec.PlayerCount),
		spec.Mode,
		spec.GameID.String(),
		spec.Key.String(),
	)

	if err := cmd.Start(); err != nil {
		return Endpoint{}, fmt.Errorf("spawn %s: %w", l.cfg.ServerPath, err)
	}

	l.log.WithFields(logrus.Fields{
		"game_id": spec.GameID,
		"pid":     cmd.Process.Pid,
		"port":    port,
	}).Info("game server launched")

	// Reap the child when it exits so it doesn't linger as a zombie.
	go func() {
		err := cmd.Wait()
		entry := l.log.WithFields(logrus.Fields{
			"game_id": spec.GameID,
			"pid":     cmd.Process.Pid,
		})
		if err != nil {
			entry.WithError(err).Warn("game server exited")
			return
		}
		entry.Info("game server exited")
	}()

	return Endpoint{Address: l.cfg.Address, Port: port}, nil
}
