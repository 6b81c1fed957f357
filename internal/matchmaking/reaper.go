// internal/matchmaking/reaper.go
package matchmaking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ashwelt/skirmish/internal/entity"
	"github.com/ashwelt/skirmish/internal/events"
)

// Reaper evicts lobbies that have sat idle past their TTL. Lobbies with a
// match in progress are never reaped: an active match is not abandoned just
// because nobody touched the lobby. Deletion does not signal waiters; their
// long-polls simply time out.
type Reaper struct {
	db       *DB
	interval time.Duration
	ttl      time.Duration
	feed     *events.Publisher
	log      *logrus.Logger
}

// NewReaper builds a reaper over the shared tables.
func NewReaper(db *DB, interval, ttl time.Duration, feed *events.Publisher, log *logrus.Logger) *Reaper {
	return &Reaper{
		db:       db,
		interval: interval,
		ttl:      ttl,
		feed:     feed,
		log:      log,
	}
}

// Run sweeps on a fixed interval until ctx is done. Errors never terminate
// the loop.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.WithFields(logrus.Fields{
		"interval": r.interval,
		"ttl":      r.ttl,
	}).Info("reaper running")

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reaper stopped")
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep snapshots the game table and deletes every idle lobby, along with
// its wait handle and the memberships that reference it. It returns how
// many lobbies were reaped.
func (r *Reaper) sweep() int {
	reaped := 0
	for _, g := range r.db.Games.All() {
		if g.State != entity.StateInLobby {
			continue
		}
		if time.Since(g.LastActive) <= r.ttl {
			continue
		}

		h, ok := r.db.Waits.Get(g.ID)
		if !ok {
			// Already being torn down elsewhere.
			continue
		}
		h.Lock()
		// Re-check under the lobby guard: someone may have touched the
		// lobby between the snapshot and now.
		current, ok := r.db.Games.Get(g.ID)
		if !ok || current.State != entity.StateInLobby || time.Since(current.LastActive) <= r.ttl {
			h.Unlock()
			continue
		}

		r.db.Games.Remove(g.ID)
		r.db.Waits.Remove(g.ID)
		for _, m := range r.db.Members.All() {
			if m.GameID == g.ID {
				r.db.Members.Remove(m.PlayerID)
			}
		}
		h.Unlock()

		reaped++
		r.log.WithFields(logrus.Fields{
			"game_id": g.ID,
			"name":    g.Name,
			"idle":    time.Since(current.LastActive),
		}).Info("reaped idle game")
		r.feed.Publish(events.Record{Type: events.TypeGameReaped, GameID: g.ID, GameName: g.Name})
	}
	return reaped
}
