// internal/events/events.go
//
// Optional lifecycle-event feed. When a Redis address is configured, the
// coordinator pushes a small JSON record onto a list for every notable
// lobby transition so external consumers (dashboards, history sinks) can
// tail it. Lobby state itself never leaves process memory.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event types pushed to the feed.
const (
	TypeGameCreated = "game_created"
	TypeGameStarted = "game_started"
	TypeGameEnded   = "game_ended"
	TypeGameClosed  = "game_closed"
	TypeGameReaped  = "game_reaped"
)

// Record is one entry on the feed.
type Record struct {
	Type      string    `json:"type"`
	GameID    uuid.UUID `json:"game_id"`
	GameName  string    `json:"game_name,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// Publisher pushes records to a Redis list. A nil Publisher is valid and
// publishes nothing, so callers never have to branch on whether the feed is
// configured.
type Publisher struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect dials Redis at addr and verifies the connection.
func Connect(addr, queue string, log *logrus.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue, log: log}, nil
}

// Publish appends the record to the feed. Errors are logged and swallowed:
// the feed is best-effort and must never fail a lobby operation.
func (p *Publisher) Publish(rec Record) {
	if p == nil {
		return
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		p.log.WithError(err).Warn("events: marshal record")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		p.log.WithError(err).WithField("type", rec.Type).Warn("events: publish failed")
	}
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
