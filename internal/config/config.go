// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the coordinator's environment-backed configuration. A .env file
// in the working directory is honored via godotenv autoload in main.
type Config struct {
	// Addr is the interface the HTTP API binds to; spawned game servers
	// advertise the same address.
	Addr string `env:"ADDR" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`

	// ServerPath is the dedicated game-server executable.
	ServerPath string `env:"SERVER_PATH" envDefault:"./game-server"`
	// MapsDir holds the map payloads and their YAML descriptors.
	MapsDir string `env:"MAPS_DIR" envDefault:"./maps"`

	// PollTimeout bounds a long-poll update request.
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"15s"`

	// ReapInterval and LobbyTTL drive eviction of idle lobbies.
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"5s"`
	LobbyTTL     time.Duration `env:"LOBBY_TTL" envDefault:"120s"`

	// GamePortMin/Max bound the inclusive range ports for spawned servers
	// are drawn from.
	GamePortMin int `env:"GAME_PORT_MIN" envDefault:"8000"`
	GamePortMax int `env:"GAME_PORT_MAX" envDefault:"8400"`

	// EventsRedisAddr enables the lifecycle event feed when non-empty.
	EventsRedisAddr string `env:"EVENTS_REDIS_ADDR"`
	EventsQueue     string `env:"EVENTS_QUEUE" envDefault:"skirmish_events"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.GamePortMin > cfg.GamePortMax {
		return Config{}, fmt.Errorf("bad game port range [%d, %d]", cfg.GamePortMin, cfg.GamePortMax)
	}
	return cfg, nil
}
