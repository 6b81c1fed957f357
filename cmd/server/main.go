// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/ashwelt/skirmish/internal/config"
	"github.com/ashwelt/skirmish/internal/events"
	"github.com/ashwelt/skirmish/internal/handlers"
	"github.com/ashwelt/skirmish/internal/launch"
	"github.com/ashwelt/skirmish/internal/maps"
	"github.com/ashwelt/skirmish/internal/matchmaking"
	"github.com/ashwelt/skirmish/internal/middleware"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	if _, err := os.Stat(cfg.ServerPath); err != nil {
		logger.Fatalf("game server executable not found at %s: %v", cfg.ServerPath, err)
	}

	catalog, err := maps.Load(cfg.MapsDir)
	if err != nil {
		logger.Fatalf("map catalog: %v", err)
	}
	logger.WithField("maps", catalog.Names()).Info("map catalog loaded")

	var feed *events.Publisher
	if cfg.EventsRedisAddr != "" {
		feed, err = events.Connect(cfg.EventsRedisAddr, cfg.EventsQueue, logger)
		if err != nil {
			logger.Fatalf("event feed: %v", err)
		}
		defer feed.Close()
	}

	launcher := launch.New(launch.Config{
		ServerPath: cfg.ServerPath,
		Address:    cfg.Addr,
		PortMin:    cfg.GamePortMin,
		PortMax:    cfg.GamePortMax,
	}, logger)

	db := matchmaking.NewDB()
	svc := matchmaking.NewService(db, catalog, launcher, feed, logger, cfg.PollTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reaper := matchmaking.NewReaper(db, cfg.ReapInterval, cfg.LobbyTTL, feed, logger)
	go reaper.Run(ctx)

	srv := handlers.New(svc, logger)
	handler := middleware.LogMiddleware(logger)(srv.Routes())

	addr := fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port)
	httpSrv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		httpSrv.Shutdown(context.Background())
	}()

	logger.Infof("Running on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server exited: %v", err)
	}
}
