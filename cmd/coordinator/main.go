// Package main provides the session coordinator binary: the websocket
// endpoint that hosts two-player snake battle rooms plus the mock
// guest-profile API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/config"
	"github.com/cory-johannsen/snakebattle/internal/coordinator"
	"github.com/cory-johannsen/snakebattle/internal/game/rng"
	"github.com/cory-johannsen/snakebattle/internal/game/room"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/observability"
	"github.com/cory-johannsen/snakebattle/internal/server"
	"github.com/cory-johannsen/snakebattle/internal/web"
	"github.com/cory-johannsen/snakebattle/internal/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting session coordinator",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("room_capacity", cfg.Game.RoomCapacity),
		zap.Int("match_duration_secs", cfg.Game.MatchDurationSeconds),
	)

	src := rng.NewCryptoSource()
	store := room.NewStore(src, cfg.Game.RoomCodeLength)
	registry := session.NewRegistry()
	manager := coordinator.NewManager(store, registry, cfg.Game.RoomCapacity, logger)
	relay := coordinator.NewRelay(store, registry, cfg.Game.MatchDurationSeconds, logger)
	dispatcher := coordinator.NewDispatcher(manager, relay, registry, cfg.Game.FoodPoints, logger)

	acceptor := ws.NewAcceptor(cfg.Server, registry, dispatcher, logger)

	api := web.NewProfileAPI(src, logger)
	acceptor.Handle("POST /api/players", http.HandlerFunc(api.CreatePlayer))
	acceptor.Handle("GET /api/players/{id}", http.HandlerFunc(api.GetPlayer))

	lc := server.NewLifecycle(logger)
	lc.Add("websocket", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("coordinator wired",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Fatal("coordinator exited", zap.Error(err))
	}
}
