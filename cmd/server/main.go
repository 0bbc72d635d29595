package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nico/impostor-party-server/internal/api"
	"github.com/nico/impostor-party-server/internal/config"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/push"
	"github.com/nico/impostor-party-server/internal/repository/postgres"
	"github.com/nico/impostor-party-server/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Content pools live in Postgres; rooms stay in process memory.
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	repos := postgres.NewRepositories(db)

	// Room engine with its idle sweep.
	engineCfg := game.DefaultConfig()
	engineCfg.CountdownDelay = cfg.RoundCountdown
	engineCfg.PresenceTimeout = cfg.PresenceTimeout
	engineCfg.RoomIdleTimeout = cfg.RoomIdleTimeout
	registry := game.NewRegistry(engineCfg)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go registry.Run(sweepCtx)

	hub := push.NewHub()
	services := service.NewServices(repos, registry, hub, cfg)
	router := api.NewRouter(services, hub, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
