package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/config"
	"github.com/AdamBeresnev/creature-arena/internal/db"
	"github.com/AdamBeresnev/creature-arena/internal/scheduler"
	"github.com/AdamBeresnev/creature-arena/internal/service"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database := db.InitDB(cfg.DBPath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.Migrations); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	tournamentStore := store.NewTournamentStore(database)
	participantStore := store.NewParticipantStore(database)
	queueStore := store.NewQueueStore(database)

	rng := service.NewRand(cfg.Seed)
	matches := service.NewMatchService(database, tournamentStore, combat.DefaultMoves)
	app := &application{
		tournaments:  service.NewTournamentService(database, tournamentStore, participantStore, queueStore, matches, cfg.Rewards(), rng),
		entries:      service.NewEntryService(database, tournamentStore, participantStore, combat.DefaultMoves),
		matches:      matches,
		participants: service.NewParticipantService(database, participantStore),
		battles:      service.NewBattleService(combat.DefaultMoves),
		queue: service.NewQueueProcessor(database, queueStore, participantStore,
			service.NewAIOpponentGenerator(combat.DefaultStrategies, cfg.AIStatVariance, service.NewRand(rng.Uint64())),
			combat.DefaultMoves, cfg.Matchmaking()),
	}

	sched := scheduler.New()
	if err := sched.Every("brackets", cfg.BracketTick, app.tournaments.ProcessTournaments); err != nil {
		log.Fatal("Failed to schedule bracket tick:", err)
	}
	if err := sched.Every("cleanup", cfg.CleanupTick, func(ctx context.Context) error {
		return app.tournaments.CleanupExpired(ctx, cfg.Retention)
	}); err != nil {
		log.Fatal("Failed to schedule cleanup:", err)
	}
	sched.Start()
	defer sched.Stop()

	if err := app.queue.Start(); err != nil {
		log.Fatal("Failed to start matchmaking:", err)
	}
	defer app.queue.Stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
