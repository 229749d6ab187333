package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ringo-rp/ringobot/internal/config"
	"github.com/ringo-rp/ringobot/internal/handlers"
	"github.com/ringo-rp/ringobot/internal/logger"
	"github.com/ringo-rp/ringobot/internal/middleware"
	"github.com/ringo-rp/ringobot/internal/storage"
	"github.com/ringo-rp/ringobot/pkg/escape"
	"github.com/ringo-rp/ringobot/pkg/gacha"
	"github.com/ringo-rp/ringobot/pkg/replies"
	"github.com/ringo-rp/ringobot/pkg/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting RingoBot API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	escapeStore := storage.NewRedisEscapeStore(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := escapeStore.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	db, err := storage.OpenSQLite(cfg.SQLitePath, log)
	if err != nil {
		log.Error("Failed to open database", "error", err, "path", cfg.SQLitePath)
		os.Exit(1)
	}
	log.Info("Storage connections established")

	rooms, err := room.LoadDir(filepath.Join(cfg.DataDir, "rooms"))
	if err != nil {
		log.Error("Failed to load escape rooms", "error", err)
		os.Exit(1)
	}
	log.Info("Escape rooms loaded", "count", len(rooms))

	catalog, err := gacha.LoadCatalog(cfg.PrizesFile)
	if err != nil {
		log.Error("Failed to load prize catalog", "error", err, "path", cfg.PrizesFile)
		os.Exit(1)
	}
	log.Info("Prize catalog loaded", "prizes", catalog.Len())

	puzzles, err := escape.DefaultRegistry()
	if err != nil {
		log.Error("Failed to build puzzle registry", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine, err := escape.NewEngine(rooms, escapeStore, puzzles, rng, log)
	if err != nil {
		log.Error("Failed to build escape engine", "error", err)
		os.Exit(1)
	}

	roller := gacha.NewRoller(catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
	matcher := replies.NewMatcher(rand.New(rand.NewSource(time.Now().UnixNano())), replies.DefaultRules(cfg.BotName))

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(escapeStore, db, log))
	mux.Handle("/v1/dice/roll", handlers.NewDiceHandler(rand.New(rand.NewSource(time.Now().UnixNano())), log))
	mux.Handle("/v1/replies", handlers.NewRepliesHandler(matcher, log))

	characterHandler := handlers.NewCharacterHandler(db, log)
	mux.Handle("/v1/characters", characterHandler)
	mux.Handle("/v1/characters/", characterHandler)
	mux.Handle("/v1/leaderboard", handlers.NewLeaderboardHandler(db, log))

	questHandler := handlers.NewQuestHandler(db, log)
	mux.Handle("/v1/quests", questHandler)
	mux.Handle("/v1/quests/", questHandler)

	gachaHandler := handlers.NewGachaHandler(db, roller, log)
	mux.Handle("/v1/gacha/", gachaHandler)

	escapeHandler := handlers.NewEscapeHandler(engine, log)
	mux.Handle("/v1/escape/", escapeHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := escapeStore.Close(); err != nil {
		log.Error("Error closing Redis connection", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
