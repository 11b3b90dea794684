package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/vytor/triviaflash/internal/api"
	"github.com/vytor/triviaflash/internal/config"
	"github.com/vytor/triviaflash/internal/db"
	"github.com/vytor/triviaflash/internal/jobs"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/opentdb"
	"github.com/vytor/triviaflash/internal/repository/sqlite"
	"github.com/vytor/triviaflash/internal/services"
	"github.com/vytor/triviaflash/internal/worker"
)

const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 5
	pruneInterval     = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogFile == ""),
		logger.WithFile(cfg.LogFile, logFileMaxSizeMB, logFileMaxBackups),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	figure.NewFigure("TriviaFlash", "", true).Print()
	log.Info("===========================================")
	log.Info("TriviaFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("opentdb_base_url=%s", cfg.OpenTDBBaseURL)
	log.Debug("questions_file=%s", cfg.QuestionsFile)
	log.Debug("question_amount=%d", cfg.QuestionAmount)
	log.Debug("fetch_timeout=%s", cfg.FetchTimeout)
	log.Debug("fetch_worker_count=%d", cfg.FetchWorkerCount)
	log.Debug("fetch_queue_size=%d", cfg.FetchQueueSize)
	log.Debug("session_ttl=%s", cfg.SessionTTL)
	log.Debug("scoreboard_size=%d", cfg.ScoreboardSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load templates
	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}
	log.Debug("templates loaded successfully")

	// Question provider and the pool that runs its fetches
	provider := opentdb.NewProvider(cfg.QuestionsFile, opentdb.Options{
		BaseURL:         cfg.OpenTDBBaseURL,
		Amount:          cfg.QuestionAmount,
		Category:        cfg.QuestionCategory,
		Difficulty:      cfg.QuestionDifficulty,
		Type:            cfg.QuestionType,
		RequestInterval: cfg.RequestInterval,
	})
	fetchPool := worker.NewPool(cfg.FetchWorkerCount, cfg.FetchQueueSize)

	// Initialize services
	scoreboard := services.NewScoreboardService(sqlite.NewResultRepository(database.DB), cfg.ScoreboardSize)
	sessions := services.NewSessionRegistry(
		jobs.NewWorkerQueue(fetchPool, provider, cfg.FetchTimeout),
		scoreboard,
		services.RegistryOptions{TTL: cfg.SessionTTL},
	)

	srv := &api.Server{
		Sessions:   sessions,
		Scoreboard: scoreboard,
		DB:         database,
		Templates:  tmpl,
	}

	ctx, cancel := context.WithCancel(context.Background())
	fetchPool.Start(ctx)
	go sessions.RunPruner(ctx, pruneInterval)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// In-flight fetches are abandoned; their sessions die with the process.
	log.Debug("stopping fetch pool")
	cancel()
	fetchPool.Stop()

	log.Info("===========================================")
	log.Info("TriviaFlash Server Stopped")
	log.Info("===========================================")
}
