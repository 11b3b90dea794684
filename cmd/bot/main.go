package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vytor/triviaflash/internal/config"
	"github.com/vytor/triviaflash/internal/db"
	"github.com/vytor/triviaflash/internal/jobs"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/opentdb"
	"github.com/vytor/triviaflash/internal/repository/sqlite"
	"github.com/vytor/triviaflash/internal/services"
	"github.com/vytor/triviaflash/internal/telegram"
	"github.com/vytor/triviaflash/internal/worker"
)

const pruneInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogFile == ""),
		logger.WithFile(cfg.LogFile, 10, 5),
		logger.WithPrefix("bot"),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	if cfg.TelegramBotToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error("failed to create bot: %v", err)
		os.Exit(1)
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(telegram.Commands...)); err != nil {
		log.Warn("failed to set bot commands: %v", err)
	}
	log.Info("authorized on account %s", api.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	provider := opentdb.NewProvider(cfg.QuestionsFile, opentdb.Options{
		BaseURL:         cfg.OpenTDBBaseURL,
		Amount:          cfg.QuestionAmount,
		Category:        cfg.QuestionCategory,
		Difficulty:      cfg.QuestionDifficulty,
		Type:            cfg.QuestionType,
		RequestInterval: cfg.RequestInterval,
	})
	fetchPool := worker.NewPool(cfg.FetchWorkerCount, cfg.FetchQueueSize)
	fetchPool.Start(ctx)
	defer fetchPool.Stop()

	scoreboard := services.NewScoreboardService(sqlite.NewResultRepository(database.DB), cfg.ScoreboardSize)

	// The registry reports finished fetches to the bot, which is built after it.
	var bot *telegram.Bot
	sessions := services.NewSessionRegistry(
		jobs.NewWorkerQueue(fetchPool, provider, cfg.FetchTimeout),
		scoreboard,
		services.RegistryOptions{
			TTL:    cfg.SessionTTL,
			OnLoad: func(v services.SessionView) { bot.NotifyLoaded(v) },
		},
	)
	bot = telegram.New(api, sessions, scoreboard)
	go sessions.RunPruner(ctx, pruneInterval)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	bot.Run(ctx, updates)
	api.StopReceivingUpdates()
	log.Info("shutdown signal received")
}
