package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	DBPath   string `env:"DB_PATH" envDefault:"file:triviaflash.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile  string `env:"LOG_FILE"`

	OpenTDBBaseURL     string        `env:"OPENTDB_BASE_URL" envDefault:"https://opentdb.com"`
	QuestionAmount     int           `env:"QUESTION_AMOUNT" envDefault:"10"`
	QuestionCategory   int           `env:"QUESTION_CATEGORY" envDefault:"9"`
	QuestionDifficulty string        `env:"QUESTION_DIFFICULTY" envDefault:"medium"`
	QuestionType       string        `env:"QUESTION_TYPE" envDefault:"multiple"`
	QuestionsFile      string        `env:"QUESTIONS_FILE"`
	RequestInterval    time.Duration `env:"OPENTDB_REQUEST_INTERVAL" envDefault:"5s"`

	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"15s"`
	FetchWorkerCount int           `env:"FETCH_WORKER_COUNT" envDefault:"2"`
	FetchQueueSize   int           `env:"FETCH_QUEUE_SIZE" envDefault:"64"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	ScoreboardSize int           `env:"SCOREBOARD_SIZE" envDefault:"10"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults for anything unset.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

var (
	validDifficulties = []string{"", "easy", "medium", "hard"}
	validTypes        = []string{"", "multiple", "boolean"}
	validLevels       = []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}
)

// Validate checks that the configuration can run a server. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !slices.Contains(validLevels, strings.ToUpper(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %v, got %q", validLevels, c.LogLevel))
	}
	if c.QuestionsFile == "" {
		if u, err := url.Parse(c.OpenTDBBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("OPENTDB_BASE_URL must be an absolute URL, got %q", c.OpenTDBBaseURL))
		}
	}
	// opentdb.com caps a single request at 50 questions.
	if c.QuestionAmount < 1 || c.QuestionAmount > 50 {
		errs = append(errs, fmt.Errorf("QUESTION_AMOUNT must be between 1 and 50, got %d", c.QuestionAmount))
	}
	if c.QuestionCategory < 0 {
		errs = append(errs, fmt.Errorf("QUESTION_CATEGORY must not be negative, got %d", c.QuestionCategory))
	}
	if !slices.Contains(validDifficulties, c.QuestionDifficulty) {
		errs = append(errs, fmt.Errorf("QUESTION_DIFFICULTY must be easy, medium or hard, got %q", c.QuestionDifficulty))
	}
	if !slices.Contains(validTypes, c.QuestionType) {
		errs = append(errs, fmt.Errorf("QUESTION_TYPE must be multiple or boolean, got %q", c.QuestionType))
	}
	if c.RequestInterval < 0 {
		errs = append(errs, fmt.Errorf("OPENTDB_REQUEST_INTERVAL must not be negative, got %s", c.RequestInterval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}
	if c.FetchWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("FETCH_WORKER_COUNT must be at least 1, got %d", c.FetchWorkerCount))
	}
	if c.FetchQueueSize < 1 {
		errs = append(errs, fmt.Errorf("FETCH_QUEUE_SIZE must be at least 1, got %d", c.FetchQueueSize))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.ScoreboardSize < 1 {
		errs = append(errs, fmt.Errorf("SCOREBOARD_SIZE must be at least 1, got %d", c.ScoreboardSize))
	}

	return errors.Join(errs...)
}
