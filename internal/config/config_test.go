package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/triviaflash/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		OpenTDBBaseURL:     "https://opentdb.com",
		QuestionAmount:     10,
		QuestionCategory:   9,
		QuestionDifficulty: "medium",
		QuestionType:       "multiple",
		RequestInterval:    5 * time.Second,
		FetchTimeout:       15 * time.Second,
		FetchWorkerCount:   2,
		FetchQueueSize:     64,
		SessionTTL:         time.Hour,
		ScoreboardSize:     10,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidQuestionAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount int
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -3},
		{name: "above api cap", amount: 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.QuestionAmount = tt.amount

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "QUESTION_AMOUNT")
		})
	}
}

func TestValidate_QuestionFilters(t *testing.T) {
	cfg := validConfig()
	cfg.QuestionDifficulty = "legendary"
	cfg.QuestionType = "essay"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUESTION_DIFFICULTY")
	assert.Contains(t, err.Error(), "QUESTION_TYPE")
}

func TestValidate_AnyDifficultyAndTypeAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.QuestionDifficulty = ""
	cfg.QuestionType = ""
	cfg.QuestionCategory = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_BaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.OpenTDBBaseURL = "opentdb.com"
	assert.ErrorContains(t, cfg.Validate(), "OPENTDB_BASE_URL")

	// A questions file replaces the remote provider entirely.
	cfg.QuestionsFile = "questions.json"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Durations(t *testing.T) {
	cfg := validConfig()
	cfg.FetchTimeout = 0
	cfg.SessionTTL = -time.Minute
	cfg.RequestInterval = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "OPENTDB_REQUEST_INTERVAL")
}

func TestValidate_WorkerSettings(t *testing.T) {
	cfg := validConfig()
	cfg.FetchWorkerCount = 0
	cfg.FetchQueueSize = 0
	cfg.ScoreboardSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_WORKER_COUNT")
	assert.Contains(t, err.Error(), "FETCH_QUEUE_SIZE")
	assert.Contains(t, err.Error(), "SCOREBOARD_SIZE")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "LOG_LEVEL")
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "DB_PATH", "LOG_LEVEL", "LOG_FILE", "OPENTDB_BASE_URL", "QUESTION_AMOUNT",
		"QUESTION_CATEGORY", "QUESTION_DIFFICULTY", "QUESTION_TYPE", "QUESTIONS_FILE",
		"OPENTDB_REQUEST_INTERVAL", "FETCH_TIMEOUT", "FETCH_WORKER_COUNT", "FETCH_QUEUE_SIZE",
		"SESSION_TTL", "SCOREBOARD_SIZE", "TELEGRAM_BOT_TOKEN",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:triviaflash.db", cfg.DBPath)
	assert.Equal(t, "https://opentdb.com", cfg.OpenTDBBaseURL)
	assert.Equal(t, 10, cfg.QuestionAmount)
	assert.Equal(t, 9, cfg.QuestionCategory)
	assert.Equal(t, "medium", cfg.QuestionDifficulty)
	assert.Equal(t, "multiple", cfg.QuestionType)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5*time.Second, cfg.RequestInterval)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("QUESTION_AMOUNT", "5")
	t.Setenv("QUESTION_DIFFICULTY", "hard")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5, cfg.QuestionAmount)
	assert.Equal(t, "hard", cfg.QuestionDifficulty)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("QUESTION_AMOUNT", "ten")

	_, err := config.Load()
	assert.Error(t, err)
}
