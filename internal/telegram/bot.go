package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/services"
)

// Bot commands.
const (
	cmdStart      = "start"
	cmdRetry      = "retry"
	cmdScoreboard = "scoreboard"
)

// Commands is the command list registered with BotFather on startup.
var Commands = []tgbotapi.BotCommand{
	{Command: cmdStart, Description: "Start a new quiz"},
	{Command: cmdRetry, Description: "Retry loading questions"},
	{Command: cmdScoreboard, Description: "Show the best scores"},
}

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot plays one quiz per chat on top of the session registry.
type Bot struct {
	api        Sender
	sessions   *services.SessionRegistry
	scoreboard services.ScoreboardService

	mu      sync.Mutex
	chats   map[int64]string
	session map[string]int64
}

// New creates a Bot. scoreboard may be nil, which disables /scoreboard.
func New(api Sender, sessions *services.SessionRegistry, scoreboard services.ScoreboardService) *Bot {
	return &Bot{
		api:        api,
		sessions:   sessions,
		scoreboard: scoreboard,
		chats:      make(map[int64]string),
		session:    make(map[string]int64),
	}
}

// Run handles updates one at a time until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	log := logger.FromContext(ctx)
	log.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			log.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleName(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case cmdStart:
		b.handleStart(ctx, chatID)
	case cmdRetry:
		b.handleRetry(ctx, chatID)
	case cmdScoreboard:
		b.handleScoreboard(ctx, chatID)
	default:
		b.send(ctx, newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// handleStart replaces any quiz the chat had with a fresh session. The
// question fetch starts right away, before the name arrives.
func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	view, err := b.sessions.Create(ctx, models.SourceTelegram)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create session: chat=%d err=%v", chatID, err)
		b.send(ctx, newHTMLMessage(chatID, msgFetchFailed))
		return
	}

	b.mu.Lock()
	if old, ok := b.chats[chatID]; ok {
		delete(b.session, old)
	}
	b.chats[chatID] = view.ID
	b.session[view.ID] = chatID
	b.mu.Unlock()

	logger.FromContext(ctx).WithField("session_id", view.ID).Info("telegram quiz started: chat=%d", chatID)
	b.send(ctx, newHTMLMessage(chatID, msgAskName))
}

func (b *Bot) handleName(ctx context.Context, chatID int64, text string) {
	id, ok := b.sessionFor(chatID)
	if !ok {
		b.send(ctx, newHTMLMessage(chatID, msgNoSession))
		return
	}

	view, err := b.sessions.SubmitName(ctx, id, text)
	if err != nil {
		b.send(ctx, newHTMLMessage(chatID, b.nameRejection(chatID, view, err)))
		return
	}

	b.send(ctx, newHTMLMessage(chatID, welcomeText(view.Name)))
	b.sendState(ctx, chatID, view)
}

func (b *Bot) nameRejection(chatID int64, view services.SessionView, err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return msgFetchFailed
	}
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		b.forget(chatID)
		return msgNoSession
	case apperrors.ErrCodeValidation:
		return msgNameRequired
	case apperrors.ErrCodeEmptyQuestionSet:
		return msgNoQuestions
	}
	switch view.Phase {
	case quiz.PhaseInProgress.String():
		return msgPickAnswer
	case quiz.PhaseFinished.String():
		return msgQuizOver
	case quiz.PhaseFailed.String():
		return msgNoQuestions
	default:
		return msgStillLoading
	}
}

// sendState tells a named player what happens next: a question, a wait, or
// a fetch failure.
func (b *Bot) sendState(ctx context.Context, chatID int64, view services.SessionView) {
	switch {
	case view.InProgress():
		b.sendQuestion(ctx, chatID, view)
	case view.Phase == quiz.PhaseFailed.String():
		b.send(ctx, newHTMLMessage(chatID, msgNoQuestions))
	case view.Retryable:
		b.send(ctx, newHTMLMessage(chatID, msgFetchFailed))
	case view.Fetching:
		b.send(ctx, newHTMLMessage(chatID, msgLoading))
	}
}

func (b *Bot) handleRetry(ctx context.Context, chatID int64) {
	id, ok := b.sessionFor(chatID)
	if !ok {
		b.send(ctx, newHTMLMessage(chatID, msgNoSession))
		return
	}

	view, err := b.sessions.Retry(ctx, id)
	switch {
	case err == nil:
		b.send(ctx, newHTMLMessage(chatID, msgLoading))
	case view.Phase == quiz.PhaseFailed.String():
		b.send(ctx, newHTMLMessage(chatID, msgNoQuestions))
	case errors.Is(err, quiz.ErrFetchInFlight):
		b.send(ctx, newHTMLMessage(chatID, msgStillLoading))
	case errors.Is(err, quiz.ErrAlreadyLoaded):
		b.send(ctx, newHTMLMessage(chatID, msgAlreadyLoaded))
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeNotFound {
			b.forget(chatID)
			b.send(ctx, newHTMLMessage(chatID, msgNoSession))
			return
		}
		logger.FromContext(ctx).Warn("retry failed: chat=%d err=%v", chatID, err)
		b.send(ctx, newHTMLMessage(chatID, msgFetchFailed))
	}
}

func (b *Bot) handleScoreboard(ctx context.Context, chatID int64) {
	if b.scoreboard == nil {
		b.send(ctx, newHTMLMessage(chatID, msgScoreboardError))
		return
	}
	entries, err := b.scoreboard.Top(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load scoreboard: %v", err)
		b.send(ctx, newHTMLMessage(chatID, msgScoreboardError))
		return
	}
	b.send(ctx, newHTMLMessage(chatID, scoreboardText(entries)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	answer := ""
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, answer)); err != nil {
			logger.FromContext(ctx).Warn("failed to answer callback: %v", err)
		}
	}()

	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	data, ok := parseCallbackData(cb.Data)
	if !ok {
		answer = msgStaleButton
		return
	}
	id, ok := b.sessionFor(chatID)
	if !ok {
		answer = msgNoSession
		return
	}
	if data.tag != sessionTag(id) {
		answer = msgStaleButton
		return
	}
	view, err := b.sessions.Get(ctx, id)
	if err != nil || !view.InProgress() || view.Number != data.question {
		answer = msgStaleButton
		return
	}

	switch data.action {
	case actionSelect:
		answer = b.selectChoice(ctx, chatID, cb.Message.MessageID, view, data.choice)
	case actionAdvance:
		answer = b.advance(ctx, chatID, id)
	}
}

func (b *Bot) selectChoice(ctx context.Context, chatID int64, messageID int, view services.SessionView, choice int) string {
	if choice >= len(view.Choices) {
		return msgStaleButton
	}
	view, err := b.sessions.Select(ctx, view.ID, view.Choices[choice])
	if err != nil {
		return msgStaleButton
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, questionKeyboard(view))
	if _, err := b.api.Request(edit); err != nil {
		logger.FromContext(ctx).Warn("failed to update keyboard: chat=%d err=%v", chatID, err)
	}
	return ""
}

func (b *Bot) advance(ctx context.Context, chatID int64, id string) string {
	view, err := b.sessions.Advance(ctx, id)
	if errors.Is(err, quiz.ErrPrematureAdvance) {
		return msgSelectFirst
	}
	if err != nil {
		return msgStaleButton
	}

	if view.Results != nil {
		b.send(ctx, newHTMLMessage(chatID, resultsText(*view.Results)))
		return ""
	}
	b.sendQuestion(ctx, chatID, view)
	return ""
}

// NotifyLoaded is the registry's load hook. It only speaks to players who
// already gave a name; anyone else learns the outcome when they do.
func (b *Bot) NotifyLoaded(view services.SessionView) {
	if view.Name == "" {
		return
	}
	b.mu.Lock()
	chatID, ok := b.session[view.ID]
	b.mu.Unlock()
	if !ok {
		return
	}
	b.sendState(context.Background(), chatID, view)
}

func (b *Bot) sendQuestion(ctx context.Context, chatID int64, view services.SessionView) {
	msg := newHTMLMessage(chatID, questionText(view))
	msg.ReplyMarkup = questionKeyboard(view)
	b.send(ctx, msg)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		logger.FromContext(ctx).Error("failed to send message: chat=%d err=%v", msg.ChatID, err)
	}
}

func (b *Bot) sessionFor(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.chats[chatID]
	return id, ok
}

func (b *Bot) forget(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.chats[chatID]; ok {
		delete(b.session, id)
		delete(b.chats, chatID)
	}
}
