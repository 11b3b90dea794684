package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/services"
)

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func welcomeText(name string) string {
	return fmt.Sprintf(msgWelcome, html.EscapeString(name))
}

func questionText(v services.SessionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <i>%d of %d questions</i>\n", v.Number, v.Total)
	if v.Category != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(v.Category))
	}
	fmt.Fprintf(&b, "\n<b>%d. %s</b>", v.Number, html.EscapeString(v.Question))
	return b.String()
}

// questionKeyboard lists one button per choice. The advance button appears
// only once an answer is selected.
func questionKeyboard(v services.SessionView) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Choices)+1)
	for i, choice := range v.Choices {
		label := choice
		if v.HasSelected && choice == v.Selected {
			label = markPick + choice
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, selectData(v.ID, v.Number, i)),
		))
	}

	if v.HasSelected {
		label := btnNext
		if v.IsLast {
			label = btnFinish
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, advanceData(v.ID, v.Number)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func resultsText(res quiz.Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 <b>%s, you scored %d out of %d</b>\n", html.EscapeString(res.Name), res.Score, res.Total)
	fmt.Fprintf(&b, "Percentage: %s%%\n", formatPercentage(res.Percentage))

	for i, item := range res.Review {
		mark := "✅"
		if !item.WasCorrect {
			mark = "❌"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, html.EscapeString(item.Question))
		fmt.Fprintf(&b, "%s Your Answer: %s\n", mark, html.EscapeString(item.Selected))
		if item.ShowCorrect() {
			fmt.Fprintf(&b, "Correct Answer: %s\n", html.EscapeString(item.Correct))
		}
	}
	b.WriteString("\nSend /start to play again.")
	return b.String()
}

func scoreboardText(entries []models.ScoreboardEntry) string {
	if len(entries) == 0 {
		return msgScoreboardEmpty
	}
	var b strings.Builder
	b.WriteString(msgScoreboardHeader)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s: %d/%d (%s%%)", e.Rank, html.EscapeString(e.PlayerName), e.Score, e.Total, formatPercentage(e.Percentage))
	}
	return b.String()
}

// formatPercentage prints the exact value, same as the web widget.
func formatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
