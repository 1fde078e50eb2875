// Run reports and operator alerts over Telegram. A nil or token-less
// reporter is valid and drops everything, so callers never need to
// branch on whether reporting is configured.

package reporter

import (
	"fmt"
	"log"
	"time"

	"go-fbauto-automation/internal/scheduler"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramReporter struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramReporter returns a no-op reporter when token is empty.
func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	if token == "" {
		log.Println("ℹ️ Telegram reporting disabled (no token configured)")
		return &TelegramReporter{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return &TelegramReporter{api: api, chatID: chatID}, nil
}

func (r *TelegramReporter) send(msgText string) {
	if r == nil || r.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(r.chatID, msgText)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	if _, err := r.api.Send(msg); err != nil {
		log.Printf("⚠️ Failed to send telegram report: %v", err)
	}
}

// RunCompleted summarizes one automation run.
func (r *TelegramReporter) RunCompleted(runID string, stats scheduler.Stats) {
	msgText := fmt.Sprintf("🤖 <b>Automation run %s finished</b>\n", runID)
	msgText += fmt.Sprintf("📤 Posts attempted: %d\n", stats.Total)
	msgText += fmt.Sprintf("✅ Successful: %d\n", stats.Successful)
	if stats.Failed > 0 {
		msgText += fmt.Sprintf("❌ Failed: %d\n", stats.Failed)
	}
	msgText += fmt.Sprintf("👀 Posts monitored: %d\n", stats.Monitored)
	msgText += fmt.Sprintf("🕒 %s", time.Now().Format("2006-01-02 15:04:05"))
	r.send(msgText)
}

// ChallengeWaiting alerts the operator that a login challenge needs
// manual attention in the browser.
func (r *TelegramReporter) ChallengeWaiting(url string) {
	msgText := "🔐 <b>Login challenge needs manual action</b>\n"
	msgText += "The automation browser is waiting on a checkpoint. Complete it by hand to resume.\n"
	if url != "" {
		msgText += fmt.Sprintf("🔗 %s", url)
	}
	r.send(msgText)
}
