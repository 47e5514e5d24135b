package notify

import (
	"fmt"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"

	tele "gopkg.in/telebot.v4"

	"go.uber.org/zap"
)

// TelegramNotifier sends a completion summary to a chat.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
// No poller is configured: the bot only sends.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	pref := tele.Settings{
		Token: token,
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Telegram notifier initialized", zap.Int64("chat_id", chatID))

	return &TelegramNotifier{bot: tb, chatID: chatID}, nil
}

// NotifyRunCompleted sends the batch counts to the configured chat.
func (n *TelegramNotifier) NotifyRunCompleted(report *model.BatchReport) error {
	succeeded, empty, failed := report.Counts()

	text := fmt.Sprintf(
		"Transcription run completed\n\nTotal rows: %d\nSucceeded: %d\nNo data: %d\nFailed: %d",
		len(report.Entries), succeeded, empty, failed,
	)

	if _, err := n.bot.Send(&tele.Chat{ID: n.chatID}, text); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	logger.Info("Completion notification sent", zap.Int64("chat_id", n.chatID))
	return nil
}
