package notify

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSink mirrors warning and error notifications to a Telegram
// chat. Success toasts stay local; the chat is for things that need a
// human even when nobody is watching the terminal.
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func NewTelegramSink(token string, chatID int64, logger *slog.Logger) (*TelegramSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSink{bot: bot, chatID: chatID, logger: logger}, nil
}

func (s *TelegramSink) Notify(sev Severity, message string) {
	if sev == SeveritySuccess {
		return
	}
	// Send off the caller's goroutine; a slow Telegram API must not
	// stall polling or the UI.
	go func() {
		msg := tgbotapi.NewMessage(s.chatID, prefix(sev)+message)
		if _, err := s.bot.Send(msg); err != nil {
			s.logger.Warn("telegram notify failed", "error", err)
		}
	}()
}

func prefix(sev Severity) string {
	switch sev {
	case SeverityError:
		return "[error] "
	case SeverityWarning:
		return "[warning] "
	default:
		return ""
	}
}
