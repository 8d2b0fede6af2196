package notification

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sender delivers operational messages to the admin channel
type Sender interface {
	Send(message string) error
}

// TelegramConfig holds bot credentials and the target ops chat
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramNotifier sends admin alerts to a Telegram group. Delivery is best
// effort; callers persist the durable record separately.
type TelegramNotifier struct {
	config TelegramConfig
	logger *zap.Logger
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(config TelegramConfig, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		config: config,
		logger: logger,
	}
}

// Send delivers one message to the configured chat
func (n *TelegramNotifier) Send(message string) error {
	if n.config.BotToken == "" || n.config.ChatID == "" {
		return errors.New("telegram bot token or chat id is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(n.config.BotToken)
	if err != nil {
		return errors.Wrap(err, "create telegram bot")
	}

	chatID, err := strconv.ParseInt(n.config.ChatID, 10, 64)
	if err != nil {
		return errors.Wrap(err, "parse telegram chat id")
	}

	if _, err := bot.Send(tgbotapi.NewMessage(chatID, message)); err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	return nil
}

// NoopSender discards messages; used when Telegram is not configured
type NoopSender struct{}

// Send implements Sender
func (NoopSender) Send(string) error { return nil }

var _ Sender = (*TelegramNotifier)(nil)
var _ Sender = NoopSender{}
