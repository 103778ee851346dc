package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/anon-relay-bot/internal/domain/entity"
	"github.com/yourusername/anon-relay-bot/internal/domain/repository"
)

// requestTimeout long polling timeoutidan katta bo'lishi kerak
const requestTimeout = 75 * time.Second

// NewBot Telegram bot ulanishini yaratish. endpoint bo'sh bo'lsa standart API.
func NewBot(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return bot, nil
}

type botMessenger struct {
	bot *tgbotapi.BotAPI
}

// NewMessenger tgbotapi asosidagi Messenger
func NewMessenger(bot *tgbotapi.BotAPI) repository.Messenger {
	return &botMessenger{bot: bot}
}

// Send xabarni chat yoki kanalga yuborish
func (m *botMessenger) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := messageConfig(msg)
	if _, err := m.bot.Send(cfg); err != nil {
		return fmt.Errorf("send to %s: %w", msg.Target, err)
	}
	return nil
}

func messageConfig(msg entity.OutboundMessage) tgbotapi.MessageConfig {
	var cfg tgbotapi.MessageConfig
	if msg.Target.IsChannel() {
		cfg = tgbotapi.NewMessageToChannel(msg.Target.Username, msg.Text)
	} else {
		cfg = tgbotapi.NewMessage(msg.Target.ID, msg.Text)
	}
	if msg.ParseMode == entity.ParseModeHTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	return cfg
}
